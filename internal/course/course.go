// Package course loads course definition files: the outcomes, Bloom level
// weighting, and question format distribution a specification table is
// generated from.
package course

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mtapang/tosforge/internal/model"
)

// File mirrors the on-disk YAML structure of a course definition.
type File struct {
	Code         string         `yaml:"code"`
	Title        string         `yaml:"title"`
	TotalItems   int            `yaml:"total_items"`
	Outcomes     []OutcomeDef   `yaml:"outcomes"`
	BloomWeights map[string]int `yaml:"bloom_weights"`
	Formats      []FormatDef    `yaml:"formats"`
}

// OutcomeDef is one learning outcome entry of a course file.
type OutcomeDef struct {
	ID    int64   `yaml:"id"`
	Text  string  `yaml:"text"`
	Hours float64 `yaml:"hours"`
}

// FormatDef is one question format entry of a course file. PointsPerItem is
// kept as the literal scalar so fractional values survive without float
// round-tripping.
type FormatDef struct {
	Name          string `yaml:"name"`
	Items         int    `yaml:"items"`
	PointsPerItem string `yaml:"points_per_item"`
}

// Load reads and validates a course definition file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read course file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse course file %s: %w", path, err)
	}
	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("course file %s: %w", path, err)
	}

	slog.Info("course loaded",
		"path", path,
		"code", f.Code,
		"outcomes", len(f.Outcomes),
		"formats", len(f.Formats),
		"total_items", f.TotalItems,
	)
	return &f, nil
}

func (f *File) validate() error {
	if f.Code == "" {
		return fmt.Errorf("code is required")
	}
	if f.TotalItems <= 0 {
		return fmt.Errorf("total_items must be positive, got %d", f.TotalItems)
	}
	if len(f.Outcomes) == 0 {
		return fmt.Errorf("at least one outcome is required")
	}
	seen := make(map[int64]bool, len(f.Outcomes))
	for _, o := range f.Outcomes {
		if o.Text == "" {
			return fmt.Errorf("outcome %d has no text", o.ID)
		}
		if seen[o.ID] {
			return fmt.Errorf("duplicate outcome id %d", o.ID)
		}
		seen[o.ID] = true
	}
	for level := range f.BloomWeights {
		if !model.CognitiveLevel(level).Valid() {
			return fmt.Errorf("unknown cognitive level %q in bloom_weights", level)
		}
	}
	if _, err := f.FormatConfigs(); err != nil {
		return err
	}
	return nil
}

// ModelOutcomes converts the outcome entries into model types.
func (f *File) ModelOutcomes() []model.Outcome {
	outcomes := make([]model.Outcome, 0, len(f.Outcomes))
	for _, o := range f.Outcomes {
		outcomes = append(outcomes, model.Outcome{ID: o.ID, Text: o.Text, Hours: o.Hours})
	}
	return outcomes
}

// Weights converts the string-keyed YAML weights into typed level weights.
func (f *File) Weights() map[model.CognitiveLevel]int {
	weights := make(map[model.CognitiveLevel]int, len(f.BloomWeights))
	for level, w := range f.BloomWeights {
		weights[model.CognitiveLevel(level)] = w
	}
	return weights
}

// FormatConfigs converts the format entries into model types, parsing the
// per-item points into exact decimals.
func (f *File) FormatConfigs() ([]model.FormatConfig, error) {
	configs := make([]model.FormatConfig, 0, len(f.Formats))
	for _, fd := range f.Formats {
		points, err := decimal.NewFromString(fd.PointsPerItem)
		if err != nil {
			return nil, fmt.Errorf("format %q: bad points_per_item %q: %w", fd.Name, fd.PointsPerItem, err)
		}
		configs = append(configs, model.FormatConfig{
			Name:          fd.Name,
			ItemCount:     fd.Items,
			PointsPerItem: points,
		})
	}
	return configs, nil
}
