// Package tos builds the table-of-specifications Bloom matrix: it turns a
// percentage weighting of cognitive levels and an hours-weighted outcome
// list into an integer level-by-outcome item matrix.
package tos

import (
	"fmt"
	"math"
	"sort"

	"github.com/mtapang/tosforge/internal/model"
)

// Result is the output of Generate.
type Result struct {
	Matrix      model.BloomMatrix
	BloomTotals map[model.CognitiveLevel]int
}

// ValidateBloomWeights checks that every level carries a non-negative weight
// and that the weights sum to 100 percent.
func ValidateBloomWeights(weights map[model.CognitiveLevel]int) error {
	sum := 0
	for _, level := range model.Levels {
		w, ok := weights[level]
		if !ok {
			return fmt.Errorf("missing bloom weight for level %s", level)
		}
		if w < 0 {
			return fmt.Errorf("bloom weight for %s is negative (%d)", level, w)
		}
		sum += w
	}
	for level := range weights {
		if !level.Valid() {
			return fmt.Errorf("unknown cognitive level %q in bloom weights", level)
		}
	}
	if sum != 100 {
		return fmt.Errorf("bloom weights sum to %d, want 100", sum)
	}
	return nil
}

// ComputeBloomTotals converts percentage weights into a fixed item count per
// level. The first five levels floor their share; the remainder goes to the
// last level so the counts always sum to totalItems.
func ComputeBloomTotals(weights map[model.CognitiveLevel]int, totalItems int) (map[model.CognitiveLevel]int, error) {
	if totalItems <= 0 {
		return nil, fmt.Errorf("total items must be positive, got %d", totalItems)
	}
	if err := ValidateBloomWeights(weights); err != nil {
		return nil, err
	}

	totals := make(map[model.CognitiveLevel]int, len(model.Levels))
	remainder := totalItems
	for _, level := range model.Levels[:len(model.Levels)-1] {
		count := totalItems * weights[level] / 100
		totals[level] = count
		remainder -= count
	}
	totals[model.Levels[len(model.Levels)-1]] = remainder
	return totals, nil
}

// OutcomeWeights computes each outcome's share of the test from its
// instruction hours.
func OutcomeWeights(outcomes []model.Outcome) (map[int64]float64, error) {
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("outcome list is empty")
	}
	totalHours := 0.0
	for _, o := range outcomes {
		if o.Hours < 0 {
			return nil, fmt.Errorf("outcome %d has negative hours (%g)", o.ID, o.Hours)
		}
		totalHours += o.Hours
	}
	if totalHours == 0 {
		return nil, fmt.Errorf("total outcome hours cannot be zero")
	}

	weights := make(map[int64]float64, len(outcomes))
	for _, o := range outcomes {
		weights[o.ID] = o.Hours / totalHours
	}
	return weights, nil
}

// AllocateLargestRemainder distributes each level's item total across the
// outcomes in proportion to their weights, using the largest remainder
// method so every level row sums exactly to its total.
func AllocateLargestRemainder(outcomes []model.Outcome, weights map[int64]float64, bloomTotals map[model.CognitiveLevel]int) model.BloomMatrix {
	matrix := make(model.BloomMatrix, len(bloomTotals))

	for _, level := range model.Levels {
		levelTotal, ok := bloomTotals[level]
		if !ok {
			continue
		}

		type share struct {
			outcomeID int64
			raw       float64
		}
		shares := make([]share, 0, len(outcomes))
		allocated := make(map[int64]int, len(outcomes))
		used := 0
		for _, o := range outcomes {
			raw := float64(levelTotal) * weights[o.ID]
			floor := int(math.Floor(raw))
			allocated[o.ID] = floor
			used += floor
			shares = append(shares, share{outcomeID: o.ID, raw: raw})
		}

		// Hand the leftover items to the largest fractional remainders,
		// outcome id breaking ties for determinism.
		sort.SliceStable(shares, func(i, j int) bool {
			ri := shares[i].raw - math.Floor(shares[i].raw)
			rj := shares[j].raw - math.Floor(shares[j].raw)
			if ri != rj {
				return ri > rj
			}
			return shares[i].outcomeID < shares[j].outcomeID
		})
		for i := 0; i < levelTotal-used; i++ {
			allocated[shares[i].outcomeID]++
		}

		for id, n := range allocated {
			matrix.SetCell(level, id, n)
		}
	}
	return matrix
}

// Generate builds the complete Bloom matrix for a course: per-level totals
// from the percentage weights, outcome shares from hours, then a
// largest-remainder allocation of each level across the outcomes.
func Generate(outcomes []model.Outcome, bloomWeights map[model.CognitiveLevel]int, totalItems int) (*Result, error) {
	bloomTotals, err := ComputeBloomTotals(bloomWeights, totalItems)
	if err != nil {
		return nil, fmt.Errorf("compute bloom totals: %w", err)
	}
	weights, err := OutcomeWeights(outcomes)
	if err != nil {
		return nil, fmt.Errorf("compute outcome weights: %w", err)
	}
	matrix := AllocateLargestRemainder(outcomes, weights, bloomTotals)
	return &Result{Matrix: matrix, BloomTotals: bloomTotals}, nil
}

// ValidateFormatConfigs checks a format distribution against the expected
// total item count and returns every problem found, in the manner of a
// configuration linter: an empty result means the distribution is usable.
func ValidateFormatConfigs(configs []model.FormatConfig, totalItems int) []string {
	var problems []string
	if len(configs) == 0 {
		return []string{"at least one question format must be defined"}
	}

	seen := make(map[string]bool, len(configs))
	sum := 0
	for _, c := range configs {
		if c.Name == "" {
			problems = append(problems, "question format with empty name")
			continue
		}
		if seen[c.Name] {
			problems = append(problems, fmt.Sprintf("duplicate question format %q", c.Name))
		}
		seen[c.Name] = true
		if c.ItemCount <= 0 {
			problems = append(problems, fmt.Sprintf("format %q: item count must be positive (got %d)", c.Name, c.ItemCount))
		}
		if !c.PointsPerItem.IsPositive() {
			problems = append(problems, fmt.Sprintf("format %q: points per item must be positive (got %s)", c.Name, c.PointsPerItem))
		}
		sum += c.ItemCount
	}
	if sum != totalItems {
		problems = append(problems, fmt.Sprintf("configured %d format items but the test specifies %d", sum, totalItems))
	}
	return problems
}
