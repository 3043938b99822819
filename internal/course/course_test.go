package course

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCourse = `code: BIO101
title: General Biology
total_items: 40
outcomes:
  - id: 0
    text: Describe cell structure
    hours: 12
  - id: 1
    text: Explain photosynthesis
    hours: 8
bloom_weights:
  Remember: 30
  Understand: 25
  Apply: 20
  Analyze: 10
  Evaluate: 10
  Create: 5
formats:
  - name: MCQ
    items: 30
    points_per_item: "1"
  - name: Essay
    items: 10
    points_per_item: "2.5"
`

func writeCourse(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "course.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write course file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	f, err := Load(writeCourse(t, sampleCourse))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if f.Code != "BIO101" || f.Title != "General Biology" {
		t.Errorf("course = %q/%q", f.Code, f.Title)
	}
	if f.TotalItems != 40 {
		t.Errorf("total items = %d, want 40", f.TotalItems)
	}

	outcomes := f.ModelOutcomes()
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Text != "Describe cell structure" || outcomes[0].Hours != 12 {
		t.Errorf("outcome 0 = %+v", outcomes[0])
	}

	configs, err := f.FormatConfigs()
	if err != nil {
		t.Fatalf("FormatConfigs: %v", err)
	}
	if len(configs) != 2 {
		t.Fatalf("expected 2 formats, got %d", len(configs))
	}
	if configs[1].PointsPerItem.String() != "2.5" {
		t.Errorf("essay points = %s, want 2.5", configs[1].PointsPerItem)
	}

	weights := f.Weights()
	if len(weights) != 6 {
		t.Errorf("expected 6 weights, got %d", len(weights))
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		mangle  func(string) string
		wantErr string
	}{
		{
			"missing code",
			func(s string) string { return strings.Replace(s, "code: BIO101\n", "", 1) },
			"code is required",
		},
		{
			"zero items",
			func(s string) string { return strings.Replace(s, "total_items: 40", "total_items: 0", 1) },
			"total_items",
		},
		{
			"duplicate outcome id",
			func(s string) string { return strings.Replace(s, "- id: 1", "- id: 0", 1) },
			"duplicate outcome id",
		},
		{
			"unknown level",
			func(s string) string { return strings.Replace(s, "Remember:", "Memorize:", 1) },
			"unknown cognitive level",
		},
		{
			"bad points",
			func(s string) string { return strings.Replace(s, `points_per_item: "2.5"`, `points_per_item: "two"`, 1) },
			"points_per_item",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeCourse(t, tt.mangle(sampleCourse)))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
