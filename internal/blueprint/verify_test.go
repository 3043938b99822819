package blueprint

import (
	"strings"
	"testing"

	"github.com/mtapang/tosforge/internal/model"
)

func TestVerifyIntegrityPass(t *testing.T) {
	matrix := model.BloomMatrix{
		model.LevelRemember: {0: 2, 1: 1},
		model.LevelEvaluate: {1: 1},
	}
	configs := []model.FormatConfig{
		{Name: "MCQ", ItemCount: 3, PointsPerItem: dec(t, "1")},
		{Name: "Essay", ItemCount: 1, PointsPerItem: dec(t, "5")},
	}

	a := mustBuild(t, matrix, testOutcomes(), configs)

	if problems := VerifyIntegrity(a.Slots, matrix, configs); len(problems) != 0 {
		t.Errorf("expected clean verification, got %v", problems)
	}
}

func TestVerifyIntegrityDetectsMissingSlot(t *testing.T) {
	matrix := model.BloomMatrix{
		model.LevelRemember: {0: 2},
	}
	configs := []model.FormatConfig{
		{Name: "MCQ", ItemCount: 2, PointsPerItem: dec(t, "1")},
	}

	a := mustBuild(t, matrix, testOutcomes(), configs)

	// Drop one slot: both the cell count and the format count must complain.
	tampered := a.Slots[:1]
	problems := VerifyIntegrity(tampered, matrix, configs)
	if len(problems) < 2 {
		t.Fatalf("expected at least 2 problems, got %v", problems)
	}
}

func TestVerifyIntegrityDetectsAlteredPoints(t *testing.T) {
	matrix := model.BloomMatrix{
		model.LevelRemember: {0: 1},
	}
	configs := []model.FormatConfig{
		{Name: "MCQ", ItemCount: 1, PointsPerItem: dec(t, "1")},
	}

	a := mustBuild(t, matrix, testOutcomes(), configs)
	a.Slots[0].Points = dec(t, "2")

	problems := VerifyIntegrity(a.Slots, matrix, configs)
	if len(problems) != 1 {
		t.Fatalf("expected 1 problem, got %v", problems)
	}
	if !strings.Contains(problems[0], "points") {
		t.Errorf("problem should mention points, got %q", problems[0])
	}
}

func TestVerifyIntegrityDetectsForeignEntries(t *testing.T) {
	matrix := model.BloomMatrix{
		model.LevelRemember: {0: 1},
	}
	configs := []model.FormatConfig{
		{Name: "MCQ", ItemCount: 1, PointsPerItem: dec(t, "1")},
	}

	slots := []model.AssignedSlot{
		{OutcomeID: 0, Level: model.LevelRemember, Format: "MCQ", Points: dec(t, "1")},
		{OutcomeID: 9, Level: model.LevelCreate, Format: "Essay", Points: dec(t, "5")},
	}

	problems := VerifyIntegrity(slots, matrix, configs)
	if len(problems) == 0 {
		t.Fatal("expected problems for entries absent from matrix and config")
	}
	joined := strings.Join(problems, "; ")
	if !strings.Contains(joined, "absent from matrix") {
		t.Errorf("expected a matrix-absence problem, got %q", joined)
	}
	if !strings.Contains(joined, "absent from configuration") {
		t.Errorf("expected a config-absence problem, got %q", joined)
	}
}
