package blueprint

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mtapang/tosforge/internal/model"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("dec(%q): %v", s, err)
	}
	return d
}

func testOutcomes() []model.Outcome {
	return []model.Outcome{
		{ID: 0, Text: "Define key concepts"},
		{ID: 1, Text: "Classify entities"},
	}
}

func TestExpandBloomSlotsOrder(t *testing.T) {
	matrix := model.BloomMatrix{
		model.LevelApply:    {1: 1, 0: 1},
		model.LevelRemember: {1: 2},
	}

	slots, err := ExpandBloomSlots(matrix, testOutcomes())
	if err != nil {
		t.Fatalf("ExpandBloomSlots: %v", err)
	}

	// Canonical level order outer, ascending outcome id inner.
	want := []model.BloomSlot{
		{OutcomeID: 1, OutcomeText: "Classify entities", Level: model.LevelRemember},
		{OutcomeID: 1, OutcomeText: "Classify entities", Level: model.LevelRemember},
		{OutcomeID: 0, OutcomeText: "Define key concepts", Level: model.LevelApply},
		{OutcomeID: 1, OutcomeText: "Classify entities", Level: model.LevelApply},
	}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(slots))
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Errorf("slot %d = %+v, want %+v", i, slots[i], want[i])
		}
	}
}

func TestExpandBloomSlotsZeroCells(t *testing.T) {
	matrix := model.BloomMatrix{
		model.LevelRemember: {0: 0, 1: 0},
	}
	slots, err := ExpandBloomSlots(matrix, testOutcomes())
	if err != nil {
		t.Fatalf("ExpandBloomSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots for all-zero matrix, got %d", len(slots))
	}
}

func TestExpandBloomSlotsErrors(t *testing.T) {
	tests := []struct {
		name    string
		matrix  model.BloomMatrix
		wantErr any
	}{
		{
			name:    "unknown outcome",
			matrix:  model.BloomMatrix{model.LevelRemember: {42: 1}},
			wantErr: &OutcomeRefError{},
		},
		{
			name:    "negative count",
			matrix:  model.BloomMatrix{model.LevelApply: {0: -3}},
			wantErr: &NegativeCountError{},
		},
		{
			name:    "unknown level",
			matrix:  model.BloomMatrix{"Memorize": {0: 1}},
			wantErr: &UnknownLevelError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := ExpandBloomSlots(tt.matrix, testOutcomes())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if slots != nil {
				t.Errorf("expected nil slots on error, got %d", len(slots))
			}
			switch want := tt.wantErr.(type) {
			case *OutcomeRefError:
				if !errors.As(err, &want) {
					t.Errorf("expected OutcomeRefError, got %T: %v", err, err)
				}
			case *NegativeCountError:
				if !errors.As(err, &want) {
					t.Errorf("expected NegativeCountError, got %T: %v", err, err)
				}
			case *UnknownLevelError:
				if !errors.As(err, &want) {
					t.Errorf("expected UnknownLevelError, got %T: %v", err, err)
				}
			}
		})
	}
}

func TestExpandBloomSlotsErrorContext(t *testing.T) {
	matrix := model.BloomMatrix{model.LevelEvaluate: {7: 2}}
	_, err := ExpandBloomSlots(matrix, testOutcomes())

	var refErr *OutcomeRefError
	if !errors.As(err, &refErr) {
		t.Fatalf("expected OutcomeRefError, got %v", err)
	}
	if refErr.OutcomeID != 7 {
		t.Errorf("expected outcome 7 in error, got %d", refErr.OutcomeID)
	}
	if refErr.Level != model.LevelEvaluate {
		t.Errorf("expected level Evaluate in error, got %s", refErr.Level)
	}
}

func TestExpandFormatSlots(t *testing.T) {
	configs := []model.FormatConfig{
		{Name: "MCQ", ItemCount: 3, PointsPerItem: dec(t, "1")},
		{Name: "Essay", ItemCount: 2, PointsPerItem: dec(t, "7.5")},
	}

	slots, err := ExpandFormatSlots(configs)
	if err != nil {
		t.Fatalf("ExpandFormatSlots: %v", err)
	}
	if len(slots) != 5 {
		t.Fatalf("expected 5 slots, got %d", len(slots))
	}
	for i := range 3 {
		if slots[i].Format != "MCQ" || !slots[i].Points.Equal(dec(t, "1")) {
			t.Errorf("slot %d = %+v, want MCQ worth 1", i, slots[i])
		}
	}
	for i := 3; i < 5; i++ {
		if slots[i].Format != "Essay" || !slots[i].Points.Equal(dec(t, "7.5")) {
			t.Errorf("slot %d = %+v, want Essay worth 7.5", i, slots[i])
		}
	}
}

func TestExpandFormatSlotsErrors(t *testing.T) {
	tests := []struct {
		name    string
		configs []model.FormatConfig
		wantDup bool
	}{
		{
			name:    "zero items",
			configs: []model.FormatConfig{{Name: "MCQ", ItemCount: 0, PointsPerItem: decimal.NewFromInt(1)}},
		},
		{
			name:    "negative items",
			configs: []model.FormatConfig{{Name: "MCQ", ItemCount: -1, PointsPerItem: decimal.NewFromInt(1)}},
		},
		{
			name:    "zero points",
			configs: []model.FormatConfig{{Name: "Essay", ItemCount: 2, PointsPerItem: decimal.Zero}},
		},
		{
			name:    "empty name",
			configs: []model.FormatConfig{{Name: "", ItemCount: 2, PointsPerItem: decimal.NewFromInt(1)}},
		},
		{
			name: "duplicate name",
			configs: []model.FormatConfig{
				{Name: "MCQ", ItemCount: 2, PointsPerItem: decimal.NewFromInt(1)},
				{Name: "MCQ", ItemCount: 3, PointsPerItem: decimal.NewFromInt(2)},
			},
			wantDup: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExpandFormatSlots(tt.configs)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var dupErr *DuplicateFormatError
			if got := errors.As(err, &dupErr); got != tt.wantDup {
				t.Errorf("DuplicateFormatError = %v, want %v (err: %v)", got, tt.wantDup, err)
			}
		})
	}
}
