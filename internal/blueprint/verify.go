package blueprint

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mtapang/tosforge/internal/model"
)

type cellKey struct {
	level     model.CognitiveLevel
	outcomeID int64
}

// VerifyIntegrity recomputes the per-(level, outcome) and per-format
// distributions of an assignment and compares them with the originals. It
// returns a description of every discrepancy found, or nil when the
// assignment preserves both distributions exactly.
func VerifyIntegrity(slots []model.AssignedSlot, matrix model.BloomMatrix, configs []model.FormatConfig) []string {
	var problems []string

	cellCounts := make(map[cellKey]int)
	formatCounts := make(map[string]int)
	formatPoints := make(map[string]decimal.Decimal)
	for _, s := range slots {
		cellCounts[cellKey{s.Level, s.OutcomeID}]++
		formatCounts[s.Format]++
		formatPoints[s.Format] = formatPoints[s.Format].Add(s.Points)
	}

	// Every matrix cell must be reproduced exactly.
	for _, level := range model.Levels {
		row := matrix[level]
		ids := make([]int64, 0, len(row))
		for id := range row {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			want := row[id]
			got := cellCounts[cellKey{level, id}]
			if want != got {
				problems = append(problems, fmt.Sprintf(
					"level %s outcome %d: expected %d items, got %d", level, id, want, got))
			}
			delete(cellCounts, cellKey{level, id})
		}
	}
	// Any remaining assigned cells have no matrix counterpart.
	for key, got := range cellCounts {
		if got != 0 {
			problems = append(problems, fmt.Sprintf(
				"level %s outcome %d: %d items assigned but absent from matrix", key.level, key.outcomeID, got))
		}
	}

	for _, c := range configs {
		if got := formatCounts[c.Name]; got != c.ItemCount {
			problems = append(problems, fmt.Sprintf(
				"format %q: expected %d items, got %d", c.Name, c.ItemCount, got))
		}
		if got, want := formatPoints[c.Name], c.TotalPoints(); !got.Equal(want) {
			problems = append(problems, fmt.Sprintf(
				"format %q: expected %s total points, got %s", c.Name, want, got))
		}
		delete(formatCounts, c.Name)
	}
	for name, got := range formatCounts {
		problems = append(problems, fmt.Sprintf(
			"format %q: %d items assigned but absent from configuration", name, got))
	}

	return problems
}
