package blueprint

import (
	"github.com/shopspring/decimal"

	"github.com/mtapang/tosforge/internal/model"
)

// Summary is the weighted specification table derived from an assignment:
// an item-count view and a points view per (level, outcome) cell, with row
// and grand totals. Items and points are independent dimensions; a cell with
// 3 items worth 5 points each reports items=3, points=15.
type Summary struct {
	Items          model.ItemMatrix
	Points         model.PointMatrix
	TotalItems     int
	TotalPoints    decimal.Decimal
	ItemsByLevel   map[model.CognitiveLevel]int
	PointsByLevel  map[model.CognitiveLevel]decimal.Decimal
	ItemsByFormat  map[string]int
	PointsByFormat map[string]decimal.Decimal
}

// Aggregate derives the specification table from an assignment in a single
// pass. The result depends only on the multiset of slots, never their order,
// so shuffling an assignment before aggregating changes nothing. Aggregate
// is a pure function: re-running it over the same slots yields an identical
// summary.
func Aggregate(slots []model.AssignedSlot) *Summary {
	s := &Summary{
		Items:          make(model.ItemMatrix),
		Points:         make(model.PointMatrix),
		TotalPoints:    decimal.Zero,
		ItemsByLevel:   make(map[model.CognitiveLevel]int),
		PointsByLevel:  make(map[model.CognitiveLevel]decimal.Decimal),
		ItemsByFormat:  make(map[string]int),
		PointsByFormat: make(map[string]decimal.Decimal),
	}

	for _, slot := range slots {
		itemRow, ok := s.Items[slot.Level]
		if !ok {
			itemRow = make(map[int64]int)
			s.Items[slot.Level] = itemRow
		}
		pointRow, ok := s.Points[slot.Level]
		if !ok {
			pointRow = make(map[int64]decimal.Decimal)
			s.Points[slot.Level] = pointRow
		}

		itemRow[slot.OutcomeID]++
		pointRow[slot.OutcomeID] = pointRow[slot.OutcomeID].Add(slot.Points)

		s.ItemsByLevel[slot.Level]++
		s.PointsByLevel[slot.Level] = s.PointsByLevel[slot.Level].Add(slot.Points)
		s.ItemsByFormat[slot.Format]++
		s.PointsByFormat[slot.Format] = s.PointsByFormat[slot.Format].Add(slot.Points)

		s.TotalItems++
		s.TotalPoints = s.TotalPoints.Add(slot.Points)
	}
	return s
}
