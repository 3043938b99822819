package blueprint

import (
	"slices"

	"github.com/mtapang/tosforge/internal/model"
)

// ExpandBloomSlots flattens a Bloom matrix into one slot per required item.
// Iteration is deterministic: canonical level order outer, ascending outcome
// id inner, so identical inputs always yield the identical sequence.
func ExpandBloomSlots(matrix model.BloomMatrix, outcomes []model.Outcome) ([]model.BloomSlot, error) {
	for level := range matrix {
		if !level.Valid() {
			return nil, &UnknownLevelError{Level: level}
		}
	}

	texts := make(map[int64]string, len(outcomes))
	for _, o := range outcomes {
		texts[o.ID] = o.Text
	}

	var slots []model.BloomSlot
	for _, level := range model.Levels {
		row := matrix[level]
		ids := make([]int64, 0, len(row))
		for id := range row {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		for _, id := range ids {
			count := row[id]
			if count < 0 {
				return nil, &NegativeCountError{Level: level, OutcomeID: id, Count: count}
			}
			text, ok := texts[id]
			if !ok {
				return nil, &OutcomeRefError{Level: level, OutcomeID: id}
			}
			for range count {
				slots = append(slots, model.BloomSlot{
					OutcomeID:   id,
					OutcomeText: text,
					Level:       level,
				})
			}
		}
	}
	return slots, nil
}

// ExpandFormatSlots flattens an ordered format configuration into one slot
// per item. Each slot carries the configured points-per-item verbatim; points
// are never divided or rescaled here.
func ExpandFormatSlots(configs []model.FormatConfig) ([]model.FormatSlot, error) {
	seen := make(map[string]bool, len(configs))
	for _, c := range configs {
		if c.Name == "" {
			return nil, &FormatConfigError{Name: c.Name, Reason: "name must not be empty"}
		}
		if c.ItemCount <= 0 {
			return nil, &FormatConfigError{Name: c.Name, Reason: "item count must be positive"}
		}
		if !c.PointsPerItem.IsPositive() {
			return nil, &FormatConfigError{Name: c.Name, Reason: "points per item must be positive"}
		}
		if seen[c.Name] {
			return nil, &DuplicateFormatError{Name: c.Name}
		}
		seen[c.Name] = true
	}

	var slots []model.FormatSlot
	for _, c := range configs {
		for range c.ItemCount {
			slots = append(slots, model.FormatSlot{
				Format: c.Name,
				Points: c.PointsPerItem,
			})
		}
	}
	return slots, nil
}
