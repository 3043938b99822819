package store

import (
	"fmt"
	"sort"

	"github.com/mtapang/tosforge/internal/blueprint"
	"github.com/mtapang/tosforge/internal/model"
)

// BuildExport assembles the export-ready view of a stored blueprint: its
// course, configuration, slot sequence, and the aggregated specification
// matrices.
func (s *Store) BuildExport(blueprintID int64) (*model.BlueprintExport, error) {
	bp, err := s.GetBlueprint(blueprintID)
	if err != nil {
		return nil, fmt.Errorf("get blueprint %d: %w", blueprintID, err)
	}
	course, err := s.GetCourse(bp.CourseID)
	if err != nil {
		return nil, fmt.Errorf("get course %d: %w", bp.CourseID, err)
	}
	outcomes, err := s.ListOutcomes(bp.CourseID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	configs, err := s.ListFormatConfigs(blueprintID)
	if err != nil {
		return nil, fmt.Errorf("list format configs: %w", err)
	}
	slots, err := s.ListAssignedSlots(blueprintID)
	if err != nil {
		return nil, fmt.Errorf("list assigned slots: %w", err)
	}
	generated, err := s.ListGeneratedQuestions(blueprintID)
	if err != nil {
		return nil, fmt.Errorf("list generated questions: %w", err)
	}

	summary := blueprint.Aggregate(slots)

	byFormat := make([]model.FormatBreakdown, 0, len(summary.ItemsByFormat))
	for format, items := range summary.ItemsByFormat {
		byFormat = append(byFormat, model.FormatBreakdown{
			Format: format,
			Items:  items,
			Points: summary.PointsByFormat[format],
		})
	}
	sort.Slice(byFormat, func(i, j int) bool { return byFormat[i].Format < byFormat[j].Format })

	return &model.BlueprintExport{
		ID:        bp.ID,
		Course:    course,
		Name:      bp.Name,
		CreatedAt: bp.CreatedAt,
		Outcomes:  outcomes,
		Formats:   configs,
		Slots:     slots,
		Items:     summary.Items,
		Points:    summary.Points,
		Totals: model.ExportTotals{
			TotalItems:    summary.TotalItems,
			TotalPoints:   summary.TotalPoints,
			ItemsByLevel:  summary.ItemsByLevel,
			PointsByLevel: summary.PointsByLevel,
		},
		ByFormat:  byFormat,
		Generated: generated,
	}, nil
}
