package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BlueprintExport is the top-level JSON structure for blueprint export.
type BlueprintExport struct {
	ID        int64               `json:"id"`
	Course    Course              `json:"course"`
	Name      string              `json:"name"`
	CreatedAt time.Time           `json:"created_at"`
	Outcomes  []Outcome           `json:"outcomes"`
	Formats   []FormatConfig      `json:"formats"`
	Slots     []AssignedSlot      `json:"slots"`
	Items     ItemMatrix          `json:"items"`
	Points    PointMatrix         `json:"points"`
	Totals    ExportTotals        `json:"totals"`
	ByFormat  []FormatBreakdown   `json:"by_format"`
	Generated []GeneratedQuestion `json:"generated_questions,omitempty"`
}

// ExportTotals carries the four aggregate totals of a specification table.
type ExportTotals struct {
	TotalItems    int                                `json:"total_items"`
	TotalPoints   decimal.Decimal                    `json:"total_points"`
	ItemsByLevel  map[CognitiveLevel]int             `json:"items_by_level"`
	PointsByLevel map[CognitiveLevel]decimal.Decimal `json:"points_by_level"`
}

// FormatBreakdown is the per-format row of the export summary.
type FormatBreakdown struct {
	Format string          `json:"format"`
	Items  int             `json:"items"`
	Points decimal.Decimal `json:"points"`
}
