package export

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mtapang/tosforge/internal/i18n"
	"github.com/mtapang/tosforge/internal/model"
)

// WriteXLSX renders the blueprint export as a spreadsheet: a specification
// sheet with an item-count view and a points view per cell, a format
// distribution sheet, the slot-by-slot blueprint, and the generated
// questions when present. Sheet and column labels are localized from the
// context.
func WriteXLSX(ctx context.Context, w io.Writer, data *model.BlueprintExport) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeSpecificationSheet(ctx, f, bold, data); err != nil {
		return err
	}
	if err := writeFormatsSheet(ctx, f, bold, data); err != nil {
		return err
	}
	if err := writeBlueprintSheet(ctx, f, bold, data); err != nil {
		return err
	}
	if len(data.Generated) > 0 {
		if err := writeQuestionsSheet(ctx, f, bold, data); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}

func styleRow(f *excelize.File, sheet string, style, row, fromCol, toCol int) error {
	from, err := excelize.CoordinatesToCellName(fromCol, row)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(toCol, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, from, to, style)
}

func writeSpecificationSheet(ctx context.Context, f *excelize.File, bold int, data *model.BlueprintExport) error {
	sheet := i18n.T(ctx, "SheetSpecification")
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 42); err != nil {
		return err
	}

	// Title row.
	title := i18n.Td(ctx, "TitleSpecification", map[string]any{
		"Course": data.Course.Code,
		"Name":   data.Name,
	})
	if err := setCell(f, sheet, 1, 1, title); err != nil {
		return err
	}

	// Two header rows: level names spanning an items/points column pair,
	// then the pair labels, then the per-outcome total columns.
	colItems := i18n.T(ctx, "ColItems")
	colPoints := i18n.T(ctx, "ColPoints")
	if err := setCell(f, sheet, 1, 2, i18n.T(ctx, "ColOutcome")); err != nil {
		return err
	}
	for li, level := range model.Levels {
		col := 2 + li*2
		if err := setCell(f, sheet, col, 2, string(level)); err != nil {
			return err
		}
		from, _ := excelize.CoordinatesToCellName(col, 2)
		to, _ := excelize.CoordinatesToCellName(col+1, 2)
		if err := f.MergeCell(sheet, from, to); err != nil {
			return err
		}
		if err := setCell(f, sheet, col, 3, colItems); err != nil {
			return err
		}
		if err := setCell(f, sheet, col+1, 3, colPoints); err != nil {
			return err
		}
	}
	totalItemsCol := 2 + len(model.Levels)*2
	totalPointsCol := totalItemsCol + 1
	if err := setCell(f, sheet, totalItemsCol, 2, i18n.T(ctx, "ColTotalItems")); err != nil {
		return err
	}
	if err := setCell(f, sheet, totalPointsCol, 2, i18n.T(ctx, "ColTotalPoints")); err != nil {
		return err
	}
	for _, row := range []int{1, 2, 3} {
		if err := styleRow(f, sheet, bold, row, 1, totalPointsCol); err != nil {
			return err
		}
	}

	// One row per outcome.
	rowIdx := 4
	for _, outcome := range data.Outcomes {
		if err := setCell(f, sheet, 1, rowIdx, outcome.Text); err != nil {
			return err
		}
		rowItems := 0
		rowPoints := decimal.Zero
		for li, level := range model.Levels {
			col := 2 + li*2
			items := data.Items[level][outcome.ID]
			points := data.Points[level][outcome.ID]
			if err := setCell(f, sheet, col, rowIdx, items); err != nil {
				return err
			}
			if err := setCell(f, sheet, col+1, rowIdx, points.String()); err != nil {
				return err
			}
			rowItems += items
			rowPoints = rowPoints.Add(points)
		}
		if err := setCell(f, sheet, totalItemsCol, rowIdx, rowItems); err != nil {
			return err
		}
		if err := setCell(f, sheet, totalPointsCol, rowIdx, rowPoints.String()); err != nil {
			return err
		}
		rowIdx++
	}

	// Totals row.
	if err := setCell(f, sheet, 1, rowIdx, i18n.T(ctx, "RowTotal")); err != nil {
		return err
	}
	for li, level := range model.Levels {
		col := 2 + li*2
		if err := setCell(f, sheet, col, rowIdx, data.Totals.ItemsByLevel[level]); err != nil {
			return err
		}
		if err := setCell(f, sheet, col+1, rowIdx, data.Totals.PointsByLevel[level].String()); err != nil {
			return err
		}
	}
	if err := setCell(f, sheet, totalItemsCol, rowIdx, data.Totals.TotalItems); err != nil {
		return err
	}
	if err := setCell(f, sheet, totalPointsCol, rowIdx, data.Totals.TotalPoints.String()); err != nil {
		return err
	}
	return styleRow(f, sheet, bold, rowIdx, 1, totalPointsCol)
}

func writeFormatsSheet(ctx context.Context, f *excelize.File, bold int, data *model.BlueprintExport) error {
	sheet := i18n.T(ctx, "SheetFormats")
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}

	headers := []string{
		i18n.T(ctx, "ColFormat"),
		i18n.T(ctx, "ColItems"),
		i18n.T(ctx, "ColPointsPerItem"),
		i18n.T(ctx, "ColTotalPoints"),
	}
	for col, h := range headers {
		if err := setCell(f, sheet, col+1, 1, h); err != nil {
			return err
		}
	}
	if err := styleRow(f, sheet, bold, 1, 1, len(headers)); err != nil {
		return err
	}

	row := 2
	totalItems := 0
	totalPoints := decimal.Zero
	for _, c := range data.Formats {
		if err := setCell(f, sheet, 1, row, c.Name); err != nil {
			return err
		}
		if err := setCell(f, sheet, 2, row, c.ItemCount); err != nil {
			return err
		}
		if err := setCell(f, sheet, 3, row, c.PointsPerItem.String()); err != nil {
			return err
		}
		if err := setCell(f, sheet, 4, row, c.TotalPoints().String()); err != nil {
			return err
		}
		totalItems += c.ItemCount
		totalPoints = totalPoints.Add(c.TotalPoints())
		row++
	}

	if err := setCell(f, sheet, 1, row, i18n.T(ctx, "RowTotal")); err != nil {
		return err
	}
	if err := setCell(f, sheet, 2, row, totalItems); err != nil {
		return err
	}
	if err := setCell(f, sheet, 4, row, totalPoints.String()); err != nil {
		return err
	}
	return styleRow(f, sheet, bold, row, 1, len(headers))
}

func writeBlueprintSheet(ctx context.Context, f *excelize.File, bold int, data *model.BlueprintExport) error {
	sheet := i18n.T(ctx, "SheetBlueprint")
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 42); err != nil {
		return err
	}

	headers := []string{
		i18n.T(ctx, "ColNumber"),
		i18n.T(ctx, "ColOutcome"),
		i18n.T(ctx, "ColLevel"),
		i18n.T(ctx, "ColFormat"),
		i18n.T(ctx, "ColPoints"),
	}
	for col, h := range headers {
		if err := setCell(f, sheet, col+1, 1, h); err != nil {
			return err
		}
	}
	if err := styleRow(f, sheet, bold, 1, 1, len(headers)); err != nil {
		return err
	}

	for i, slot := range data.Slots {
		row := i + 2
		values := []any{i + 1, slot.OutcomeText, string(slot.Level), slot.Format, slot.Points.String()}
		for col, v := range values {
			if err := setCell(f, sheet, col+1, row, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeQuestionsSheet(ctx context.Context, f *excelize.File, bold int, data *model.BlueprintExport) error {
	sheet := i18n.T(ctx, "SheetQuestions")
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "C", 60); err != nil {
		return err
	}

	headers := []string{
		i18n.T(ctx, "ColNumber"),
		i18n.T(ctx, "ColQuestion"),
		i18n.T(ctx, "ColAnswerKey"),
		i18n.T(ctx, "ColFormat"),
		i18n.T(ctx, "ColPoints"),
	}
	for col, h := range headers {
		if err := setCell(f, sheet, col+1, 1, h); err != nil {
			return err
		}
	}
	if err := styleRow(f, sheet, bold, 1, 1, len(headers)); err != nil {
		return err
	}

	for i, q := range data.Generated {
		row := i + 2
		values := []any{q.Position + 1, q.Text, q.AnswerKey, q.Format, q.Points.String()}
		for col, v := range values {
			if err := setCell(f, sheet, col+1, row, v); err != nil {
				return err
			}
		}
	}
	return nil
}
