package export

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mtapang/tosforge/internal/blueprint"
	"github.com/mtapang/tosforge/internal/i18n"
	"github.com/mtapang/tosforge/internal/model"
)

func TestMain(m *testing.M) {
	if err := i18n.Init("en"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testCtx() context.Context {
	return i18n.WithLocalizer(context.Background(), i18n.NewLocalizer("en"))
}

func testExport(t *testing.T) *model.BlueprintExport {
	t.Helper()
	one := decimal.NewFromInt(1)
	essay := decimal.RequireFromString("7.5")
	slots := []model.AssignedSlot{
		{OutcomeID: 0, OutcomeText: "Define key concepts", Level: model.LevelRemember, Format: "MCQ", Points: one},
		{OutcomeID: 0, OutcomeText: "Define key concepts", Level: model.LevelUnderstand, Format: "MCQ", Points: one},
		{OutcomeID: 1, OutcomeText: "Classify entities", Level: model.LevelCreate, Format: "Essay", Points: essay},
	}
	summary := blueprint.Aggregate(slots)
	return &model.BlueprintExport{
		Course:    model.Course{ID: 1, Code: "BIO101", Title: "General Biology", TotalItems: 3},
		Name:      "Midterm",
		CreatedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Outcomes: []model.Outcome{
			{ID: 0, Text: "Define key concepts", Hours: 10},
			{ID: 1, Text: "Classify entities", Hours: 5},
		},
		Formats: []model.FormatConfig{
			{Name: "MCQ", ItemCount: 2, PointsPerItem: one},
			{Name: "Essay", ItemCount: 1, PointsPerItem: essay},
		},
		Slots:  slots,
		Items:  summary.Items,
		Points: summary.Points,
		Totals: model.ExportTotals{
			TotalItems:    summary.TotalItems,
			TotalPoints:   summary.TotalPoints,
			ItemsByLevel:  summary.ItemsByLevel,
			PointsByLevel: summary.PointsByLevel,
		},
		ByFormat: []model.FormatBreakdown{
			{Format: "Essay", Items: 1, Points: essay},
			{Format: "MCQ", Items: 2, Points: decimal.NewFromInt(2)},
		},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, testExport(t)); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"code": "BIO101"`, `"total_points": "9.5"`, `"name": "Midterm"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s", want)
		}
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("output should end with a newline")
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(testCtx(), &buf, testExport(t)); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	for _, want := range []string{"Specification", "Formats", "Blueprint"} {
		found := false
		for _, s := range sheets {
			if s == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing sheet %q, have %v", want, sheets)
		}
	}
	for _, s := range sheets {
		if s == "Questions" {
			t.Error("Questions sheet should not exist without generated questions")
		}
	}

	cell := func(sheet, ref string) string {
		t.Helper()
		v, err := f.GetCellValue(sheet, ref)
		if err != nil {
			t.Fatalf("read %s!%s: %v", sheet, ref, err)
		}
		return v
	}

	if got := cell("Specification", "A1"); !strings.Contains(got, "BIO101") || !strings.Contains(got, "Midterm") {
		t.Errorf("title = %q, want course code and blueprint name", got)
	}
	if got := cell("Specification", "B2"); got != "Remember" {
		t.Errorf("first level header = %q, want Remember", got)
	}
	if got := cell("Specification", "A4"); got != "Define key concepts" {
		t.Errorf("first outcome row = %q", got)
	}
	if got := cell("Specification", "B4"); got != "1" {
		t.Errorf("Remember items for first outcome = %q, want 1", got)
	}
	// Totals row sits below the two outcome rows. Column N holds total
	// items, column O total points.
	if got := cell("Specification", "A6"); got != "TOTAL" {
		t.Errorf("totals row label = %q", got)
	}
	if got := cell("Specification", "N6"); got != "3" {
		t.Errorf("grand total items = %q, want 3", got)
	}
	if got := cell("Specification", "O6"); got != "9.5" {
		t.Errorf("grand total points = %q, want 9.5", got)
	}

	if got := cell("Formats", "A2"); got != "MCQ" {
		t.Errorf("first format row = %q", got)
	}
	if got := cell("Formats", "D3"); got != "7.5" {
		t.Errorf("Essay total points = %q, want 7.5", got)
	}
	if got := cell("Formats", "B4"); got != "3" {
		t.Errorf("format total items = %q, want 3", got)
	}

	if got := cell("Blueprint", "B2"); got != "Define key concepts" {
		t.Errorf("first slot outcome = %q", got)
	}
	if got := cell("Blueprint", "E2"); got != "1" {
		t.Errorf("first slot points = %q, want 1", got)
	}
}

func TestWriteXLSXQuestionsSheet(t *testing.T) {
	data := testExport(t)
	data.Generated = []model.GeneratedQuestion{
		{
			Position:  0,
			OutcomeID: 0,
			Level:     model.LevelRemember,
			Format:    "MCQ",
			Points:    decimal.NewFromInt(1),
			Text:      "Which of the following defines homeostasis?",
			AnswerKey: "B",
		},
	}

	var buf bytes.Buffer
	if err := WriteXLSX(testCtx(), &buf, data); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue("Questions", "B2")
	if err != nil {
		t.Fatalf("read question cell: %v", err)
	}
	if !strings.Contains(got, "homeostasis") {
		t.Errorf("question text = %q", got)
	}
	key, err := f.GetCellValue("Questions", "C2")
	if err != nil {
		t.Fatalf("read answer key: %v", err)
	}
	if key != "B" {
		t.Errorf("answer key = %q, want B", key)
	}
}
