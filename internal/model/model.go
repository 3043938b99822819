package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CognitiveLevel is one of the six Bloom taxonomy levels.
type CognitiveLevel string

const (
	LevelRemember   CognitiveLevel = "Remember"
	LevelUnderstand CognitiveLevel = "Understand"
	LevelApply      CognitiveLevel = "Apply"
	LevelAnalyze    CognitiveLevel = "Analyze"
	LevelEvaluate   CognitiveLevel = "Evaluate"
	LevelCreate     CognitiveLevel = "Create"
)

// Levels lists all cognitive levels in their canonical order. The order is
// used for deterministic iteration only, never for magnitude comparisons.
var Levels = []CognitiveLevel{
	LevelRemember,
	LevelUnderstand,
	LevelApply,
	LevelAnalyze,
	LevelEvaluate,
	LevelCreate,
}

// Valid reports whether l is one of the six known levels.
func (l CognitiveLevel) Valid() bool {
	for _, known := range Levels {
		if l == known {
			return true
		}
	}
	return false
}

// Outcome is a single learning objective being assessed. Identity is ID;
// Text is descriptive and never mutated. Hours drive the outcome's share
// of test items during matrix generation.
type Outcome struct {
	ID    int64   `json:"id"`
	Text  string  `json:"text"`
	Hours float64 `json:"hours,omitempty"`
}

// BloomSlot is one not-yet-assigned assessment item: "one question must be
// written at this level for this outcome".
type BloomSlot struct {
	OutcomeID   int64          `json:"outcome_id"`
	OutcomeText string         `json:"outcome_text"`
	Level       CognitiveLevel `json:"level"`
}

// FormatConfig is one teacher-configured row of the question format
// distribution. Name must be unique within a configuration set.
type FormatConfig struct {
	Name          string          `json:"name"`
	ItemCount     int             `json:"item_count"`
	PointsPerItem decimal.Decimal `json:"points_per_item"`
}

// TotalPoints returns ItemCount * PointsPerItem.
func (c FormatConfig) TotalPoints() decimal.Decimal {
	return c.PointsPerItem.Mul(decimal.NewFromInt(int64(c.ItemCount)))
}

// FormatSlot is one item of a format, worth exactly its configured points.
// Points are copied verbatim from the FormatConfig, never recomputed.
type FormatSlot struct {
	Format string          `json:"format"`
	Points decimal.Decimal `json:"points"`
}

// AssignedSlot is the union of one BloomSlot and one FormatSlot: a complete
// instruction for writing a single test item.
type AssignedSlot struct {
	OutcomeID   int64           `json:"outcome_id"`
	OutcomeText string          `json:"outcome_text"`
	Level       CognitiveLevel  `json:"level"`
	Format      string          `json:"format"`
	Points      decimal.Decimal `json:"points"`
}

// BloomMatrix maps level -> outcome id -> item count. It is the "what to
// assess" blueprint handed to the slot expander.
type BloomMatrix map[CognitiveLevel]map[int64]int

// Cell returns the item count for a (level, outcome) pair, zero if absent.
func (m BloomMatrix) Cell(level CognitiveLevel, outcomeID int64) int {
	return m[level][outcomeID]
}

// SetCell stores a cell value, creating the level row if needed.
func (m BloomMatrix) SetCell(level CognitiveLevel, outcomeID int64, count int) {
	row, ok := m[level]
	if !ok {
		row = make(map[int64]int)
		m[level] = row
	}
	row[outcomeID] = count
}

// TotalItems sums every cell of the matrix.
func (m BloomMatrix) TotalItems() int {
	total := 0
	for _, row := range m {
		for _, n := range row {
			total += n
		}
	}
	return total
}

// ItemMatrix maps level -> outcome id -> aggregated item count.
type ItemMatrix map[CognitiveLevel]map[int64]int

// PointMatrix maps level -> outcome id -> aggregated point sum.
type PointMatrix map[CognitiveLevel]map[int64]decimal.Decimal

// Course groups the outcomes and configuration a specification table is
// built from.
type Course struct {
	ID         int64  `json:"id"`
	Code       string `json:"code"`
	Title      string `json:"title"`
	TotalItems int    `json:"total_items"`
}

// Blueprint is a stored exam blueprint: the persisted result of one
// assignment run over a course's distributions.
type Blueprint struct {
	ID        int64     `json:"id"`
	CourseID  int64     `json:"course_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// GeneratedQuestion is question text produced by the LLM for one assigned
// slot. Points are carried over from the slot unchanged; the generator must
// not redistribute them.
type GeneratedQuestion struct {
	ID          int64           `json:"id"`
	BlueprintID int64           `json:"blueprint_id"`
	Position    int             `json:"position"`
	OutcomeID   int64           `json:"outcome_id"`
	Level       CognitiveLevel  `json:"level"`
	Format      string          `json:"format"`
	Points      decimal.Decimal `json:"points"`
	Text        string          `json:"text"`
	AnswerKey   string          `json:"answer_key"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ServerConfig holds runtime parameters set via CLI flags.
type ServerConfig struct {
	Shuffle       bool   // Randomize blueprint presentation order
	Seed          uint64 // Shuffle seed (0 means unseeded)
	BasePath      string // URL prefix for sub-path deployments
	PromptVariant string // Question generation prompt variant
}
