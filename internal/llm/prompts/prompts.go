// Package prompts builds the system prompts used for question text
// generation. Prompt bodies live in embedded template files so they can be
// tuned without touching the calling code.
package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"sync"
	"text/template"

	"github.com/mtapang/tosforge/internal/model"
)

//go:embed templates/*.txt
var templateFS embed.FS

// Variant selects the question-writing style.
type Variant string

const (
	// VariantStandard produces conventional exam items.
	VariantStandard Variant = "standard"
	// VariantContextual produces scenario-rich item stems.
	VariantContextual Variant = "contextual"
	// VariantConcise produces minimal, direct item stems.
	VariantConcise Variant = "concise"
)

var validVariants = map[Variant]bool{
	VariantStandard:   true,
	VariantContextual: true,
	VariantConcise:    true,
}

// IsValidVariant checks if a variant name is valid.
func IsValidVariant(v string) bool {
	return validVariants[Variant(v)]
}

var (
	loadOnce  sync.Once
	loadErr   error
	templates map[Variant]*template.Template
)

func load() error {
	loadOnce.Do(func() {
		templates = make(map[Variant]*template.Template)
		for v := range validVariants {
			name := "templates/question_" + string(v) + ".txt"
			content, err := templateFS.ReadFile(name)
			if err != nil {
				loadErr = fmt.Errorf("read prompt template %s: %w", name, err)
				return
			}
			tmpl, err := template.New(string(v)).Parse(string(content))
			if err != nil {
				loadErr = fmt.Errorf("parse prompt template %s: %w", name, err)
				return
			}
			templates[v] = tmpl
		}
	})
	return loadErr
}

// QuestionData holds template data for question generation prompts.
type QuestionData struct {
	CourseTitle    string
	OutcomeText    string
	Level          string
	LevelGuidance  string
	Format         string
	FormatGuidance string
	Points         string
}

// levelGuidance tells the model what kind of cognitive work the item must
// demand at each level.
var levelGuidance = map[model.CognitiveLevel]string{
	model.LevelRemember:   "recall of facts, terms, or basic concepts; the answer is retrieved, not derived",
	model.LevelUnderstand: "explanation or interpretation of a concept in the student's own terms",
	model.LevelApply:      "use of a learned procedure or concept in a new, concrete situation",
	model.LevelAnalyze:    "breaking material into parts and relating them; compare, contrast, or attribute",
	model.LevelEvaluate:   "a judgment with justification against explicit criteria",
	model.LevelCreate:     "producing original work: a plan, design, or composition",
}

// formatGuidance tells the model the structural rules of each common item
// format. Unknown formats get generic guidance.
var formatGuidance = map[string]string{
	"MCQ":             "one correct option and three plausible distractors, labeled A-D",
	"Identification":  "a short definite answer named from a description",
	"Short Answer":    "two to four sentences of free response",
	"Problem Solving": "a worked, multi-step problem with a definite result",
	"Essay":           "an extended response; include what a complete answer must cover",
	"Drawing/Diagram": "a labeled drawing or diagram; state the required labels",
	"True/False":      "a single statement that is unambiguously true or false",
	"Matching":        "two columns of paired entries to be matched",
}

// GuidanceFor returns the format guidance line for a format name.
func GuidanceFor(format string) string {
	if g, ok := formatGuidance[format]; ok {
		return g
	}
	return "follow the conventions of the " + format + " format"
}

// BuildQuestionPrompt renders the system prompt for generating one question
// from an assigned slot.
func BuildQuestionPrompt(variant Variant, courseTitle string, slot model.AssignedSlot) (string, error) {
	if err := load(); err != nil {
		return "", err
	}
	tmpl, ok := templates[variant]
	if !ok {
		return "", errors.New("invalid prompt variant: " + string(variant))
	}

	data := QuestionData{
		CourseTitle:    courseTitle,
		OutcomeText:    slot.OutcomeText,
		Level:          string(slot.Level),
		LevelGuidance:  levelGuidance[slot.Level],
		Format:         slot.Format,
		FormatGuidance: GuidanceFor(slot.Format),
		Points:         slot.Points.String(),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
