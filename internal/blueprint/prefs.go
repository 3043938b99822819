package blueprint

import "github.com/mtapang/tosforge/internal/model"

// PreferenceTable maps each cognitive level to an ordered list of format
// names, highest priority first. It expresses a soft preference: low
// complexity levels lean on quick-check formats, high complexity levels on
// open-ended ones. It never restricts which formats can be assigned.
type PreferenceTable map[model.CognitiveLevel][]string

// DefaultPreferences returns the standard level-to-format preference table.
func DefaultPreferences() PreferenceTable {
	return PreferenceTable{
		model.LevelRemember:   {"MCQ", "Identification"},
		model.LevelUnderstand: {"MCQ", "Short Answer"},
		model.LevelApply:      {"MCQ", "Problem Solving"},
		model.LevelAnalyze:    {"Short Answer", "Problem Solving"},
		model.LevelEvaluate:   {"Essay", "Problem Solving"},
		model.LevelCreate:     {"Essay", "Drawing/Diagram"},
	}
}
