package blueprint

import (
	"fmt"

	"github.com/mtapang/tosforge/internal/model"
)

// OutcomeRefError reports a Bloom matrix cell that references an outcome id
// absent from the outcome list.
type OutcomeRefError struct {
	Level     model.CognitiveLevel
	OutcomeID int64
}

func (e *OutcomeRefError) Error() string {
	return fmt.Sprintf("bloom matrix cell %s references unknown outcome %d", e.Level, e.OutcomeID)
}

// NegativeCountError reports a negative Bloom matrix cell.
type NegativeCountError struct {
	Level     model.CognitiveLevel
	OutcomeID int64
	Count     int
}

func (e *NegativeCountError) Error() string {
	return fmt.Sprintf("bloom matrix cell %s/outcome %d has negative count %d", e.Level, e.OutcomeID, e.Count)
}

// UnknownLevelError reports a Bloom matrix row keyed by a level that is not
// one of the six taxonomy levels.
type UnknownLevelError struct {
	Level model.CognitiveLevel
}

func (e *UnknownLevelError) Error() string {
	return fmt.Sprintf("bloom matrix has unknown cognitive level %q", e.Level)
}

// FormatConfigError reports a format configuration with a non-positive item
// count or points value.
type FormatConfigError struct {
	Name   string
	Reason string
}

func (e *FormatConfigError) Error() string {
	return fmt.Sprintf("format %q: %s", e.Name, e.Reason)
}

// DuplicateFormatError reports a format name that appears more than once in
// a configuration set.
type DuplicateFormatError struct {
	Name string
}

func (e *DuplicateFormatError) Error() string {
	return fmt.Sprintf("duplicate format name %q", e.Name)
}

// CountMismatchError reports that the Bloom distribution and the format
// distribution expand to different slot totals. Assignment is impossible and
// never truncates or pads to compensate.
type CountMismatchError struct {
	BloomSlots  int
	FormatSlots int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("bloom distribution expands to %d slots but format distribution expands to %d", e.BloomSlots, e.FormatSlots)
}

// IncompleteAssignmentError reports format slots left in the pool after
// every Bloom slot was consumed. Unreachable when the slot counts matched.
type IncompleteAssignmentError struct {
	Remaining int
}

func (e *IncompleteAssignmentError) Error() string {
	return fmt.Sprintf("assignment left %d format slots unused", e.Remaining)
}
