package blueprint

import "github.com/mtapang/tosforge/internal/model"

// Assignment is the result of pairing every Bloom slot with exactly one
// format slot. PreferredMatches and FallbackMatches record how many pairings
// honored the preference table versus fell back to whatever remained.
type Assignment struct {
	Slots            []model.AssignedSlot
	PreferredMatches int
	FallbackMatches  int
}

// formatPool holds the remaining format slots, one FIFO queue per format,
// plus the fixed global format order used for deterministic fallback. Built
// fresh for every Assign call; never shared.
type formatPool struct {
	order  []string
	queues map[string][]model.FormatSlot
}

func newFormatPool(slots []model.FormatSlot) *formatPool {
	p := &formatPool{queues: make(map[string][]model.FormatSlot)}
	for _, s := range slots {
		if _, ok := p.queues[s.Format]; !ok {
			p.order = append(p.order, s.Format)
		}
		p.queues[s.Format] = append(p.queues[s.Format], s)
	}
	return p
}

// take pops the oldest slot of the named format, if any remain.
func (p *formatPool) take(format string) (model.FormatSlot, bool) {
	q := p.queues[format]
	if len(q) == 0 {
		return model.FormatSlot{}, false
	}
	s := q[0]
	p.queues[format] = q[1:]
	return s, true
}

// takeAny pops a slot from the first non-empty queue in global format order.
func (p *formatPool) takeAny() (model.FormatSlot, bool) {
	for _, format := range p.order {
		if s, ok := p.take(format); ok {
			return s, true
		}
	}
	return model.FormatSlot{}, false
}

func (p *formatPool) remaining() int {
	n := 0
	for _, q := range p.queues {
		n += len(q)
	}
	return n
}

// Assign pairs every Bloom slot with exactly one format slot using
// soft-preference matching. Bloom slots are processed in their given order;
// for each, the first preferred format with remaining supply wins, and when
// no preferred format has supply the first non-empty format in global order
// is used instead. The fallback guarantees assignment always succeeds when
// the two totals match, however skewed the preferences are relative to the
// configuration. Runs in O(n) and is reproducible for identical inputs.
//
// Every assigned slot carries its format slot's points verbatim. On a slot
// count mismatch no partial output is produced.
func Assign(bloomSlots []model.BloomSlot, formatSlots []model.FormatSlot, prefs PreferenceTable) (*Assignment, error) {
	if len(bloomSlots) != len(formatSlots) {
		return nil, &CountMismatchError{
			BloomSlots:  len(bloomSlots),
			FormatSlots: len(formatSlots),
		}
	}

	pool := newFormatPool(formatSlots)
	result := &Assignment{Slots: make([]model.AssignedSlot, 0, len(bloomSlots))}

	for _, bs := range bloomSlots {
		var (
			fs model.FormatSlot
			ok bool
		)
		for _, preferred := range prefs[bs.Level] {
			if fs, ok = pool.take(preferred); ok {
				result.PreferredMatches++
				break
			}
		}
		if !ok {
			if fs, ok = pool.takeAny(); !ok {
				return nil, &IncompleteAssignmentError{Remaining: 0}
			}
			result.FallbackMatches++
		}

		result.Slots = append(result.Slots, model.AssignedSlot{
			OutcomeID:   bs.OutcomeID,
			OutcomeText: bs.OutcomeText,
			Level:       bs.Level,
			Format:      fs.Format,
			Points:      fs.Points,
		})
	}

	if left := pool.remaining(); left != 0 {
		return nil, &IncompleteAssignmentError{Remaining: left}
	}
	return result, nil
}

// Build expands both distributions and assigns them in one step. It is the
// usual entry point for callers holding a matrix and a format configuration
// rather than pre-expanded slot sequences.
func Build(matrix model.BloomMatrix, outcomes []model.Outcome, configs []model.FormatConfig, prefs PreferenceTable) (*Assignment, error) {
	bloomSlots, err := ExpandBloomSlots(matrix, outcomes)
	if err != nil {
		return nil, err
	}
	formatSlots, err := ExpandFormatSlots(configs)
	if err != nil {
		return nil, err
	}
	return Assign(bloomSlots, formatSlots, prefs)
}
