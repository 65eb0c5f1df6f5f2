package goal

import (
	"iter"
	"slices"
	"time"
)

// Ledger is a goal's progress history in creation order. Iteration is
// restartable; each call to All or Backward walks the full ledger again.
type Ledger struct {
	entries []ProgressEntry
}

func NewLedger(entries []ProgressEntry) *Ledger {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b ProgressEntry) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return &Ledger{entries: sorted}
}

// All yields entries oldest first.
func (l *Ledger) All() iter.Seq[ProgressEntry] {
	return func(yield func(ProgressEntry) bool) {
		for _, e := range l.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Backward yields entries newest first.
func (l *Ledger) Backward() iter.Seq[ProgressEntry] {
	return func(yield func(ProgressEntry) bool) {
		for _, e := range slices.Backward(l.entries) {
			if !yield(e) {
				return
			}
		}
	}
}

func (l *Ledger) Len() int {
	return len(l.entries)
}

func (l *Ledger) Latest() (ProgressEntry, bool) {
	if len(l.entries) == 0 {
		return ProgressEntry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Current is the progress the goal should be caching: the latest entry's
// value, or 0 for an empty ledger.
func (l *Ledger) Current() float64 {
	latest, ok := l.Latest()
	if !ok {
		return 0
	}
	return latest.Progress
}

// NextEntryTime returns the timestamp for a new ledger entry so that entries
// of one goal are strictly increasing even when the clock stalls or steps
// back.
func NextEntryTime(last *time.Time, now time.Time) time.Time {
	if last != nil && !now.After(*last) {
		return last.Add(time.Microsecond)
	}
	return now
}
