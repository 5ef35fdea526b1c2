package metrics

import (
	"fmt"
	"sort"
	"strings"
)

// Counter names reported at the end of a run.
const (
	NotFormed        = "not_formed"
	OutsideFrequency = "outside_frequency"
	Unreachable      = "unreachable"
	EmptySegment     = "empty_segment"
	Clamped          = "clamped_queries"
	SkippedRows      = "skipped_rows"
)

// Tally is a set of named counters. A Tally is owned by one goroutine;
// combine per-worker tallies with Merge.
type Tally struct {
	counts map[string]int64
}

func NewTally() *Tally {
	return &Tally{counts: make(map[string]int64)}
}

func (t *Tally) Inc(name string) { t.counts[name]++ }

func (t *Tally) Add(name string, n int64) {
	if n == 0 {
		return
	}
	t.counts[name] += n
}

func (t *Tally) Get(name string) int64 { return t.counts[name] }

func (t *Tally) Merge(other *Tally) {
	if other == nil {
		return
	}
	for k, v := range other.counts {
		t.counts[k] += v
	}
}

func (t *Tally) Total() int64 {
	var sum int64
	for _, v := range t.counts {
		sum += v
	}
	return sum
}

// Names returns counter names in sorted order.
func (t *Tally) Names() []string {
	names := make([]string, 0, len(t.counts))
	for k := range t.counts {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshot copies the counters, e.g. for run metadata.
func (t *Tally) Snapshot() map[string]int64 {
	out := make(map[string]int64, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}

func FromSnapshot(m map[string]int64) *Tally {
	t := NewTally()
	for k, v := range m {
		t.counts[k] = v
	}
	return t
}

func (t *Tally) String() string {
	parts := make([]string, 0, len(t.counts))
	for _, k := range t.Names() {
		parts = append(parts, fmt.Sprintf("%s=%d", k, t.counts[k]))
	}
	return strings.Join(parts, " ")
}
