package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTallyMerge(t *testing.T) {
	a := NewTally()
	a.Inc(NotFormed)
	a.Add(OutsideFrequency, 3)

	b := NewTally()
	b.Inc(NotFormed)
	b.Add(Unreachable, 0)

	a.Merge(b)
	a.Merge(nil)

	assert.EqualValues(t, 2, a.Get(NotFormed))
	assert.EqualValues(t, 3, a.Get(OutsideFrequency))
	assert.EqualValues(t, 5, a.Total())
	assert.Equal(t, []string{NotFormed, OutsideFrequency}, a.Names())
	assert.Equal(t, "not_formed=2 outside_frequency=3", a.String())
}

func TestTallySnapshotRoundTrip(t *testing.T) {
	a := NewTally()
	a.Add(SkippedRows, 7)

	snap := a.Snapshot()
	snap[SkippedRows] = 100

	assert.EqualValues(t, 7, a.Get(SkippedRows))
	assert.EqualValues(t, 100, FromSnapshot(snap).Get(SkippedRows))
}
