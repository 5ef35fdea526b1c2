package grid

import (
	"math"
	"testing"

	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAxisEdgesAndCentres(t *testing.T) {
	a, err := LogAxis(5, -5, 0)
	require.NoError(t, err)

	require.Len(t, a.Edges, 6)
	require.Len(t, a.Centres, 5)
	assert.InEpsilon(t, 1e-5, a.Lo(), 1e-12)
	assert.InEpsilon(t, 1.0, a.Hi(), 1e-12)
	for j := range a.Centres {
		assert.InEpsilon(t, math.Sqrt(a.Edges[j]*a.Edges[j+1]), a.Centres[j], 1e-9)
	}
}

func TestLinearAxis(t *testing.T) {
	a, err := LinearAxis(4, 0, 8)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2, 4, 6, 8}, a.Edges)
	assert.Equal(t, []float64{1, 3, 5, 7}, a.Centres)

	_, err = LinearAxis(0, 0, 8)
	assert.ErrorIs(t, err, dynamo.ErrInvalidConfig)
}

func TestIndexIsHalfOpen(t *testing.T) {
	a, err := LinearAxis(4, 0, 8)
	require.NoError(t, err)

	tests := []struct {
		x    float64
		want int
	}{
		{-0.1, -1},
		{0, 0},
		{1.9, 0},
		{2, 1},
		{7.99, 3},
		{8, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.Index(tt.x), "x=%g", tt.x)
	}
}

func TestSplitCoversRangeExactly(t *testing.T) {
	a, err := LinearAxis(4, 0, 8)
	require.NoError(t, err)

	spans := a.Split(1, 5)
	require.Len(t, spans, 3)
	assert.Equal(t, Span{Bin: 0, Lo: 1, Hi: 2, First: true}, spans[0])
	assert.Equal(t, Span{Bin: 1, Lo: 2, Hi: 4}, spans[1])
	assert.Equal(t, Span{Bin: 2, Lo: 4, Hi: 5, Last: true}, spans[2])
}

func TestSplitEndingOnEdge(t *testing.T) {
	a, err := LinearAxis(4, 0, 8)
	require.NoError(t, err)

	spans := a.Split(2, 4)
	require.Len(t, spans, 1)
	assert.Equal(t, Span{Bin: 1, Lo: 2, Hi: 4, First: true, Last: true}, spans[0])
}

func TestSplitClipsToAxis(t *testing.T) {
	a, err := LinearAxis(4, 0, 8)
	require.NoError(t, err)

	spans := a.Split(-3, 9)
	require.Len(t, spans, 4)
	assert.False(t, spans[0].First)
	assert.False(t, spans[3].Last)

	assert.Nil(t, a.Split(8, 9))
	assert.Nil(t, a.Split(-2, 0))
	assert.Nil(t, a.Split(3, 3))
}

func TestGridAddMergeTotals(t *testing.T) {
	z, _ := LinearAxis(2, 0, 2)
	f, _ := LogAxis(3, -3, 0)

	a := New(z, f)
	b := a.NewLike()
	a.Add(Bulk, 0, 1, 1.5, 10)
	a.Add(Birth, 1, 2, 0.5, 1)
	b.Add(Bulk, 0, 1, 1.0, 5)
	b.Add(Merger, 1, 0, 2.0, 2)

	require.NoError(t, a.Merge(b))

	assert.Equal(t, 2.5, a.Omega(Bulk, 0, 1))
	assert.Equal(t, 15.0, a.Count(Bulk, 0, 1))
	assert.Equal(t, 2.0, a.TotalCount(1, 0))

	om, n := a.Totals(Bulk)
	assert.Equal(t, 2.5, om)
	assert.Equal(t, 15.0, n)

	assert.Equal(t, []float64{0, 2.5, 0}, a.Spectrum(Bulk))
	assert.Equal(t, []float64{0, 0.5}, a.Shells(Birth))
}

func TestMergeShapeMismatch(t *testing.T) {
	z, _ := LinearAxis(2, 0, 2)
	f1, _ := LogAxis(3, -3, 0)
	f2, _ := LogAxis(4, -3, 0)

	err := New(z, f1).Merge(New(z, f2))
	assert.ErrorIs(t, err, dynamo.ErrShapeMismatch)
}

func TestBinFactorNarrowBin(t *testing.T) {
	f, _ := LogAxis(1, -3, -2.9999)
	// For a narrow bin the factor tends to (2/3) f^(2/3) at the centre.
	assert.InEpsilon(t, 2.0/3.0*math.Pow(f.Centres[0], 2.0/3.0), f.BinFactor(0), 1e-6)
}

func TestKindString(t *testing.T) {
	for _, k := range Kinds {
		got, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := ParseKind("steady")
	assert.Error(t, err)
}
