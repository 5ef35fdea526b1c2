package export

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/gwbsim/internal/analysis"
)

func points() []analysis.Point {
	pts := make([]analysis.Point, 8)
	for i := range pts {
		f := math.Pow(10, -4+0.5*float64(i))
		pts[i] = analysis.Point{F: f, Bulk: math.Pow(f/1e-3, 2.0/3.0)}
	}
	pts[3].Birth = 0.2
	return pts
}

func TestSpectrumSVG(t *testing.T) {
	svg := SpectrumSVG(points(), 1e-3, 800, 500)
	require.NotEmpty(t, svg)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, "stroke-dasharray")
	assert.Contains(t, svg, ">bulk<")
	// merger is empty everywhere, so its path has no data.
	assert.Contains(t, svg, `stroke="#ff4444" stroke-width="1.5" d=""`)
}

func TestSpectrumSVGBreaksAtEmptyBins(t *testing.T) {
	pts := points()
	pts[4].Bulk = 0
	svg := SpectrumSVG(pts, 1e-3, 800, 500)
	assert.Contains(t, svg, `stroke="#00ccff" stroke-width="1.5" d="M`)
	line := svg[strings.Index(svg, `stroke="#00ccff"`):]
	line = line[:strings.Index(line, "/>")]
	assert.Equal(t, 2, strings.Count(line, "M"))
}

func TestSpectrumSVGEmpty(t *testing.T) {
	assert.Empty(t, SpectrumSVG(nil, 1e-3, 800, 500))
	assert.Empty(t, SpectrumSVG(make([]analysis.Point, 4), 1e-3, 800, 500))
}

func TestWriteSpectrumSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectrum.svg")
	require.NoError(t, WriteSpectrumSVG(path, points(), 1e-3))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	assert.Error(t, WriteSpectrumSVG(path, nil, 1e-3))
}
