// Package export renders a run's spectrum as a standalone SVG chart.
package export

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/san-kum/gwbsim/internal/analysis"
	"github.com/san-kum/gwbsim/internal/grid"
)

const margin = 50.0

var kindColors = map[grid.Kind]string{
	grid.Bulk:   "#00ccff",
	grid.Birth:  "#00ff88",
	grid.Merger: "#ff4444",
}

type series struct {
	name   string
	color  string
	dashed bool
	ys     []float64
}

// frame maps log10 frequency and log10 Omega onto the plot area.
type frame struct {
	xMin, xMax, yMin, yMax float64
	w, h                   float64
}

func (fr frame) x(f float64) float64 {
	return margin + (math.Log10(f)-fr.xMin)/(fr.xMax-fr.xMin)*fr.w
}

func (fr frame) y(v float64) float64 {
	return margin + fr.h - (math.Log10(v)-fr.yMin)/(fr.yMax-fr.yMin)*fr.h
}

// SpectrumSVG draws Omega(f) per kind, the total and the f^(2/3) reference
// through fRef on log-log axes. Bins with no signal break the lines. It
// returns "" when the spectrum is empty.
func SpectrumSVG(pts []analysis.Point, fRef float64, width, height int) string {
	if len(pts) < 2 {
		return ""
	}
	all := []series{{name: "total", color: "#ffffff", ys: analysis.Totals(pts)}}
	for _, k := range grid.Kinds {
		ys := make([]float64, len(pts))
		for i, p := range pts {
			ys[i] = p.Kind(k)
		}
		all = append(all, series{name: k.String(), color: kindColors[k], ys: ys})
	}
	all = append(all, series{name: "f^(2/3)", color: "#888899", dashed: true, ys: analysis.ReferenceLine(pts, fRef)})

	fr := frame{
		xMin: math.Log10(pts[0].F), xMax: math.Log10(pts[len(pts)-1].F),
		yMin: math.Inf(1), yMax: math.Inf(-1),
		w: float64(width) - 2*margin, h: float64(height) - 2*margin,
	}
	for _, s := range all {
		for _, v := range s.ys {
			if v > 0 {
				fr.yMin = math.Min(fr.yMin, math.Log10(v))
				fr.yMax = math.Max(fr.yMax, math.Log10(v))
			}
		}
	}
	if math.IsInf(fr.yMin, 1) {
		return ""
	}
	fr.yMin = math.Floor(fr.yMin)
	fr.yMax = math.Ceil(fr.yMax)
	if fr.yMax == fr.yMin {
		fr.yMax++
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#444466"/>
`, width, height, width, height, margin, margin, fr.w, fr.h))

	for d := math.Ceil(fr.xMin); d <= fr.xMax; d++ {
		x := fr.x(math.Pow(10, d))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="#888899" font-size="11" text-anchor="middle">1e%g</text>
`, x, margin+fr.h+16, d))
	}
	for d := fr.yMin; d <= fr.yMax; d++ {
		y := fr.y(math.Pow(10, d))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="#888899" font-size="11" text-anchor="end">1e%g</text>
`, margin-4, y+4, d))
	}

	for i, s := range all {
		dash := ""
		if s.dashed {
			dash = ` stroke-dasharray="6,4"`
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5"%s d="%s"/>
`, s.color, dash, pathData(fr, pts, s.ys)))
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-size="12">%s</text>
`, margin+fr.w-70, margin+16+14*float64(i), s.color, s.name))
	}

	sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="#cccccc" font-size="12" text-anchor="middle">f [Hz]</text>
</svg>`, margin+fr.w/2, float64(height)-8))
	return sb.String()
}

func pathData(fr frame, pts []analysis.Point, ys []float64) string {
	var sb strings.Builder
	pen := false
	for i, v := range ys {
		if v <= 0 {
			pen = false
			continue
		}
		op := " L"
		if !pen {
			op = " M"
		}
		sb.WriteString(fmt.Sprintf("%s%.1f,%.1f", op, fr.x(pts[i].F), fr.y(v)))
		pen = true
	}
	return strings.TrimSpace(sb.String())
}

func WriteSpectrumSVG(path string, pts []analysis.Point, fRef float64) error {
	svg := SpectrumSVG(pts, fRef, 800, 500)
	if svg == "" {
		return fmt.Errorf("spectrum has no positive bins to plot")
	}
	return os.WriteFile(path, []byte(svg), 0644)
}
