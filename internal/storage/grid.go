package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/san-kum/gwbsim/internal/grid"
	"github.com/san-kum/gwbsim/internal/sim"
)

// File names inside a run directory.
const (
	ZBinsFile    = "z_bins.csv"
	FBinsFile    = "f_bins.csv"
	SpectrumFile = "spectrum.csv"
	CountFile    = "n.csv"
)

func OmegaFile(k grid.Kind) string { return "omega_" + k.String() + ".csv" }

func CountKindFile(k grid.Kind) string { return "n_" + k.String() + ".csv" }

var (
	zBinsHeader = []string{"lo", "hi", "centre", "z", "chi", "dchi", "age", "since_max_z"}
	fBinsHeader = []string{"lo", "hi", "centre"}
)

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// matrixRows lays cells out as one row per epoch, prefixed by the epoch
// centre, under a header of frequency centres.
func matrixRows(g *grid.Grid, cells []float64) [][]string {
	header := make([]string, 0, g.NF()+1)
	header = append(header, "z\\f")
	for _, c := range g.F.Centres {
		header = append(header, formatFloat(c))
	}
	rows := [][]string{header}
	for i := 0; i < g.NZ(); i++ {
		row := make([]string, 0, g.NF()+1)
		row = append(row, formatFloat(g.Z.Centres[i]))
		for _, v := range cells[i*g.NF() : (i+1)*g.NF()] {
			row = append(row, formatFloat(v))
		}
		rows = append(rows, row)
	}
	return rows
}

func writeGrid(dir string, g *grid.Grid, epochs []sim.Epoch) error {
	zRows := [][]string{zBinsHeader}
	for i := 0; i < g.NZ(); i++ {
		row := []string{formatFloat(g.Z.Edges[i]), formatFloat(g.Z.Edges[i+1]), formatFloat(g.Z.Centres[i])}
		if i < len(epochs) {
			ep := epochs[i]
			row = append(row, formatFloat(ep.Z), formatFloat(ep.Chi), formatFloat(ep.DChi),
				formatFloat(ep.Age), formatFloat(ep.SinceMaxZ))
		} else {
			row = append(row, formatFloat(g.Z.Centres[i]), "0", "0", "0", "0")
		}
		zRows = append(zRows, row)
	}
	if err := writeCSV(filepath.Join(dir, ZBinsFile), zRows); err != nil {
		return err
	}

	fRows := [][]string{fBinsHeader}
	for j := 0; j < g.NF(); j++ {
		fRows = append(fRows, []string{formatFloat(g.F.Edges[j]), formatFloat(g.F.Edges[j+1]), formatFloat(g.F.Centres[j])})
	}
	if err := writeCSV(filepath.Join(dir, FBinsFile), fRows); err != nil {
		return err
	}

	total := make([]float64, g.NZ()*g.NF())
	for _, k := range grid.Kinds {
		if err := writeCSV(filepath.Join(dir, OmegaFile(k)), matrixRows(g, g.OmegaCells(k))); err != nil {
			return err
		}
		counts := g.CountCells(k)
		if err := writeCSV(filepath.Join(dir, CountKindFile(k)), matrixRows(g, counts)); err != nil {
			return err
		}
		for c, v := range counts {
			total[c] += v
		}
	}
	if err := writeCSV(filepath.Join(dir, CountFile), matrixRows(g, total)); err != nil {
		return err
	}

	return writeCSV(filepath.Join(dir, SpectrumFile), spectrumRows(g))
}

func spectrumRows(g *grid.Grid) [][]string {
	header := []string{"f"}
	var spectra [][]float64
	for _, k := range grid.Kinds {
		header = append(header, "omega_"+k.String())
		spectra = append(spectra, g.Spectrum(k))
	}
	header = append(header, "omega_total")

	rows := [][]string{header}
	for j, f := range g.F.Centres {
		row := []string{formatFloat(f)}
		var sum float64
		for _, s := range spectra {
			row = append(row, formatFloat(s[j]))
			sum += s[j]
		}
		rows = append(rows, append(row, formatFloat(sum)))
	}
	return rows
}

func parseRow(row []string, line int, file string) ([]float64, error) {
	out := make([]float64, len(row))
	for i, s := range row {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", file, line, err)
		}
		out[i] = v
	}
	return out, nil
}

func readAxis(path string, width int) (grid.Axis, [][]float64, error) {
	rows, err := readCSV(path)
	if err != nil {
		return grid.Axis{}, nil, err
	}
	if len(rows) < 2 {
		return grid.Axis{}, nil, fmt.Errorf("%s: no bins", filepath.Base(path))
	}

	var edges, centres []float64
	var values [][]float64
	for n, row := range rows[1:] {
		if len(row) != width {
			return grid.Axis{}, nil, fmt.Errorf("%s line %d: %d columns, want %d", filepath.Base(path), n+2, len(row), width)
		}
		v, err := parseRow(row, n+2, filepath.Base(path))
		if err != nil {
			return grid.Axis{}, nil, err
		}
		edges = append(edges, v[0])
		centres = append(centres, v[2])
		values = append(values, v)
	}
	edges = append(edges, values[len(values)-1][1])

	a, err := grid.FromEdges(edges, centres)
	return a, values, err
}

func readMatrix(path string, g *grid.Grid) ([]float64, error) {
	rows, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if len(rows) != g.NZ()+1 {
		return nil, fmt.Errorf("%s: %d rows, want %d", filepath.Base(path), len(rows)-1, g.NZ())
	}

	cells := make([]float64, 0, g.NZ()*g.NF())
	for i, row := range rows[1:] {
		if len(row) != g.NF()+1 {
			return nil, fmt.Errorf("%s line %d: %d columns, want %d", filepath.Base(path), i+2, len(row)-1, g.NF())
		}
		v, err := parseRow(row[1:], i+2, filepath.Base(path))
		if err != nil {
			return nil, err
		}
		cells = append(cells, v...)
	}
	return cells, nil
}

func readGrid(dir string) (*grid.Grid, []sim.Epoch, error) {
	z, zValues, err := readAxis(filepath.Join(dir, ZBinsFile), len(zBinsHeader))
	if err != nil {
		return nil, nil, err
	}
	f, _, err := readAxis(filepath.Join(dir, FBinsFile), len(fBinsHeader))
	if err != nil {
		return nil, nil, err
	}

	epochs := make([]sim.Epoch, len(zValues))
	for i, v := range zValues {
		epochs[i] = sim.Epoch{
			Index: i, Lo: v[0], Hi: v[1],
			Z: v[3], Chi: v[4], DChi: v[5], Age: v[6], SinceMaxZ: v[7],
		}
	}

	g := grid.New(z, f)
	for _, k := range grid.Kinds {
		omega, err := readMatrix(filepath.Join(dir, OmegaFile(k)), g)
		if err != nil {
			return nil, nil, err
		}
		count, err := readMatrix(filepath.Join(dir, CountKindFile(k)), g)
		if err != nil {
			return nil, nil, err
		}
		if err := g.SetCells(k, omega, count); err != nil {
			return nil, nil, err
		}
	}
	return g, epochs, nil
}
