package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/san-kum/gwbsim/internal/grid"
	"github.com/san-kum/gwbsim/internal/sim"
)

type ExportData struct {
	Metadata *RunMetadata           `json:"metadata,omitempty"`
	ZEdges   []float64              `json:"z_edges"`
	FEdges   []float64              `json:"f_edges"`
	FCentres []float64              `json:"f_centres"`
	Epochs   []sim.Epoch            `json:"epochs"`
	Omega    map[string][][]float64 `json:"omega"`
	N        map[string][][]float64 `json:"n"`
	Spectrum map[string][]float64   `json:"spectrum"`
}

func rowsOf(g *grid.Grid, cells []float64) [][]float64 {
	out := make([][]float64, g.NZ())
	for i := range out {
		out[i] = cells[i*g.NF() : (i+1)*g.NF()]
	}
	return out
}

func NewExportData(meta *RunMetadata, res *sim.Result) ExportData {
	g := res.Grid
	data := ExportData{
		Metadata: meta,
		ZEdges:   g.Z.Edges,
		FEdges:   g.F.Edges,
		FCentres: g.F.Centres,
		Epochs:   res.Epochs,
		Omega:    make(map[string][][]float64, len(grid.Kinds)),
		N:        make(map[string][][]float64, len(grid.Kinds)),
		Spectrum: make(map[string][]float64, len(grid.Kinds)),
	}
	for _, k := range grid.Kinds {
		data.Omega[k.String()] = rowsOf(g, g.OmegaCells(k))
		data.N[k.String()] = rowsOf(g, g.CountCells(k))
		data.Spectrum[k.String()] = g.Spectrum(k)
	}
	return data
}

func WriteJSON(w io.Writer, meta *RunMetadata, res *sim.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(meta, res))
}

func ExportJSON(path string, meta *RunMetadata, res *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, meta, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CellSchema has one row per (epoch, frequency) cell with every kind side
// by side.
var CellSchema = arrow.NewSchema([]arrow.Field{
	{Name: "epoch", Type: arrow.PrimitiveTypes.Int32},
	{Name: "z", Type: arrow.PrimitiveTypes.Float64},
	{Name: "f", Type: arrow.PrimitiveTypes.Float64},
	{Name: "omega_bulk", Type: arrow.PrimitiveTypes.Float64},
	{Name: "omega_birth", Type: arrow.PrimitiveTypes.Float64},
	{Name: "omega_merger", Type: arrow.PrimitiveTypes.Float64},
	{Name: "n_bulk", Type: arrow.PrimitiveTypes.Float64},
	{Name: "n_birth", Type: arrow.PrimitiveTypes.Float64},
	{Name: "n_merger", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// ExportArrow writes the grid as an Arrow IPC file.
func ExportArrow(path string, res *sim.Result) error {
	g := res.Grid
	mem := memory.NewGoAllocator()
	b := array.NewRecordBuilder(mem, CellSchema)
	defer b.Release()

	epoch := b.Field(0).(*array.Int32Builder)
	z := b.Field(1).(*array.Float64Builder)
	f := b.Field(2).(*array.Float64Builder)
	for i := 0; i < g.NZ(); i++ {
		zc := g.Z.Centres[i]
		if i < len(res.Epochs) {
			zc = res.Epochs[i].Z
		}
		for j := 0; j < g.NF(); j++ {
			epoch.Append(int32(i))
			z.Append(zc)
			f.Append(g.F.Centres[j])
		}
	}
	for n, k := range grid.Kinds {
		b.Field(3+n).(*array.Float64Builder).AppendValues(g.OmegaCells(k), nil)
		b.Field(6+n).(*array.Float64Builder).AppendValues(g.CountCells(k), nil)
	}

	rec := b.NewRecord()
	defer rec.Release()

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	w, err := ipc.NewFileWriter(out, ipc.WithSchema(CellSchema), ipc.WithAllocator(mem))
	if err != nil {
		out.Close()
		return err
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		out.Close()
		return fmt.Errorf("arrow record: %w", err)
	}
	if err := w.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ReadArrowColumn returns one float64 column of an exported file.
func ReadArrowColumn(path, name string) ([]float64, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	r, err := ipc.NewFileReader(in, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	idx := r.Schema().FieldIndices(name)
	if len(idx) == 0 {
		return nil, fmt.Errorf("arrow file %s has no column %q", path, name)
	}

	var out []float64
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.Record(i)
		if err != nil {
			return nil, err
		}
		col, ok := rec.Column(idx[0]).(*array.Float64)
		if !ok {
			return nil, fmt.Errorf("arrow column %q is %s, not float64", name, rec.Column(idx[0]).DataType())
		}
		out = append(out, col.Float64Values()...)
	}
	return out, nil
}
