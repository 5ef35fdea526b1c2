package population

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/metrics"
	"github.com/san-kum/gwbsim/internal/physics"
)

// Catalog is a loaded population with the rows that were skipped.
type Catalog struct {
	Systems []BinarySystem
	Rows    int
	Skipped *metrics.Tally
}

func newCatalog() *Catalog {
	return &Catalog{Skipped: metrics.NewTally()}
}

func (c *Catalog) skip(reason error) {
	c.Skipped.Inc("skipped_" + reason.Error())
}

// SkippedRows is the number of rejected rows over all reasons.
func (c *Catalog) SkippedRows() int64 {
	return c.Skipped.Total()
}

// Formats understood by Load.
const (
	FormatCSV  = "csv"
	FormatSeBa = "seba"
)

// Load reads a catalog. An empty format is inferred from the extension:
// .dat files are raw SeBa output, everything else processed CSV.
func Load(path, format string) (*Catalog, error) {
	if format == "" {
		format = FormatCSV
		if strings.EqualFold(filepath.Ext(path), ".dat") {
			format = FormatSeBa
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case FormatCSV:
		return ReadCSV(f)
	case FormatSeBa:
		return ReadSeBa(f)
	}
	return nil, fmt.Errorf("%w: catalog format %q", dynamo.ErrInvalidConfig, format)
}

var errMalformed = errors.New("malformed")

// ReadCSV reads a processed catalog. The header must name t0, m1, m2 and
// either nu0 or a; M_ch, K, nu_max and Dt_max are used when present and
// derived otherwise. Rows that fail to parse or validate are skipped and
// counted.
func ReadCSV(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return newCatalog(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, req := range []string{"t0", "m1", "m2"} {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("%w: catalog header %v lacks column %q", dynamo.ErrInvalidConfig, header, req)
		}
	}
	_, hasNu := cols["nu0"]
	_, hasA := cols["a"]
	if !hasNu && !hasA {
		return nil, fmt.Errorf("%w: catalog header %v needs nu0 or a", dynamo.ErrInvalidConfig, header)
	}

	cat := newCatalog()
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			cat.Rows++
			cat.skip(errMalformed)
			continue
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		cat.Rows++

		get := func(name string) (float64, bool, error) {
			i, ok := cols[name]
			if !ok || i >= len(rec) || strings.TrimSpace(rec[i]) == "" {
				return 0, false, nil
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64)
			return v, true, err
		}

		b, err := parseRow(get)
		if err != nil {
			cat.skip(err)
			continue
		}
		cat.Systems = append(cat.Systems, b)
	}

	return cat, nil
}

func parseRow(get func(string) (float64, bool, error)) (BinarySystem, error) {
	var vals [4]float64
	for i, name := range []string{"t0", "m1", "m2"} {
		v, ok, err := get(name)
		if err != nil || !ok {
			return BinarySystem{}, errMalformed
		}
		vals[i] = v
	}
	t0, m1, m2 := vals[0], vals[1], vals[2]

	a, hasA, errA := get("a")
	nu0, hasNu, errNu := get("nu0")
	if errA != nil || errNu != nil {
		return BinarySystem{}, errMalformed
	}

	var (
		b   BinarySystem
		err error
	)
	switch {
	case hasNu:
		b, err = New(t0, m1, m2, nu0)
		if hasA {
			b.A = a
		}
	case hasA:
		b, err = FromSeparation(t0, a, m1, m2)
	default:
		return BinarySystem{}, errMalformed
	}
	if err != nil {
		return BinarySystem{}, err
	}

	given := make(map[string]bool, 4)
	for name, dst := range map[string]*float64{
		"M_ch":   &b.ChirpMass,
		"K":      &b.K,
		"nu_max": &b.NuMax,
		"Dt_max": &b.DtMax,
	} {
		v, ok, err := get(name)
		if err != nil {
			return BinarySystem{}, errMalformed
		}
		if ok && v > 0 {
			*dst = v
			given[name] = true
		}
	}
	if b.NuMax <= b.Nu0 {
		return BinarySystem{}, errContact
	}
	if !given["Dt_max"] && (given["nu_max"] || given["K"]) {
		b.DtMax = physics.InspiralTime(b.BirthFrequency(), b.ContactFrequency(), b.K)
	}

	return b, nil
}

// ReadSeBa reads whitespace-separated "t0 a m1 m2" rows as written by the
// SeBa population synthesis code. Lines starting with # are ignored.
func ReadSeBa(r io.Reader) (*Catalog, error) {
	cat := newCatalog()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cat.Rows++

		fields := strings.Fields(text)
		if len(fields) < 4 {
			cat.skip(errMalformed)
			continue
		}
		var v [4]float64
		ok := true
		for i := range v {
			x, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				ok = false
				break
			}
			v[i] = x
		}
		if !ok {
			cat.skip(errMalformed)
			continue
		}

		b, err := FromSeparation(v[0], v[1], v[2], v[3])
		if err != nil {
			cat.skip(err)
			continue
		}
		cat.Systems = append(cat.Systems, b)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return cat, nil
}

// CatalogHeader is the column order written by WriteCSV.
var CatalogHeader = []string{"t0", "a", "m1", "m2", "nu0", "M_ch", "K", "nu_max", "Dt_max"}

// WriteCSV writes systems with every derived column.
func WriteCSV(w io.Writer, systems []BinarySystem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CatalogHeader); err != nil {
		return err
	}
	for _, b := range systems {
		row := make([]string, 0, len(CatalogHeader))
		for _, v := range []float64{b.T0, b.A, b.M1, b.M2, b.Nu0, b.ChirpMass, b.K, b.NuMax, b.DtMax} {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
