package sfh

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/interp"
)

// Metallicities maps a metallicity label to its column in an SFRD file.
var Metallicities = map[string]string{
	"z03":   "0",
	"z02":   "1",
	"z01":   "2",
	"z005":  "3",
	"z001":  "4",
	"z0001": "5",
}

// DefaultMetallicity is solar-like.
const DefaultMetallicity = "z02"

// LoadTable reads an SFRD file with a "redshift" column and one column per
// metallicity bin.
func LoadTable(path, metallicity string, policy interp.Policy) (Model, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: table model needs a table path", dynamo.ErrInvalidConfig)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ReadTable(f, name, metallicity, policy)
}

func ReadTable(r io.Reader, name, metallicity string, policy interp.Policy) (Model, error) {
	if metallicity == "" {
		metallicity = DefaultMetallicity
	}
	column, ok := Metallicities[metallicity]
	if !ok {
		return nil, fmt.Errorf("%w: metallicity %q (available: %v)", dynamo.ErrInvalidConfig, metallicity, metallicityNames())
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("sfrd table %s: %w", name, err)
	}
	if len(records) < 3 {
		return nil, fmt.Errorf("sfrd table %s: %w", name, dynamo.ErrEmptyTable)
	}

	zCol, rateCol := -1, -1
	for i, h := range records[0] {
		switch strings.TrimSpace(h) {
		case "redshift":
			zCol = i
		case column:
			rateCol = i
		}
	}
	if zCol < 0 || rateCol < 0 {
		return nil, fmt.Errorf("sfrd table %s: need columns redshift and %s, got %v", name, column, records[0])
	}

	zs := make([]float64, 0, len(records)-1)
	rates := make([]float64, 0, len(records)-1)
	for i, rec := range records[1:] {
		z, err := strconv.ParseFloat(rec[zCol], 64)
		if err != nil {
			return nil, &dynamo.RowError{Line: i + 2, Reason: "redshift", Wrapped: err}
		}
		rate, err := strconv.ParseFloat(rec[rateCol], 64)
		if err != nil {
			return nil, &dynamo.RowError{Line: i + 2, Reason: "rate", Wrapped: err}
		}
		zs = append(zs, z)
		rates = append(rates, rate)
	}

	// Files may list redshift in either direction.
	if len(zs) > 1 && zs[0] > zs[len(zs)-1] {
		for i, j := 0, len(zs)-1; i < j; i, j = i+1, j-1 {
			zs[i], zs[j] = zs[j], zs[i]
			rates[i], rates[j] = rates[j], rates[i]
		}
	}

	label := name + "/" + metallicity
	t, err := interp.NewTable("sfrd "+label, zs, rates, policy)
	if err != nil {
		return nil, err
	}
	return tabulated{name: label, table: t}, nil
}

func metallicityNames() []string {
	names := make([]string, 0, len(Metallicities))
	for k := range Metallicities {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
