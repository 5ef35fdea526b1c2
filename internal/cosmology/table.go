package cosmology

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// AgeTableHeader names the columns of an age-redshift table.
var AgeTableHeader = []string{"age_myr", "z"}

// WriteAgeTable writes an age-redshift table as CSV.
func WriteAgeTable(w io.Writer, ages, zs []float64) error {
	if len(ages) != len(zs) {
		return fmt.Errorf("age table: %d ages but %d redshifts", len(ages), len(zs))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(AgeTableHeader); err != nil {
		return err
	}
	for i := range ages {
		row := []string{
			strconv.FormatFloat(ages[i], 'g', 12, 64),
			strconv.FormatFloat(zs[i], 'g', 12, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
