package interp

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/gwbsim/internal/cosmology"
	"github.com/san-kum/gwbsim/internal/dynamo"
)

// Redshift converts between cosmic age (Myr) and redshift using a
// precomputed table. Ages must increase strictly and redshifts decrease
// strictly, so both directions are single valued.
type Redshift struct {
	ageToZ *Table
	zToAge *Table
}

func NewRedshift(ages, zs []float64, policy Policy) (*Redshift, error) {
	ageToZ, err := NewTable("age->z", ages, zs, policy)
	if err != nil {
		return nil, err
	}

	n := len(zs)
	rz := make([]float64, n)
	ra := make([]float64, n)
	for i := range zs {
		rz[i] = zs[n-1-i]
		ra[i] = ages[n-1-i]
	}
	zToAge, err := NewTable("z->age", rz, ra, policy)
	if err != nil {
		return nil, fmt.Errorf("redshift column must decrease with age: %w", err)
	}

	return &Redshift{ageToZ: ageToZ, zToAge: zToAge}, nil
}

// FromCosmology samples n points of the cosmology's age-redshift relation.
func FromCosmology(c *cosmology.Cosmology, n int, policy Policy) (*Redshift, error) {
	ages, zs, err := c.AgeRedshiftTable(n)
	if err != nil {
		return nil, err
	}
	return NewRedshift(ages, zs, policy)
}

// Z returns the redshift at cosmic age.
func (r *Redshift) Z(age float64) (float64, error) {
	return r.ageToZ.At(age)
}

// BoundZ checks z against the tabulated redshift range under the table's
// policy. Clamped queries count towards Clamps.
func (r *Redshift) BoundZ(z float64) (float64, error) {
	return r.zToAge.Bound(z)
}

// Age returns the cosmic age at redshift z.
func (r *Redshift) Age(z float64) (float64, error) {
	return r.zToAge.At(z)
}

func (r *Redshift) AgeDomain() (float64, float64) { return r.ageToZ.Domain() }

func (r *Redshift) RedshiftDomain() (float64, float64) { return r.zToAge.Domain() }

func (r *Redshift) Clamps() int64 {
	return r.ageToZ.Clamps() + r.zToAge.Clamps()
}

// LoadRedshift reads an age-redshift CSV table from path.
func LoadRedshift(path string, policy Policy) (*Redshift, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := ReadRedshift(f, policy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// ReadRedshift parses two numeric columns (age in Myr, redshift). A
// non-numeric first row is taken as a header.
func ReadRedshift(rd io.Reader, policy Policy) (*Redshift, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	var ages, zs []float64
	for i, rec := range records {
		if len(rec) < 2 {
			continue
		}
		age, errA := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		z, errZ := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if errA != nil || errZ != nil {
			if i == 0 {
				continue
			}
			return nil, &dynamo.RowError{Line: i + 1, Reason: "age table row is not numeric", Wrapped: fmt.Errorf("%v %v", errA, errZ)}
		}
		ages = append(ages, age)
		zs = append(zs, z)
	}

	return NewRedshift(ages, zs, policy)
}
