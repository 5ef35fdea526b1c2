package sfh

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/interp"
)

// Model is a star-formation-rate density history psi(z) in Msun/yr/Mpc^3.
type Model interface {
	Name() string
	Rate(z float64) (float64, error)
}

// madauDickinson is the double power law a(1+z)^b / (1 + ((1+z)/c)^d).
type madauDickinson struct {
	name       string
	a, b, c, d float64
}

func (m madauDickinson) Name() string { return m.name }

func (m madauDickinson) Rate(z float64) (float64, error) {
	zp := 1 + z
	return m.a * math.Pow(zp, m.b) / (1 + math.Pow(zp/m.c, m.d)), nil
}

type constant struct {
	rate float64
}

func (c constant) Name() string                  { return "constant" }
func (c constant) Rate(float64) (float64, error) { return c.rate, nil }

// tabulated interpolates one metallicity column of an SFRD file.
type tabulated struct {
	name  string
	table *interp.Table
}

func (t tabulated) Name() string { return t.name }

func (t tabulated) Rate(z float64) (float64, error) {
	return t.table.At(z)
}

func (t tabulated) Clamps() int64 { return t.table.Clamps() }

var analytic = map[string]madauDickinson{
	"md14": {name: "md14", a: 0.015, b: 2.7, c: 2.9, d: 5.6},
	"sfh2": {name: "sfh2", a: 0.143, b: 0.3, c: 2.9, d: 3.2},
	"sfh3": {name: "sfh3", a: 0.00533, b: 2.7, c: 2.9, d: 3.0},
	"sfh4": {name: "sfh4", a: 0.00245, b: 2.7, c: 5.0, d: 5.6},
}

// DefaultConstantRate is used by the constant model when no rate is set.
const DefaultConstantRate = 0.01

// Options select and parameterise a model.
type Options struct {
	Model       string  `yaml:"model" json:"model"`
	Constant    float64 `yaml:"constant,omitempty" json:"constant,omitempty"`
	Table       string  `yaml:"table,omitempty" json:"table,omitempty"`
	Metallicity string  `yaml:"metallicity,omitempty" json:"metallicity,omitempty"`
}

// New builds the named model. Tabulated models read opts.Table.
func New(opts Options, policy interp.Policy) (Model, error) {
	name := strings.ToLower(opts.Model)
	if m, ok := analytic[name]; ok {
		return m, nil
	}

	switch name {
	case "constant":
		rate := opts.Constant
		if rate == 0 {
			rate = DefaultConstantRate
		}
		if rate < 0 {
			return nil, fmt.Errorf("%w: constant rate %g is negative", dynamo.ErrInvalidConfig, rate)
		}
		return constant{rate: rate}, nil
	case "table":
		return LoadTable(opts.Table, opts.Metallicity, policy)
	}

	return nil, fmt.Errorf("%w: %q (available: %v)", dynamo.ErrUnknownModel, opts.Model, Names())
}

func Names() []string {
	names := []string{"constant", "table"}
	for name := range analytic {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
