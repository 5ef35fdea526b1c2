package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/gwbsim/internal/dynamo"
	"github.com/san-kum/gwbsim/internal/grid"
	"github.com/san-kum/gwbsim/internal/metrics"
	"github.com/san-kum/gwbsim/internal/physics"
)

// Components selects which kinds of deposit are accumulated.
type Components struct {
	Bulk   bool `yaml:"bulk" json:"bulk"`
	Birth  bool `yaml:"birth" json:"birth"`
	Merger bool `yaml:"merger" json:"merger"`
}

func AllComponents() Components {
	return Components{Bulk: true, Birth: true, Merger: true}
}

func (c Components) Enabled(k grid.Kind) bool {
	switch k {
	case grid.Bulk:
		return c.Bulk
	case grid.Birth:
		return c.Birth
	case grid.Merger:
		return c.Merger
	}
	return false
}

type Options struct {
	Mode      dynamo.Mode
	Epochs    int     // number of epoch bins
	MaxZ      float64 // upper redshift of the binned history
	Frequency grid.Axis
	Norm      physics.Normalization
	Include   Components
	Workers   int // <= 0 uses one worker per CPU
}

func (o Options) validate() error {
	if _, err := dynamo.ParseMode(string(o.Mode)); err != nil {
		return err
	}
	if o.Epochs < 1 {
		return fmt.Errorf("%w: epoch count must be positive, got %d", dynamo.ErrInvalidConfig, o.Epochs)
	}
	if !(o.MaxZ > 0) {
		return fmt.Errorf("%w: max redshift must be positive, got %g", dynamo.ErrInvalidConfig, o.MaxZ)
	}
	if o.Frequency.Len() < 1 {
		return fmt.Errorf("%w: frequency axis has no bins", dynamo.ErrInvalidConfig)
	}
	if o.Frequency.Lo() <= 0 {
		return fmt.Errorf("%w: frequency axis must be positive", dynamo.ErrInvalidConfig)
	}
	return o.Norm.Validate()
}

// Epoch is one cosmic shell. In time mode Lo and Hi are lookback times
// in Myr, otherwise redshifts.
type Epoch struct {
	Index     int     `json:"index"`
	Lo        float64 `json:"lo"`
	Hi        float64 `json:"hi"`
	Z         float64 `json:"z"`
	Chi       float64 `json:"chi"`         // Mpc, at Z
	DChi      float64 `json:"dchi"`        // Mpc, shell depth
	Age       float64 `json:"age"`         // Myr, cosmic age at Z
	SinceMaxZ float64 `json:"since_max_z"` // Myr elapsed since MaxZ
}

type Result struct {
	Grid        *grid.Grid
	Epochs      []Epoch
	Diagnostics *metrics.Tally
	Systems     int // catalog size before prefiltering
	Binned      int // systems that reached the binning loop
	Elapsed     time.Duration
}
