package physics

import "math"

// SI and astronomical constants (CODATA 2018, IAU 2015 nominal values).
const (
	G    = 6.6743e-11
	C    = 299792458.0
	MSun = 1.988409870698051e30
	RSun = 6.957e8

	// Julian year based.
	SecondsPerMyr = 3.15576e13
	YearsPerMyr   = 1e6
	MpcMeters     = 3.0856775814913673e22

	// LightSpeed is c in Mpc/Myr.
	LightSpeed = C * SecondsPerMyr / MpcMeters
)

// inspiralCoeff converts the orbital-frequency inspiral law to GW frequency:
// (3/8) * 2^(8/3).
var inspiralCoeff = 3.0 / 8.0 * math.Pow(2, 8.0/3.0)

// MaxWDMass is the Chandrasekhar mass used by the radius fit.
const MaxWDMass = 1.44
