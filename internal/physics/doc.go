// Package physics holds the binary-evolution and energy-density formulas
// used by the binning engine.
//
// Frequencies passed to the inspiral helpers are gravitational-wave
// frequencies (twice the orbital frequency) unless a name says otherwise.
// Times are in Myr, masses in solar masses and separations in solar radii.
//
//   - [ChirpMass], [InspiralConstant]: per-binary quantities
//   - [InspiralTime], [FrequencyAfter]: quadrupole-driven evolution
//   - [WDRadius], [MinSeparation], [ContactFrequency]: the merger cap
//   - [Normalization.Omega], [Normalization.Count], [ShellVolume]: grid contributions
package physics
