// Package analysis extracts time series from sampled frames and finds
// periodic structure in them.
//
//   - [RadialSeries]: distance of one body from another over time
//   - [CoordinateSeries]: one position component of a body over time
//   - [EnergySeries]: total energy per frame
//   - [PowerSpectrum], [DominantPeriod]: spectral analysis of a series
//
// # Orbital periods
//
// The period of a planet can be read from its x coordinate:
//
//	xs := analysis.CoordinateSeries(result.Frames, id, 0)
//	period, ok := analysis.DominantPeriod(xs, sampleDt)
package analysis
