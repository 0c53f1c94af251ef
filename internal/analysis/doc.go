// Package analysis inspects simulation output.
//
//   - [PowerSpectrum] and [DominantPeriod]: orbital periods from sampled
//     coordinates, via a real FFT
//   - [MeasureDivergence]: separation of two runs that differ by a small
//     displacement, and the finite-time Lyapunov estimate derived from it
//
// Periods are usually measured on a metrics.Trajectory axis:
//
//	tr := metrics.NewTrajectory(moon, earth, 10)
//	s.AddMetric(tr)
//	// ... run ...
//	period, err := analysis.DominantPeriod(tr.Axis(0), 10*s.TimeStep())
package analysis
