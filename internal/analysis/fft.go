package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/nihilo/internal/dynamo"
)

// PowerSpectrum returns the magnitude of the first n/2 frequency bins of
// data after removing its mean. Bin k corresponds to k/(n*dt).
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in data
// sampled every dt seconds. The peak bin is refined by parabolic
// interpolation over its neighbours.
func DominantPeriod(data []float64, dt float64) (float64, error) {
	if !(dt > 0) {
		return 0, fmt.Errorf("%w: sample interval %g", dynamo.ErrParameterBounds, dt)
	}
	ps := PowerSpectrum(data)
	if len(ps) < 2 {
		return 0, fmt.Errorf("%w: need at least 4 samples, got %d", dynamo.ErrParameterBounds, len(data))
	}

	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] == 0 {
		return math.Inf(1), nil
	}

	bin := float64(peak)
	if peak+1 < len(ps) {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if denom := a - 2*b + c; denom != 0 {
			bin += 0.5 * (a - c) / denom
		}
	}
	return float64(len(data)) * dt / bin, nil
}
