package sprintanalysis

import "math"

// HighPassRC applies a first-order RC high-pass filter to remove
// low-frequency drift:
//
//	y[n] = alpha * (y[n-1] + x[n] - x[n-1]), alpha = RC / (RC + dt)
//
// The output starts at zero. A non-positive dt (duplicate or out-of-order
// timestamp) repeats the previous output instead of dividing by it.
func HighPassRC(values, timestamps []float64, cutoffHz float64) []float64 {
	if len(values) <= 1 || len(values) != len(timestamps) {
		return append([]float64(nil), values...)
	}

	rc := 1.0 / (2.0 * math.Pi * cutoffHz)
	filtered := make([]float64, 0, len(values))
	filtered = append(filtered, 0)

	prevFiltered := 0.0
	prevRaw := values[0]
	for i := 1; i < len(values); i++ {
		dt := timestamps[i] - timestamps[i-1]
		if dt <= 0 {
			filtered = append(filtered, prevFiltered)
			continue
		}
		alpha := rc / (rc + dt)
		current := alpha * (prevFiltered + values[i] - prevRaw)
		filtered = append(filtered, current)
		prevFiltered = current
		prevRaw = values[i]
	}
	return filtered
}

// ButterworthLowPass applies a 2nd-order Butterworth low-pass filter with
// bilinear-transform coefficients, run forward then backward (Direct Form II
// Transposed) so the net phase shift is zero. An invalid configuration
// (non-positive rate or cutoff, or a cutoff at or above Nyquist) returns the
// input unchanged.
func ButterworthLowPass(signal []float64, cutoffHz, sampleRate float64) []float64 {
	if len(signal) == 0 {
		return nil
	}
	if sampleRate <= 0 || cutoffHz <= 0 || cutoffHz >= sampleRate/2.0 {
		return append([]float64(nil), signal...)
	}

	omega := math.Tan(math.Pi * cutoffHz / sampleRate)
	omega2 := omega * omega
	k := 1.0 + math.Sqrt2*omega + omega2

	b0 := omega2 / k
	b1 := 2.0 * omega2 / k
	b2 := omega2 / k
	a1 := 2.0 * (omega2 - 1.0) / k
	a2 := (1.0 - math.Sqrt2*omega + omega2) / k

	out := make([]float64, len(signal))
	z1, z2 := 0.0, 0.0
	for i, x := range signal {
		y := b0*x + z1
		z1 = b1*x - a1*y + z2
		z2 = b2*x - a2*y
		out[i] = y
	}

	z1, z2 = 0.0, 0.0
	for i := len(out) - 1; i >= 0; i-- {
		x := out[i]
		y := b0*x + z1
		z1 = b1*x - a1*y + z2
		z2 = b2*x - a2*y
		out[i] = y
	}
	return out
}

// IntegrateTrapezoidal computes the cumulative trapezoidal integral of values
// over timestamps. The first output is zero and a non-positive dt holds the
// running total.
func IntegrateTrapezoidal(values, timestamps []float64) []float64 {
	if len(values) <= 1 || len(values) != len(timestamps) {
		return make([]float64, len(values))
	}

	integral := make([]float64, len(values))
	cumulative := 0.0
	for i := 1; i < len(values); i++ {
		dt := timestamps[i] - timestamps[i-1]
		if dt > 0 {
			cumulative += (values[i-1] + values[i]) / 2.0 * dt
		}
		integral[i] = cumulative
	}
	return integral
}
