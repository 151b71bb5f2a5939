package sprintanalysis

import (
	"math"
	"testing"
)

// A clean constant reference should dominate the estimate. Exact equality is
// unattainable: the measurement-noise floor of 0.01 keeps every update gain
// below 1, and the 10Hz reference leaves 100Hz samples between updates on the
// predicted value. Hence the 0.1 m/s band rather than strict equality.
func TestSmoothVelocityTracksCleanReference(t *testing.T) {
	n := 500
	timestamps := make([]float64, n)
	forwardAccel := make([]float64, n)
	for i := range timestamps {
		timestamps[i] = float64(i) * 0.01
	}
	var refs []SpeedSample
	for ts := 0.0; ts <= 5.0; ts += 0.1 {
		refs = append(refs, SpeedSample{Timestamp: ts, Speed: 5.0, Noise: 1e-4})
	}

	smoothed := SmoothVelocity(timestamps, forwardAccel, refs, DefaultKalmanConfig())
	if len(smoothed) != n {
		t.Fatalf("smoothed length %d, want %d", len(smoothed), n)
	}
	for i, v := range smoothed {
		if math.Abs(v-5.0) > 0.1 {
			t.Fatalf("index %d: smoothed %v, want ~5.0", i, v)
		}
	}
}

func TestSmoothVelocityClampsNegative(t *testing.T) {
	n := 200
	timestamps := make([]float64, n)
	forwardAccel := make([]float64, n)
	for i := range timestamps {
		timestamps[i] = float64(i) * 0.01
		forwardAccel[i] = -5.0
	}
	smoothed := SmoothVelocity(timestamps, forwardAccel, nil, DefaultKalmanConfig())
	for i := 0; i < n-1; i++ {
		if smoothed[i] < 0 {
			t.Fatalf("index %d: smoothed velocity went negative: %v", i, smoothed[i])
		}
	}
}

func TestSmoothVelocitySkipsGappedIntervals(t *testing.T) {
	// A 2s hole in the trace must not inject a huge velocity step.
	timestamps := []float64{0, 0.01, 0.02, 2.02, 2.03, 2.04}
	forwardAccel := []float64{10, 10, 10, 10, 10, 10}
	smoothed := SmoothVelocity(timestamps, forwardAccel, nil, DefaultKalmanConfig())
	for i, v := range smoothed {
		if v > 1.0 {
			t.Fatalf("index %d: gapped interval integrated anyway: %v", i, v)
		}
	}
}

func TestSmoothVelocityInputValidation(t *testing.T) {
	if out := SmoothVelocity(nil, nil, nil, DefaultKalmanConfig()); out != nil {
		t.Fatalf("expected nil for empty input, got %v", out)
	}
	if out := SmoothVelocity([]float64{0, 1}, []float64{0}, nil, DefaultKalmanConfig()); out != nil {
		t.Fatalf("expected nil for mismatched lengths, got %v", out)
	}
}

func TestKalmanPresets(t *testing.T) {
	def := DefaultKalmanConfig()
	if def.ProcessNoise != 0.15 || def.MeasurementNoise != 0.4 {
		t.Fatalf("default preset = %+v", def)
	}
	trusting := ReferenceTrustingKalmanConfig()
	if trusting.ProcessNoise != 0.2 || trusting.MeasurementNoise != 0.3 {
		t.Fatalf("reference-trusting preset = %+v", trusting)
	}
}
