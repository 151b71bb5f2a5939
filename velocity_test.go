package sprintanalysis

import (
	"math"
	"testing"
)

// rampAccel builds a 100Hz trace whose magnitude grows linearly, which the
// drift filter passes almost unchanged after its charge-up transient.
func rampAccel(duration, slopeG float64) []Sample {
	var samples []Sample
	for ts := 0.0; ts < duration; ts += 0.01 {
		samples = append(samples, Sample{Timestamp: ts, X: slopeG * ts})
	}
	return samples
}

func TestComputeVelocityScalesToCourseDistance(t *testing.T) {
	accel := rampAccel(11.0, 0.2)
	v := ComputeVelocity(accel, 0.5, 10.5, 100)
	if v == nil {
		t.Fatal("expected a velocity profile, got nil")
	}
	if v.ScaleFactor < scaleFactorLower || v.ScaleFactor > scaleFactorUpper {
		t.Fatalf("scale factor %v outside [%v, %v]", v.ScaleFactor, scaleFactorLower, scaleFactorUpper)
	}

	// The corrected distance must hit the course distance exactly at the
	// detected sprint end.
	endIdx := len(v.Times) - 1
	for i, ts := range v.Times {
		if ts >= 10.0 { // sprintEnd relative to sprintStart
			endIdx = i
			break
		}
	}
	if math.Abs(v.Distance[endIdx]-100.0) > 1e-9 {
		t.Fatalf("corrected distance at sprint end = %v, want 100", v.Distance[endIdx])
	}

	if v.MaxVelocity <= 0 {
		t.Fatalf("max velocity %v, want > 0", v.MaxVelocity)
	}
	maxIdx := 0
	for i, vel := range v.Velocity {
		if vel > v.Velocity[maxIdx] {
			maxIdx = i
		}
	}
	if v.TimeToMaxV != v.Times[maxIdx] {
		t.Fatalf("time to max velocity %v, want %v", v.TimeToMaxV, v.Times[maxIdx])
	}

	// Times are relative to sprint start; the window opens half a second
	// before it.
	if math.Abs(v.Times[0]+0.5) > 1e-9 {
		t.Fatalf("first relative time %v, want -0.5", v.Times[0])
	}
}

func TestComputeVelocityShortWindow(t *testing.T) {
	accel := rampAccel(11.0, 0.2)
	if v := ComputeVelocity(accel, 5.0, 6.5, 100); v != nil {
		t.Fatalf("expected nil for a 1.5s window, got %+v", v)
	}
}

func TestComputeVelocityRejectsFlatSignal(t *testing.T) {
	// Constant magnitude high-passes to zero, so nothing integrates.
	accel := constantAccel(1100, 0.01, 1.0)
	if v := ComputeVelocity(accel, 0.5, 10.5, 100); v != nil {
		t.Fatalf("expected nil for a flat trace, got %+v", v)
	}
}

func TestComputeVelocityRejectsBadScale(t *testing.T) {
	accel := rampAccel(11.0, 0.2)
	if v := ComputeVelocity(accel, 0.5, 10.5, 500); v != nil {
		t.Fatalf("expected nil when the correction ratio exceeds %v, got scale %v", scaleFactorUpper, v.ScaleFactor)
	}
	if v := ComputeVelocity(accel, 0.5, 10.5, 20); v != nil {
		t.Fatalf("expected nil when the correction ratio is below %v, got scale %v", scaleFactorLower, v.ScaleFactor)
	}
}
