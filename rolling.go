package sprintanalysis

import "math"

const rollingMinPeriods = 5

func magnitude(s Sample) float64 {
	return math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)
}

// RollingMean computes the trailing sliding-window average of the acceleration
// magnitude, plus the trace's sampling rate in Hz. The window length is
// windowSeconds converted to samples (never fewer than 10); indices with fewer
// than 5 samples of history are nil, never zero.
func RollingMean(accel []Sample, windowSeconds float64) ([]*float64, float64) {
	n := len(accel)
	if n < 2 {
		return make([]*float64, n), 0
	}
	span := accel[n-1].Timestamp - accel[0].Timestamp
	if span <= 0 {
		return make([]*float64, n), 0
	}
	rate := float64(n) / span

	window := int(math.Round(windowSeconds * rate))
	if window < 10 {
		window = 10
	}

	mag := make([]float64, n)
	for i, s := range accel {
		mag[i] = magnitude(s)
	}

	rolling := make([]*float64, n)
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += mag[i]
		if i >= window {
			sum -= mag[i-window]
		}
		count := i + 1
		if count > window {
			count = window
		}
		if count < rollingMinPeriods {
			continue
		}
		v := sum / float64(count)
		rolling[i] = &v
	}
	return rolling, rate
}
