package sprintanalysis

const minGyroSamples = 100

func variance(values []float64) float64 {
	n := float64(len(values))
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= n
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / n
}

// buildGyroData summarizes the gyroscope curve relative to sprint start.
// Fewer than 100 samples is not enough rotation history to be meaningful, so
// the summary is omitted. Axis priority on equal variance is fixed: x over y
// over z.
func buildGyroData(gyro []Sample, sprintStart float64) *GyroData {
	if len(gyro) < minGyroSamples {
		return nil
	}

	out := &GyroData{
		Times: make([]float64, len(gyro)),
		X:     make([]float64, len(gyro)),
		Y:     make([]float64, len(gyro)),
		Z:     make([]float64, len(gyro)),
	}
	for i, s := range gyro {
		out.Times[i] = s.Timestamp - sprintStart
		out.X[i] = s.X
		out.Y[i] = s.Y
		out.Z[i] = s.Z
	}

	vx := variance(out.X)
	vy := variance(out.Y)
	vz := variance(out.Z)
	switch {
	case vx >= vy && vx >= vz:
		out.DominantAxis = "x"
	case vy >= vz:
		out.DominantAxis = "y"
	default:
		out.DominantAxis = "z"
	}
	return out
}
