package sprintanalysis

const (
	gravityMPS2       = 9.81
	driftCutoffHz     = 0.1
	minVelocityWindow = 2.0 // seconds
	minVelocitySample = 20
	scaleFactorLower  = 0.33
	scaleFactorUpper  = 3.0
	windowBufferSecs  = 0.5
)

// ComputeVelocity integrates the acceleration magnitude across the detected
// sprint window into velocity and distance curves, then corrects both against
// the known course distance. sprintStart and sprintEnd are absolute trace
// timestamps; the returned curves use times relative to sprintStart.
//
// Returns nil when the window is too short, too sparse, or when the
// integration drifted so far that the correction ratio leaves [0.33, 3.0];
// a curve that wrong is discarded rather than clamped.
func ComputeVelocity(accel []Sample, sprintStart, sprintEnd float64, distance int) *VelocityData {
	if sprintEnd-sprintStart < minVelocityWindow || len(accel) < minVelocitySample || distance == 0 {
		return nil
	}

	start := sprintStart - windowBufferSecs
	end := sprintEnd + windowBufferSecs

	var timestamps, magsMPS2 []float64
	for _, s := range accel {
		if s.Timestamp >= start && s.Timestamp <= end {
			timestamps = append(timestamps, s.Timestamp)
			magsMPS2 = append(magsMPS2, magnitude(s)*gravityMPS2)
		}
	}
	if len(timestamps) < minVelocitySample {
		return nil
	}

	filtered := HighPassRC(magsMPS2, timestamps, driftCutoffHz)
	rawVelocity := IntegrateTrapezoidal(filtered, timestamps)
	rawDistance := IntegrateTrapezoidal(rawVelocity, timestamps)

	endIdx := len(timestamps) - 1
	for i, t := range timestamps {
		if t >= sprintEnd {
			endIdx = i
			break
		}
	}

	integrated := rawDistance[endIdx]
	if integrated < 0.1 {
		return nil
	}
	scale := float64(distance) / integrated
	if scale < scaleFactorLower || scale > scaleFactorUpper {
		return nil
	}

	out := &VelocityData{
		Times:       make([]float64, len(timestamps)),
		Velocity:    make([]float64, len(timestamps)),
		Distance:    make([]float64, len(timestamps)),
		ScaleFactor: scale,
	}
	for i := range timestamps {
		out.Times[i] = timestamps[i] - sprintStart
		out.Velocity[i] = rawVelocity[i] * scale
		out.Distance[i] = rawDistance[i] * scale
	}

	for i, v := range out.Velocity {
		if v > out.MaxVelocity {
			out.MaxVelocity = v
			out.TimeToMaxV = out.Times[i]
		}
	}
	return out
}
