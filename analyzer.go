package sprintanalysis

import "fmt"

const (
	minAccelSamples   = 100
	rollingWindowSecs = 1.0
	maxProfilePoints  = 500
)

// AnalyzeSprint runs the full detection-and-estimation pass over one trace:
// rolling mean, bidirectional boundary detection, piecewise phase fitting,
// velocity/distance integration, and 10m splits. Hard validation failures
// return an error and no partial result; components with insufficient data
// simply leave their optional section nil.
func AnalyzeSprint(trace *SprintTrace) (*SprintResult, error) {
	accel := trace.Accel
	if len(accel) < minAccelSamples {
		return nil, fmt.Errorf("too few acceleration samples: %d < %d", len(accel), minAccelSamples)
	}

	timestamps := make([]float64, len(accel))
	rawMag := make([]float64, len(accel))
	for i, s := range accel {
		timestamps[i] = s.Timestamp
		rawMag[i] = magnitude(s)
	}

	rolling, rate := RollingMean(accel, rollingWindowSecs)
	if rate <= 0 {
		return nil, fmt.Errorf("acceleration trace spans no time")
	}
	sprintLevel := findSprintLevel(timestamps, rolling)
	sprintStart := findSprintStart(timestamps, rolling)
	minTime := minSprintTime(trace.Distance)

	fwd := detectForward(timestamps, rolling, sprintStart, sprintLevel, minTime, rate)
	bwd := detectBackward(timestamps, rolling, sprintLevel)
	finalTime, decision, gap := decide(fwd.time, bwd.time)

	tRel := make([]float64, len(timestamps))
	for i, t := range timestamps {
		tRel[i] = t - sprintStart
	}

	result := &SprintResult{
		Index:    trace.Index,
		Date:     trace.Date,
		Distance: trace.Distance,
		FwdDur:   fwd.time - sprintStart,
		BwdDur:   bwd.time - sprintStart,
		FinalDur: finalTime - sprintStart,
		Gap:      gap,
		Decision: decision,
		Meta:     trace.Meta,
		PlotData: PlotData{
			Times:       tRel,
			Rolling:     rolling,
			RawMag:      rawMag,
			SprintLevel: sprintLevel,
			Threshold:   fwd.threshold,
			FwdTime:     fwd.time - sprintStart,
			BwdTime:     bwd.time - sprintStart,
			FinalTime:   finalTime - sprintStart,
		},
	}

	result.GyroData = buildGyroData(trace.Gyro, sprintStart)
	result.PiecewiseFit = FitPiecewise(tRel, rolling, rate, trace.Distance)

	if velocity := ComputeVelocity(accel, sprintStart, finalTime, trace.Distance); velocity != nil {
		velocity.ComputedSplits = CalculateSplits(velocity.Times, velocity.Distance, trace.Distance)
		result.VelocityData = subsampleVelocity(velocity, maxProfilePoints)
	}

	result.Phases = buildPhaseSummary(result.PiecewiseFit, &result.PlotData)

	return result, nil
}

// AnalyzeAll analyzes every trace in order, skipping sprints that fail hard
// validation so one bad recording never sinks the batch.
func AnalyzeAll(traces []*SprintTrace) []*SprintResult {
	results := make([]*SprintResult, 0, len(traces))
	for _, trace := range traces {
		result, err := AnalyzeSprint(trace)
		if err != nil {
			continue
		}
		results = append(results, result)
	}
	return results
}

// subsampleVelocity thins the profile to roughly maxPoints for transfer;
// derived scalars and splits are kept as computed from the full curve.
func subsampleVelocity(v *VelocityData, maxPoints int) *VelocityData {
	stride := len(v.Times) / maxPoints
	if stride < 1 {
		stride = 1
	}
	if stride == 1 {
		return v
	}

	out := &VelocityData{
		MaxVelocity:    v.MaxVelocity,
		TimeToMaxV:     v.TimeToMaxV,
		ScaleFactor:    v.ScaleFactor,
		ComputedSplits: v.ComputedSplits,
	}
	for i := 0; i < len(v.Times); i += stride {
		out.Times = append(out.Times, v.Times[i])
		out.Velocity = append(out.Velocity, v.Velocity[i])
		out.Distance = append(out.Distance, v.Distance[i])
	}
	return out
}
