package sprintanalysis

import "math"

const splitInterval = 10.0 // meters

// CalculateSplits derives one split mark per 10m of the distance curve, up to
// the target distance. Times and distances are parallel slices from a
// VelocityData curve. Marks the curve never brackets are omitted rather than
// reported as errors. If the curve ends within 2% of the target, a final mark
// at the target is extrapolated from the closing velocity.
func CalculateSplits(times, distances []float64, targetDistance int) []SplitTime {
	if len(times) == 0 || len(times) != len(distances) || targetDistance == 0 {
		return nil
	}

	target := float64(targetDistance)
	var splits []SplitTime
	prevTime := 0.0

	for mark := splitInterval; mark <= target; mark += splitInterval {
		t, ok := interpolateTime(mark, times, distances)
		if !ok {
			continue
		}
		segTime := t - prevTime
		segVelocity := 0.0
		if segTime > 0 {
			segVelocity = splitInterval / segTime
		}
		splits = append(splits, SplitTime{DistanceMark: mark, Time: t, SegmentVelocity: segVelocity})
		prevTime = t
	}

	lastDist := distances[len(distances)-1]
	atTarget := len(splits) > 0 && math.Abs(splits[len(splits)-1].DistanceMark-target) <= 0.01
	if lastDist > target*0.98 && lastDist < target && !atTarget {
		if t, ok := extrapolateTime(target, times, distances); ok {
			remaining := target
			if len(splits) > 0 {
				remaining = target - splits[len(splits)-1].DistanceMark
			}
			segTime := t - prevTime
			segVelocity := 0.0
			if segTime > 0 {
				segVelocity = remaining / segTime
			}
			splits = append(splits, SplitTime{DistanceMark: target, Time: t, SegmentVelocity: segVelocity})
		}
	}
	return splits
}

// interpolateTime finds the time at which the distance curve crosses the mark
// by linear interpolation between the bracketing points. A flat bracket
// (equal distances) returns the earlier time.
func interpolateTime(mark float64, times, distances []float64) (float64, bool) {
	for i := 0; i+1 < len(distances); i++ {
		d1, d2 := distances[i], distances[i+1]
		if d1 <= mark && mark <= d2 {
			if math.Abs(d2-d1) < 1e-12 {
				return times[i], true
			}
			ratio := (mark - d1) / (d2 - d1)
			return times[i] + ratio*(times[i+1]-times[i]), true
		}
	}
	return 0, false
}

// extrapolateTime projects past the end of the curve using the velocity
// implied by its final two points.
func extrapolateTime(mark float64, times, distances []float64) (float64, bool) {
	n := len(times)
	if n < 2 {
		return 0, false
	}
	dt := times[n-1] - times[n-2]
	dd := distances[n-1] - distances[n-2]
	if dt <= 0 || dd <= 0 {
		return 0, false
	}
	velocity := dd / dt
	return times[n-1] + (mark-distances[n-1])/velocity, true
}
