package sprintanalysis

import (
	"math"
	"sort"
)

const (
	// agreementThreshold is the forward/backward gap, in seconds, below which
	// the two scans are considered to agree.
	agreementThreshold = 1.5

	// endThresholdFraction of the sprint level marks the end-of-effort line
	// for both scans.
	endThresholdFraction = 0.9

	// startFloorG is the absolute rolling-mean floor, in g, that marks the
	// start of the effort.
	startFloorG = 2.0

	// defaultSprintLevel is used when the middle of the trace has too few
	// defined rolling values to take a median.
	defaultSprintLevel = 5.0
)

// minSprintTime is the shortest plausible effort duration for a nominal
// course distance; the forward scan never triggers before it.
func minSprintTime(distance int) float64 {
	switch {
	case distance <= 60:
		return 3.0
	case distance <= 70:
		return 4.0
	case distance <= 100:
		return 5.0
	case distance <= 200:
		return 15.0
	case distance <= 290:
		return 25.0
	default:
		return 40.0
	}
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2.0
	}
	return sorted[mid]
}

// findSprintLevel estimates the sustained sprint-phase rolling-mean level as
// the median over the middle 20%-70% of the trace.
func findSprintLevel(timestamps []float64, rolling []*float64) float64 {
	t0 := timestamps[0]
	duration := timestamps[len(timestamps)-1] - t0
	midStart := t0 + duration*0.2
	midEnd := t0 + duration*0.7

	var mid []float64
	for i, t := range timestamps {
		if t >= midStart && t <= midEnd && rolling[i] != nil {
			mid = append(mid, *rolling[i])
		}
	}
	if len(mid) < 10 {
		return defaultSprintLevel
	}
	return median(mid)
}

// findSprintStart returns the first timestamp where the rolling mean exceeds
// the start floor, falling back to the trace start.
func findSprintStart(timestamps []float64, rolling []*float64) float64 {
	for i, r := range rolling {
		if r != nil && *r > startFloorG {
			return timestamps[i]
		}
	}
	return timestamps[0]
}

type detectionPoint struct {
	time      float64
	threshold float64
}

// detectForward scans from sprint start plus the minimum effort duration for
// the first rolling-mean drop below 0.9x sprint level that holds for roughly
// half a second. Undefined samples inside the sustain window are skipped
// rather than treated as recovery.
func detectForward(timestamps []float64, rolling []*float64, sprintStart, sprintLevel, minTime, rate float64) detectionPoint {
	threshold := sprintLevel * endThresholdFraction
	searchStart := sprintStart + minTime
	n := len(timestamps)

	sustain := int(math.Round(0.5 * rate))
	if sustain < 5 {
		sustain = 5
	}

	for i := 0; i < n; i++ {
		if timestamps[i] < searchStart {
			continue
		}
		if rolling[i] == nil || *rolling[i] >= threshold {
			continue
		}
		sustained := true
		endCheck := i + sustain
		if endCheck > n {
			endCheck = n
		}
		for j := i; j < endCheck; j++ {
			if rolling[j] != nil && *rolling[j] >= threshold {
				sustained = false
				break
			}
		}
		if sustained {
			return detectionPoint{time: timestamps[i], threshold: threshold}
		}
	}
	return detectionPoint{time: timestamps[n-1], threshold: threshold}
}

// detectBackward walks back from the end of the recording to the last moment
// the rolling mean was still at sprint level.
func detectBackward(timestamps []float64, rolling []*float64, sprintLevel float64) detectionPoint {
	threshold := sprintLevel * endThresholdFraction
	for i := len(timestamps) - 1; i >= 0; i-- {
		if rolling[i] != nil && *rolling[i] >= threshold {
			return detectionPoint{time: timestamps[i], threshold: threshold}
		}
	}
	return detectionPoint{time: timestamps[0], threshold: threshold}
}

// decide reconciles the two scans. Within the agreement threshold the result
// is the midpoint; otherwise the later scan wins.
func decide(fwdTime, bwdTime float64) (finalTime float64, decision string, gap float64) {
	gap = math.Abs(fwdTime - bwdTime)
	if gap <= agreementThreshold {
		return (fwdTime + bwdTime) / 2.0, DecisionAgree, gap
	}
	if fwdTime < bwdTime {
		return bwdTime, DecisionTrustBackward, gap
	}
	return fwdTime, DecisionTrustForward, gap
}
