package sprintanalysis

import (
	"fmt"
	"math"
	"strings"
)

// BuildSprintNotes turns one sprint result into a readable summary for the
// athlete or coach.
func BuildSprintNotes(r *SprintResult) string {
	if r == nil {
		return ""
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Sprint %d: %dm (%s)\n", r.Index, r.Distance, r.Date)
	fmt.Fprintf(
		&b,
		"Detected duration %.2fs | forward %.2fs / backward %.2fs | gap %.2fs (%s)\n",
		r.FinalDur,
		r.FwdDur,
		r.BwdDur,
		r.Gap,
		decisionText(r.Decision),
	)

	if fit := r.PiecewiseFit; fit != nil {
		fmt.Fprintf(
			&b,
			"Phase model: drive to %.1fs, fly to %.1fs, decel after (confidence %s)\n",
			fit.BP1,
			fit.BP2,
			fit.Confidence,
		)
	} else {
		b.WriteString("Phase model: no acceptable 3-phase fit for this trace\n")
	}
	if p := r.Phases; p != nil && p.FlyDropoffPct < -5 {
		fmt.Fprintf(&b, "Pacing: intensity faded %.1f%% across the fly phase\n", math.Abs(p.FlyDropoffPct))
	}

	if v := r.VelocityData; v != nil {
		fmt.Fprintf(
			&b,
			"Top speed %.2f m/s at %.2fs | integration correction x%.2f\n",
			v.MaxVelocity,
			v.TimeToMaxV,
			v.ScaleFactor,
		)
		if len(v.ComputedSplits) > 0 {
			b.WriteString("\nSplits\n")
			for _, s := range v.ComputedSplits {
				fmt.Fprintf(&b, "- %3.0fm  %6.2fs  %5.2f m/s\n", s.DistanceMark, s.Time, s.SegmentVelocity)
			}
		}
	} else {
		b.WriteString("Velocity profile unavailable (integration drift outside correction range)\n")
	}

	if g := r.GyroData; g != nil {
		fmt.Fprintf(&b, "\nDominant rotation axis: %s\n", g.DominantAxis)
	}

	return strings.TrimSpace(b.String())
}

func decisionText(decision string) string {
	switch decision {
	case DecisionAgree:
		return "scans agree"
	case DecisionTrustForward:
		return "trusting forward scan"
	case DecisionTrustBackward:
		return "trusting backward scan"
	default:
		return decision
	}
}
