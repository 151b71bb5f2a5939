package sprintanalysis

// PhaseSummary is the phased read of the effort implied by the piecewise fit:
// how long each phase lasted and how hard the athlete was working through it,
// measured on the rolling-mean signal itself rather than the fitted lines.
type PhaseSummary struct {
	AccelDur      float64 `json:"accel_dur_s"`
	FlyDur        float64 `json:"fly_dur_s"`
	DecelDur      float64 `json:"decel_dur_s"`
	AccelMeanG    float64 `json:"accel_mean_g"`
	FlyMeanG      float64 `json:"fly_mean_g"`
	DecelMeanG    float64 `json:"decel_mean_g"`
	FlyDropoffPct float64 `json:"fly_dropoff_pct"`
}

// buildPhaseSummary aggregates the rolling-mean signal over the three fitted
// phases. Nil when no fit was produced. FlyDropoffPct compares the back half
// of the fly phase against the front half; a large negative value means the
// athlete faded before the fitted deceleration point.
func buildPhaseSummary(fit *PiecewiseFit, plot *PlotData) *PhaseSummary {
	if fit == nil {
		return nil
	}

	end := 0.0
	if n := len(plot.Times); n > 0 {
		end = plot.Times[n-1]
	}

	summary := &PhaseSummary{
		AccelDur: fit.BP1,
		FlyDur:   fit.BP2 - fit.BP1,
		DecelDur: end - fit.BP2,
	}
	if summary.DecelDur < 0 {
		summary.DecelDur = 0
	}

	summary.AccelMeanG = rollingMeanBetween(plot, 0, fit.BP1)
	summary.FlyMeanG = rollingMeanBetween(plot, fit.BP1, fit.BP2)
	summary.DecelMeanG = rollingMeanBetween(plot, fit.BP2, end)

	mid := fit.BP1 + (fit.BP2-fit.BP1)/2.0
	front := rollingMeanBetween(plot, fit.BP1, mid)
	back := rollingMeanBetween(plot, mid, fit.BP2)
	if front > 0 {
		summary.FlyDropoffPct = (back/front - 1.0) * 100.0
	}
	return summary
}

func rollingMeanBetween(plot *PlotData, from, to float64) float64 {
	sum := 0.0
	count := 0
	for i, t := range plot.Times {
		if t < from || t > to || plot.Rolling[i] == nil {
			continue
		}
		sum += *plot.Rolling[i]
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
