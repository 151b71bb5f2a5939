package sprintanalysis

import "math"

const (
	coarseStep       = 0.5
	fineStep         = 0.1
	minAccelPhase    = 0.5
	maxAccelPhase    = 8.0
	minFlyPhase      = 3.0
	minDecelPhase    = 1.0
	minDecelDrop     = 0.08
	decelWindowSecs  = 1.0
	downsampleTarget = 10.0 // Hz
	pivotFloor       = 1e-12
)

// FitPiecewise fits a continuous 3-segment piecewise-linear model to the
// rolling-mean signal: speed up until BP1, hold through the fly phase, slow
// down after BP2. Times are relative to sprint start. Returns nil when no
// candidate satisfies the phase constraints.
//
// The fit is an ordinary least-squares solve over 4 parameters (intercept and
// three slopes) with continuity baked into the design matrix, searched over a
// coarse then fine breakpoint grid. Candidates whose post-BP2 signal actually
// drops below the fly level are preferred over ones that merely minimize the
// residual.
func FitPiecewise(tRel []float64, rolling []*float64, sampleRate float64, distance int) *PiecewiseFit {
	stride := int(math.Round(sampleRate / downsampleTarget))
	if stride < 1 {
		stride = 1
	}
	var tSub, rSub []float64
	for i := 0; i < len(tRel); i += stride {
		if rolling[i] != nil {
			tSub = append(tSub, tRel[i])
			rSub = append(rSub, *rolling[i])
		}
	}
	if len(tSub) < 20 {
		return nil
	}

	duration := tSub[len(tSub)-1]
	minSprint := minSprintTime(distance)
	if duration <= minSprint+minDecelPhase {
		return nil
	}

	bNormSq := 0.0
	for _, r := range rSub {
		bNormSq += r * r
	}

	bp1Max := math.Min(maxAccelPhase, duration-minFlyPhase-minDecelPhase)
	bp2Max := duration - minDecelPhase
	if minAccelPhase >= bp1Max || minSprint >= bp2Max {
		return nil
	}

	bestBP1, bestBP2, ok := gridSearch(tSub, rSub, bNormSq, minAccelPhase, bp1Max, minSprint, bp2Max, coarseStep)
	if !ok {
		return nil
	}

	fineBP1, fineBP2, ok := gridSearch(tSub, rSub, bNormSq,
		math.Max(minAccelPhase, bestBP1-1.0), math.Min(bp1Max, bestBP1+1.0),
		math.Max(minSprint, bestBP2-1.0), math.Min(bp2Max, bestBP2+1.0),
		fineStep)
	if !ok {
		fineBP1, fineBP2 = bestBP1, bestBP2
	}

	params, ok := solveFit(tSub, rSub, fineBP1, fineBP2)
	if !ok {
		return nil
	}
	y0, s1, s2, s3 := params[0], params[1], params[2], params[3]

	flyStart := y0 + s1*fineBP1
	flyEnd := flyStart + s2*(fineBP2-fineBP1)
	sprintLevel := (flyStart + flyEnd) / 2.0

	confidence := "medium"
	if s3 <= -0.1 {
		confidence = "high"
	}

	return &PiecewiseFit{
		BP1:         fineBP1,
		BP2:         fineBP2,
		Y0:          y0,
		S1:          s1,
		S2:          s2,
		S3:          s3,
		SprintLevel: sprintLevel,
		Confidence:  confidence,
	}
}

// gridSearch walks the (bp1, bp2) grid and keeps the lowest-residual candidate
// with a non-negative acceleration slope and non-positive deceleration slope.
// Candidates additionally passing the deceleration-drop check are tracked in a
// separate bucket and win when any exist.
func gridSearch(tSub, rSub []float64, bNormSq, bp1Min, bp1Max, bp2MinBase, bp2Max, step float64) (float64, float64, bool) {
	bestResidual := math.Inf(1)
	bestBP1, bestBP2 := bp1Min, bp2MinBase

	bestDropResidual := math.Inf(1)
	bestDropBP1, bestDropBP2 := bp1Min, bp2MinBase

	for bp1 := bp1Min; bp1 <= bp1Max; bp1 += step {
		bp2Min := math.Max(bp2MinBase, bp1+minFlyPhase)
		for bp2 := bp2Min; bp2 <= bp2Max; bp2 += step {
			residual, s1, s3, ok := evaluateFit(tSub, rSub, bp1, bp2, bNormSq)
			if !ok || s1 < 0 || s3 > 0 {
				continue
			}
			if residual < bestResidual {
				bestResidual = residual
				bestBP1, bestBP2 = bp1, bp2
			}
			if residual < bestDropResidual && meetsDecelDrop(tSub, rSub, bp1, bp2) {
				bestDropResidual = residual
				bestDropBP1, bestDropBP2 = bp1, bp2
			}
		}
	}

	if math.IsInf(bestResidual, 1) {
		return 0, 0, false
	}
	if !math.IsInf(bestDropResidual, 1) {
		return bestDropBP1, bestDropBP2, true
	}
	return bestBP1, bestBP2, true
}

// meetsDecelDrop checks that the second after bp2 really is quieter: its mean
// signal must sit at least 8% below the fly-phase mean.
func meetsDecelDrop(tSub, rSub []float64, bp1, bp2 float64) bool {
	endTime := tSub[len(tSub)-1]

	flyMean, okFly := meanInRange(tSub, rSub, bp1, bp2)
	decelMean, okDecel := meanInRange(tSub, rSub, bp2, math.Min(endTime, bp2+decelWindowSecs))
	if !okFly || !okDecel {
		return false
	}
	return decelMean <= flyMean*(1.0-minDecelDrop)
}

func meanInRange(tSub, rSub []float64, from, to float64) (float64, bool) {
	if from >= to {
		return 0, false
	}
	sum := 0.0
	count := 0
	for i, t := range tSub {
		if t >= from && t <= to {
			sum += rSub[i]
			count++
		}
	}
	if count < 3 {
		return 0, false
	}
	return sum / float64(count), true
}

// evaluateFit solves the normal equations at (bp1, bp2) and returns the
// least-squares residual via residual = ||b||^2 - x . (A^T b).
func evaluateFit(tSub, rSub []float64, bp1, bp2, bNormSq float64) (residual, s1, s3 float64, ok bool) {
	x, solved := solveFit(tSub, rSub, bp1, bp2)
	if !solved {
		return 0, 0, 0, false
	}

	var atb [4]float64
	for i, t := range tSub {
		row := designRow(t, bp1, bp2)
		for j := 0; j < 4; j++ {
			atb[j] += row[j] * rSub[i]
		}
	}
	dot := 0.0
	for j := 0; j < 4; j++ {
		dot += x[j] * atb[j]
	}
	return bNormSq - dot, x[1], x[3], true
}

// designRow maps a relative time onto the continuous piecewise design:
//
//	t <= bp1:        [1, t,   0,       0      ]
//	bp1 < t <= bp2:  [1, bp1, t-bp1,   0      ]
//	t > bp2:         [1, bp1, bp2-bp1, t-bp2  ]
func designRow(t, bp1, bp2 float64) [4]float64 {
	switch {
	case t <= bp1:
		return [4]float64{1, t, 0, 0}
	case t <= bp2:
		return [4]float64{1, bp1, t - bp1, 0}
	default:
		return [4]float64{1, bp1, bp2 - bp1, t - bp2}
	}
}

// solveFit builds and solves the 4x4 normal equations (A^T A) x = A^T b for
// the piecewise parameters at fixed breakpoints.
func solveFit(tSub, rSub []float64, bp1, bp2 float64) ([4]float64, bool) {
	var ata [4][4]float64
	var atb [4]float64

	for i, t := range tSub {
		row := designRow(t, bp1, bp2)
		for j := 0; j < 4; j++ {
			atb[j] += row[j] * rSub[i]
			for k := j; k < 4; k++ {
				ata[j][k] += row[j] * row[k]
			}
		}
	}
	for j := 0; j < 4; j++ {
		for k := 0; k < j; k++ {
			ata[j][k] = ata[k][j]
		}
	}
	return solve4x4(ata, atb)
}

// solve4x4 runs Gaussian elimination with partial pivoting; a pivot below the
// floor means the system is effectively singular and the fit is abandoned.
func solve4x4(a [4][4]float64, b [4]float64) ([4]float64, bool) {
	for col := 0; col < 4; col++ {
		maxVal := math.Abs(a[col][col])
		maxRow := col
		for row := col + 1; row < 4; row++ {
			if v := math.Abs(a[row][col]); v > maxVal {
				maxVal = v
				maxRow = row
			}
		}
		if maxVal < pivotFloor {
			return [4]float64{}, false
		}
		if maxRow != col {
			a[col], a[maxRow] = a[maxRow], a[col]
			b[col], b[maxRow] = b[maxRow], b[col]
		}
		for row := col + 1; row < 4; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < 4; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	var x [4]float64
	for i := 3; i >= 0; i-- {
		sum := b[i]
		for j := i + 1; j < 4; j++ {
			sum -= a[i][j] * x[j]
		}
		if math.Abs(a[i][i]) < pivotFloor {
			return [4]float64{}, false
		}
		x[i] = sum / a[i][i]
	}
	return x, true
}
