package sprintanalysis

// KalmanConfig tunes the velocity filter's trust balance between integrated
// inertial acceleration and the external speed reference.
type KalmanConfig struct {
	ProcessNoise     float64
	MeasurementNoise float64
}

// DefaultKalmanConfig is the balanced preset.
func DefaultKalmanConfig() KalmanConfig {
	return KalmanConfig{ProcessNoise: 0.15, MeasurementNoise: 0.4}
}

// ReferenceTrustingKalmanConfig leans harder on the speed reference, for
// traces where the reference (e.g. GPS Doppler speed) is known to be clean.
func ReferenceTrustingKalmanConfig() KalmanConfig {
	return KalmanConfig{ProcessNoise: 0.2, MeasurementNoise: 0.3}
}

// SpeedSample is one external speed-reference measurement with its noise
// variance (for GPS, speed accuracy squared).
type SpeedSample struct {
	Timestamp float64 `json:"timestamp"`
	Speed     float64 `json:"speed_mps"`
	Noise     float64 `json:"noise"`
}

const (
	kalmanMinDT      = 0.001
	kalmanMaxDT      = 0.5
	kalmanNominalDT  = 0.01 // first sample, assuming roughly 100Hz
	kalmanNoiseFloor = 0.01
	rtsVarianceFloor = 1e-12
)

type kalmanState struct {
	velocity       float64
	errorVariance  float64
	lastPrediction float64
	started        bool
}

// predict advances the velocity estimate by integrating forward acceleration
// over the elapsed interval. Stale or gapped intervals (dt outside
// (0.001, 0.5)) skip the integration but still advance the clock, so one bad
// timestamp cannot inject a huge velocity step.
func (k *kalmanState) predict(forwardAccel, timestamp, processNoise float64) {
	dt := kalmanNominalDT
	if k.started {
		dt = timestamp - k.lastPrediction
		if dt <= kalmanMinDT || dt >= kalmanMaxDT {
			k.lastPrediction = timestamp
			return
		}
	}
	k.started = true
	k.lastPrediction = timestamp
	k.velocity += forwardAccel * dt
	k.errorVariance += processNoise
}

// update folds in one reference measurement with the standard scalar gain.
func (k *kalmanState) update(measured, noise float64) {
	effective := noise
	if effective < kalmanNoiseFloor {
		effective = kalmanNoiseFloor
	}
	gain := k.errorVariance / (k.errorVariance + effective)
	k.velocity += gain * (measured - k.velocity)
	k.errorVariance *= 1.0 - gain
}

type filterSnapshot struct {
	velocity          float64
	variance          float64
	predictedVelocity float64
	predictedVariance float64
}

// SmoothVelocity runs a forward Kalman pass fusing forward acceleration with
// the speed reference, then a Rauch-Tung-Striebel backward pass that refines
// every estimate with the information that arrived after it. References are
// drained in order up to each acceleration timestamp. Returns one smoothed,
// non-negative velocity per acceleration sample.
func SmoothVelocity(timestamps, forwardAccel []float64, refs []SpeedSample, cfg KalmanConfig) []float64 {
	n := len(timestamps)
	if n == 0 || len(forwardAccel) != n {
		return nil
	}

	state := kalmanState{velocity: 0, errorVariance: 1.0}
	snapshots := make([]filterSnapshot, 0, n)
	refIdx := 0

	for i := 0; i < n; i++ {
		state.predict(forwardAccel[i], timestamps[i], cfg.ProcessNoise)

		predictedV := state.velocity
		predictedP := state.errorVariance

		for refIdx < len(refs) && refs[refIdx].Timestamp <= timestamps[i] {
			state.update(refs[refIdx].Speed, refs[refIdx].Noise)
			refIdx++
		}

		snapshots = append(snapshots, filterSnapshot{
			velocity:          state.velocity,
			variance:          state.errorVariance,
			predictedVelocity: predictedV,
			predictedVariance: predictedP,
		})
	}

	smoothed := make([]float64, n)
	smoothed[n-1] = snapshots[n-1].velocity
	for k := n - 2; k >= 0; k-- {
		gain := 0.0
		if snapshots[k+1].predictedVariance > rtsVarianceFloor {
			gain = snapshots[k].variance / snapshots[k+1].predictedVariance
		}
		v := snapshots[k].velocity + gain*(smoothed[k+1]-snapshots[k+1].predictedVelocity)
		if v < 0 {
			v = 0
		}
		smoothed[k] = v
	}
	return smoothed
}
