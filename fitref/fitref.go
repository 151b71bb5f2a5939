// Package fitref extracts speed-reference samples from FIT activity files,
// typically a GPS watch recording taken alongside the phone, for fusion by
// the Kalman/RTS velocity smoother.
package fitref

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/tormoder/fit"

	sprintanalysis "github.com/lucasjlepore/sprint-analyzer"
)

// DefaultSpeedNoise is the measurement variance assumed when the recording
// carries no accuracy estimate (roughly 0.5 m/s standard deviation, typical
// for consumer GPS Doppler speed).
const DefaultSpeedNoise = 0.25

// Options configures reference extraction.
type Options struct {
	// Noise overrides the per-sample measurement variance; zero means
	// DefaultSpeedNoise.
	Noise float64
}

// LoadFile reads a FIT activity file and returns its record speeds as
// reference samples ordered by time, timestamps in Unix seconds.
func LoadFile(path string, opts Options) ([]sprintanalysis.SpeedSample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}
	return FromBytes(data, opts)
}

// FromBytes decodes FIT bytes and extracts speed-reference samples.
func FromBytes(data []byte, opts Options) ([]sprintanalysis.SpeedSample, error) {
	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode fit file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	noise := opts.Noise
	if noise <= 0 {
		noise = DefaultSpeedNoise
	}

	samples := make([]sprintanalysis.SpeedSample, 0, len(activity.Records))
	for _, rec := range activity.Records {
		if rec == nil || rec.Timestamp.IsZero() || fit.IsBaseTime(rec.Timestamp) {
			continue
		}
		speed, ok := extractSpeed(rec)
		if !ok {
			continue
		}
		samples = append(samples, sprintanalysis.SpeedSample{
			Timestamp: float64(rec.Timestamp.UnixNano()) / 1e9,
			Speed:     speed,
			Noise:     noise,
		})
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("fit file contains no usable speed records")
	}
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Timestamp < samples[j].Timestamp
	})
	return samples, nil
}

// Rebase shifts reference timestamps so the earliest one lands on origin,
// aligning a wall-clock FIT recording with a trace that counts seconds from
// phone boot.
func Rebase(samples []sprintanalysis.SpeedSample, origin float64) []sprintanalysis.SpeedSample {
	if len(samples) == 0 {
		return nil
	}
	offset := origin - samples[0].Timestamp
	out := make([]sprintanalysis.SpeedSample, len(samples))
	for i, s := range samples {
		out[i] = s
		out[i].Timestamp = s.Timestamp + offset
	}
	return out
}

func extractSpeed(rec *fit.RecordMsg) (float64, bool) {
	speed := rec.GetEnhancedSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	speed = rec.GetSpeedScaled()
	if isFinite(speed) && speed >= 0 {
		return speed, true
	}
	return 0, false
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
