// Package sprintzero decodes .sprintzero container files (JSON session
// exports from the phone app with base64-embedded sensor curves) into
// analysis-ready sprint traces.
package sprintzero

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	sprintanalysis "github.com/lucasjlepore/sprint-analyzer"
)

// minCourseDistance filters out warmup strides and aborted reps; the analyzer
// only models timed efforts of 60m and up.
const minCourseDistance = 60

type containerFile struct {
	Sessions []session `json:"sessions"`
}

type session struct {
	Date    string   `json:"date"`
	Sprints []sprint `json:"sprints"`
}

type sprint struct {
	Distance          *int     `json:"distance"`
	AccelerationCurve string   `json:"accelerationCurve"`
	GyroscopeCurve    string   `json:"gyroscopeCurve"`
	ReactionTime      *float64 `json:"reactionTime"`
	IsFalseStart      *bool    `json:"isFalseStart"`
	PeakPropulsiveG   *float64 `json:"peakPropulsiveG"`
	AvgPropulsiveG    *float64 `json:"avgPropulsiveG"`
	MaxGForce         *float64 `json:"maxGForce"`
	AvgCadence        *float64 `json:"avgCadence"`
	StepCount         *int     `json:"stepCount"`
	AvgStrideLength   *float64 `json:"avgStrideLength"`
	MaxVelocity       *float64 `json:"maxVelocity"`
	TimeToMaxVelocity *float64 `json:"timeToMaxVelocity"`
	ArmDriveFocus     *float64 `json:"armDriveFocus"`
	PeakArmVelocity   *float64 `json:"peakArmVelocity"`
	GPSStatus         *string  `json:"gpsVerificationStatus"`
	SplitTimesData    string   `json:"splitTimesData"`
}

type rawSplit struct {
	DistanceMark    float64 `json:"distanceMark"`
	Time            float64 `json:"time"`
	SegmentVelocity float64 `json:"segmentVelocity"`
}

// ParseFile reads and decodes a .sprintzero container from disk.
func ParseFile(path string) ([]*sprintanalysis.SprintTrace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sprintzero file: %w", err)
	}
	return Parse(data)
}

// Parse decodes the container JSON into sprint traces, in recording order.
// Sprints shorter than 60m or missing either sensor curve are skipped; curve
// samples are sorted by timestamp so downstream analysis can rely on
// monotonic time.
func Parse(data []byte) ([]*sprintanalysis.SprintTrace, error) {
	var file containerFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid sprintzero JSON: %w", err)
	}

	var traces []*sprintanalysis.SprintTrace
	index := 0
	for _, sess := range file.Sessions {
		date := sess.Date
		if len(date) >= 10 {
			date = date[:10]
		}

		for _, sp := range sess.Sprints {
			distance := 0
			if sp.Distance != nil {
				distance = *sp.Distance
			}
			if distance < minCourseDistance {
				continue
			}
			if sp.AccelerationCurve == "" || sp.GyroscopeCurve == "" {
				continue
			}

			accel, err := decodeCurve(sp.AccelerationCurve)
			if err != nil {
				return nil, fmt.Errorf("acceleration curve: %w", err)
			}
			gyro, err := decodeCurve(sp.GyroscopeCurve)
			if err != nil {
				return nil, fmt.Errorf("gyroscope curve: %w", err)
			}
			if len(accel) < 100 {
				continue
			}

			index++
			traces = append(traces, &sprintanalysis.SprintTrace{
				Index:    index,
				Date:     date,
				Distance: distance,
				Accel:    accel,
				Gyro:     gyro,
				Meta:     buildMeta(sp),
			})
		}
	}
	return traces, nil
}

// decodeCurve unpacks one base64-wrapped JSON sample array and normalizes it
// to ascending timestamp order.
func decodeCurve(encoded string) ([]sprintanalysis.Sample, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	var samples []sprintanalysis.Sample
	if err := json.Unmarshal(raw, &samples); err != nil {
		return nil, fmt.Errorf("curve JSON: %w", err)
	}
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Timestamp < samples[j].Timestamp
	})
	return samples, nil
}

func buildMeta(sp sprint) sprintanalysis.SprintMeta {
	meta := sprintanalysis.SprintMeta{
		ReactionTime:    sp.ReactionTime,
		PeakPropulsiveG: sp.PeakPropulsiveG,
		AvgPropulsiveG:  sp.AvgPropulsiveG,
		MaxGForce:       sp.MaxGForce,
		AvgCadence:      sp.AvgCadence,
		StepCount:       sp.StepCount,
		AvgStrideLength: sp.AvgStrideLength,
		MaxVelocity:     sp.MaxVelocity,
		TimeToMaxV:      sp.TimeToMaxVelocity,
		ArmDriveFocus:   sp.ArmDriveFocus,
		PeakArmVelocity: sp.PeakArmVelocity,
		GPSStatus:       "notApplicable",
	}
	if sp.IsFalseStart != nil {
		meta.IsFalseStart = *sp.IsFalseStart
	}
	if sp.GPSStatus != nil {
		meta.GPSStatus = *sp.GPSStatus
	}
	if sp.SplitTimesData != "" {
		meta.Splits = decodeSplits(sp.SplitTimesData)
	}
	return meta
}

// decodeSplits tolerates malformed pre-computed split data; the phone-side
// splits are advisory and never block the analysis.
func decodeSplits(encoded string) []sprintanalysis.SplitTime {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil
	}
	var rawSplits []rawSplit
	if err := json.Unmarshal(raw, &rawSplits); err != nil {
		return nil
	}
	splits := make([]sprintanalysis.SplitTime, 0, len(rawSplits))
	for _, s := range rawSplits {
		splits = append(splits, sprintanalysis.SplitTime{
			DistanceMark:    s.DistanceMark,
			Time:            s.Time,
			SegmentVelocity: s.SegmentVelocity,
		})
	}
	return splits
}
