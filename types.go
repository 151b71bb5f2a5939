package sprintanalysis

// Sample is one timestamped three-axis sensor reading. Accelerometer samples
// are in g, gyroscope samples in rad/s; the analysis only ever consumes the
// vector magnitude or a caller-supplied forward projection.
type Sample struct {
	Timestamp float64 `json:"timestamp"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
}

// SprintTrace is one recorded sprint attempt: ordered sensor curves, the
// nominal course distance, and metadata carried through untouched. A trace is
// immutable once built and owned by a single analysis call.
type SprintTrace struct {
	Index    int        `json:"index"`
	Date     string     `json:"date"`
	Distance int        `json:"distance_m"`
	Accel    []Sample   `json:"-"`
	Gyro     []Sample   `json:"-"`
	Meta     SprintMeta `json:"meta"`
}

// SprintMeta is the pre-computed metadata bag stored alongside each sprint in
// the container. The analysis never reads it; it is passed through so result
// consumers keep access to the phone-side measurements.
type SprintMeta struct {
	ReactionTime    *float64    `json:"reaction_time_s,omitempty"`
	IsFalseStart    bool        `json:"is_false_start"`
	PeakPropulsiveG *float64    `json:"peak_propulsive_g,omitempty"`
	AvgPropulsiveG  *float64    `json:"avg_propulsive_g,omitempty"`
	MaxGForce       *float64    `json:"max_g_force,omitempty"`
	AvgCadence      *float64    `json:"avg_cadence_spm,omitempty"`
	StepCount       *int        `json:"step_count,omitempty"`
	AvgStrideLength *float64    `json:"avg_stride_length_m,omitempty"`
	MaxVelocity     *float64    `json:"max_velocity_mps,omitempty"`
	TimeToMaxV      *float64    `json:"time_to_max_velocity_s,omitempty"`
	ArmDriveFocus   *float64    `json:"arm_drive_focus,omitempty"`
	PeakArmVelocity *float64    `json:"peak_arm_velocity,omitempty"`
	GPSStatus       string      `json:"gps_status,omitempty"`
	Splits          []SplitTime `json:"splits,omitempty"`
}

// SplitTime is the time and segment pace at one fixed distance mark.
type SplitTime struct {
	DistanceMark    float64 `json:"distance_mark_m"`
	Time            float64 `json:"time_s"`
	SegmentVelocity float64 `json:"segment_velocity_mps"`
}

// Decision labels for the bidirectional boundary reconciliation.
const (
	DecisionAgree         = "agree"
	DecisionTrustForward  = "trust_forward"
	DecisionTrustBackward = "trust_backward"
)

// PlotData is the chart-ready view of the detection pass: relative times, the
// rolling mean with gaps preserved as nils, the raw magnitude, and the level,
// threshold and boundary markers used by the scans.
type PlotData struct {
	Times       []float64  `json:"t"`
	Rolling     []*float64 `json:"rolling"`
	RawMag      []float64  `json:"raw_mag"`
	SprintLevel float64    `json:"sprint_level"`
	Threshold   float64    `json:"threshold"`
	FwdTime     float64    `json:"fwd_time"`
	BwdTime     float64    `json:"bwd_time"`
	FinalTime   float64    `json:"final_time"`
}

// GyroData summarizes the gyroscope curve relative to sprint start, with the
// axis showing the largest variance labeled as dominant.
type GyroData struct {
	Times        []float64 `json:"t"`
	X            []float64 `json:"x"`
	Y            []float64 `json:"y"`
	Z            []float64 `json:"z"`
	DominantAxis string    `json:"dominant_axis"`
}

// PiecewiseFit is the fitted 3-phase model of the rolling-mean signal:
// acceleration up to BP1, a fly phase to BP2, deceleration after. Breakpoints
// are seconds relative to sprint start. Confidence is "high" or "medium";
// "low" is documented for consumers but not produced by the current selection
// rule.
type PiecewiseFit struct {
	BP1         float64 `json:"bp1_s"`
	BP2         float64 `json:"bp2_s"`
	Y0          float64 `json:"y0"`
	S1          float64 `json:"s1"`
	S2          float64 `json:"s2"`
	S3          float64 `json:"s3"`
	SprintLevel float64 `json:"sprint_level"`
	Confidence  string  `json:"confidence"`
}

// VelocityData is the drift-corrected velocity/distance profile with derived
// split marks, typically subsampled for transfer.
type VelocityData struct {
	Times          []float64   `json:"t"`
	Velocity       []float64   `json:"velocity_mps"`
	Distance       []float64   `json:"distance_m"`
	MaxVelocity    float64     `json:"max_velocity_mps"`
	TimeToMaxV     float64     `json:"time_to_max_velocity_s"`
	ScaleFactor    float64     `json:"scale_factor"`
	ComputedSplits []SplitTime `json:"computed_splits,omitempty"`
}

// SprintResult is the assembled per-sprint analysis output. Optional sections
// are nil when the corresponding component had insufficient data; the result
// as a whole is only absent on a hard validation failure.
type SprintResult struct {
	Index        int           `json:"index"`
	Date         string        `json:"date"`
	Distance     int           `json:"distance_m"`
	FwdDur       float64       `json:"fwd_dur_s"`
	BwdDur       float64       `json:"bwd_dur_s"`
	FinalDur     float64       `json:"final_dur_s"`
	Gap          float64       `json:"gap_s"`
	Decision     string        `json:"decision"`
	Meta         SprintMeta    `json:"meta"`
	PlotData     PlotData      `json:"plot_data"`
	GyroData     *GyroData     `json:"gyro_data,omitempty"`
	PiecewiseFit *PiecewiseFit `json:"piecewise_fit,omitempty"`
	VelocityData *VelocityData `json:"velocity_data,omitempty"`
	Phases       *PhaseSummary `json:"phases,omitempty"`
}
