package pipeline

// Options configures the sprint_analyze pipeline.
type Options struct {
	TracePath string
	OutDir    string
	// RefFITPath optionally points at a FIT recording whose GPS speed is
	// fused into a Kalman/RTS-smoothed velocity artifact per sprint.
	RefFITPath string
	// TrustReference selects the reference-trusting Kalman preset instead of
	// the balanced default.
	TrustReference bool
	Format         string // parquet|csv
	Overwrite      bool
	// Workers bounds the per-sprint analysis pool; <=0 means 4.
	Workers int
}

// Result returns generated output paths.
type Result struct {
	OutputDir     string   `json:"output_dir"`
	ResultsPath   string   `json:"results_path"`
	NotesPath     string   `json:"notes_path"`
	ProfilePaths  []string `json:"profile_paths,omitempty"`
	SmoothedPaths []string `json:"smoothed_paths,omitempty"`
	SprintCount   int      `json:"sprint_count"`
	SkippedCount  int      `json:"skipped_count"`
	Warnings      []string `json:"warnings,omitempty"`
}

// BytesOptions configures an in-memory pipeline run. Nothing touches the
// filesystem; all artifacts come back as named byte slices.
type BytesOptions struct {
	SourceFileName string
	TraceData      []byte
	// RefFITData optionally carries FIT bytes whose GPS speed is fused into
	// a smoothed velocity artifact per sprint.
	RefFITData     []byte
	TrustReference bool
	Format         string // parquet|csv
	Workers        int
}

// BytesResult holds the artifacts of an in-memory run, keyed by file name.
type BytesResult struct {
	Files        map[string][]byte
	SprintCount  int
	SkippedCount int
	Warnings     []string
}

type profileRow struct {
	TRelS       float64 `parquet:"name=t_rel_s, type=DOUBLE"`
	VelocityMPS float64 `parquet:"name=velocity_mps, type=DOUBLE"`
	DistanceM   float64 `parquet:"name=distance_m, type=DOUBLE"`
}

type smoothedRow struct {
	TRelS       float64 `parquet:"name=t_rel_s, type=DOUBLE"`
	SmoothedMPS float64 `parquet:"name=smoothed_mps, type=DOUBLE"`
}
