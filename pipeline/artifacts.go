package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	sprintanalysis "github.com/lucasjlepore/sprint-analyzer"
	"github.com/lucasjlepore/sprint-analyzer/fitref"
)

const defaultWorkers = 4

const (
	resultsFileName = "sprint_results.json"
	notesFileName   = "notes.txt"
)

// artifactSet is the in-memory form of one pipeline run: every output file as
// bytes, plus the bookkeeping both Run and RunBytes report.
type artifactSet struct {
	files         map[string][]byte
	profileNames  []string
	smoothedNames []string
	sprintCount   int
	skippedCount  int
	warnings      []string
}

// buildArtifacts analyzes every trace and marshals all result artifacts.
// Sprints that fail hard validation are skipped with a warning; the batch
// carries on. It errors only when nothing at all survives.
func buildArtifacts(traces []*sprintanalysis.SprintTrace, refs []sprintanalysis.SpeedSample, trustRef bool, format string, workers int) (*artifactSet, error) {
	results, warnings := analyzeConcurrently(traces, workers)

	set := &artifactSet{
		files:    make(map[string][]byte),
		warnings: warnings,
	}

	var kept []*sprintanalysis.SprintResult
	var keptTraces []*sprintanalysis.SprintTrace
	for i, r := range results {
		if r == nil {
			set.skippedCount++
			continue
		}
		kept = append(kept, r)
		keptTraces = append(keptTraces, traces[i])
	}
	set.sprintCount = len(kept)
	if len(kept) == 0 {
		return nil, fmt.Errorf("all %d sprints failed validation", len(traces))
	}

	resultsJSON, err := marshalResultsJSON(kept)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", resultsFileName, err)
	}
	set.files[resultsFileName] = resultsJSON
	set.files[notesFileName] = marshalNotes(kept)

	for _, r := range kept {
		if r.VelocityData == nil {
			continue
		}
		name := fmt.Sprintf("velocity_profile_%02d.%s", r.Index, format)
		data, err := marshalProfile(format, r.VelocityData)
		if err != nil {
			return nil, fmt.Errorf("marshal velocity profile %d: %w", r.Index, err)
		}
		set.files[name] = data
		set.profileNames = append(set.profileNames, name)
	}

	if len(refs) > 0 {
		cfg := sprintanalysis.DefaultKalmanConfig()
		if trustRef {
			cfg = sprintanalysis.ReferenceTrustingKalmanConfig()
		}
		for i, r := range kept {
			rows := smoothSprint(keptTraces[i], refs, cfg)
			if len(rows) == 0 {
				set.warnings = append(set.warnings, fmt.Sprintf("sprint %d: no smoothed velocity produced", r.Index))
				continue
			}
			name := fmt.Sprintf("smoothed_velocity_%02d.%s", r.Index, format)
			data, err := marshalSmoothed(format, rows)
			if err != nil {
				return nil, fmt.Errorf("marshal smoothed velocity %d: %w", r.Index, err)
			}
			set.files[name] = data
			set.smoothedNames = append(set.smoothedNames, name)
		}
	}

	return set, nil
}

// analyzeConcurrently fans the traces out over a bounded worker pool. The
// returned slice is index-aligned with traces; skipped sprints are nil.
// Each analysis is pure, so the only shared state is the results slice with
// one writer per index.
func analyzeConcurrently(traces []*sprintanalysis.SprintTrace, workers int) ([]*sprintanalysis.SprintResult, []string) {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(traces) {
		workers = len(traces)
	}

	results := make([]*sprintanalysis.SprintResult, len(traces))
	errs := make([]error, len(traces))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = sprintanalysis.AnalyzeSprint(traces[i])
			}
		}()
	}
	for i := range traces {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var warnings []string
	for i, err := range errs {
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("sprint %d skipped: %v", traces[i].Index, err))
		}
	}
	return results, warnings
}

// smoothSprint fuses the trace's drift-filtered acceleration with the speed
// reference. The reference is rebased onto the trace's clock, anchored at its
// first sample.
func smoothSprint(trace *sprintanalysis.SprintTrace, refs []sprintanalysis.SpeedSample, cfg sprintanalysis.KalmanConfig) []smoothedRow {
	if len(trace.Accel) == 0 {
		return nil
	}

	timestamps := make([]float64, len(trace.Accel))
	mags := make([]float64, len(trace.Accel))
	for i, s := range trace.Accel {
		timestamps[i] = s.Timestamp
		mags[i] = math.Sqrt(s.X*s.X+s.Y*s.Y+s.Z*s.Z) * 9.81
	}
	forward := sprintanalysis.HighPassRC(mags, timestamps, 0.1)

	aligned := fitref.Rebase(refs, timestamps[0])
	smoothed := sprintanalysis.SmoothVelocity(timestamps, forward, aligned, cfg)
	if smoothed == nil {
		return nil
	}

	rows := make([]smoothedRow, len(smoothed))
	for i := range smoothed {
		rows[i] = smoothedRow{TRelS: timestamps[i] - timestamps[0], SmoothedMPS: smoothed[i]}
	}
	return rows
}

func normalizeFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = "parquet"
	}
	if f != "parquet" && f != "csv" {
		return "", fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	return f, nil
}

func marshalResultsJSON(results []*sprintanalysis.SprintResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalNotes(results []*sprintanalysis.SprintResult) []byte {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(sprintanalysis.BuildSprintNotes(r))
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

func marshalProfile(format string, v *sprintanalysis.VelocityData) ([]byte, error) {
	rows := make([]profileRow, len(v.Times))
	for i := range v.Times {
		rows[i] = profileRow{TRelS: v.Times[i], VelocityMPS: v.Velocity[i], DistanceM: v.Distance[i]}
	}
	if format == "csv" {
		return marshalProfileCSV(rows)
	}
	return marshalParquet(new(profileRow), len(rows), func(i int) any { return rows[i] })
}

func marshalProfileCSV(rows []profileRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"t_rel_s", "velocity_mps", "distance_m"}); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{formatFloat(row.TRelS), formatFloat(row.VelocityMPS), formatFloat(row.DistanceM)}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalSmoothed(format string, rows []smoothedRow) ([]byte, error) {
	if format == "csv" {
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write([]string{"t_rel_s", "smoothed_mps"}); err != nil {
			return nil, err
		}
		for _, row := range rows {
			if err := w.Write([]string{formatFloat(row.TRelS), formatFloat(row.SmoothedMPS)}); err != nil {
				return nil, err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return marshalParquet(new(smoothedRow), len(rows), func(i int) any { return rows[i] })
}

// marshalParquet writes n rows to an in-memory SNAPPY parquet file. schema is
// a pointer to the row struct; row returns the value for each index.
func marshalParquet(schema any, n int, row func(i int) any) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, schema, 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for i := 0; i < n; i++ {
		if err := pw.Write(row(i)); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
