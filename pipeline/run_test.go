package pipeline

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tormoder/fit"

	sprintanalysis "github.com/lucasjlepore/sprint-analyzer"
)

func encodeCurve(t *testing.T, samples []sprintanalysis.Sample) string {
	t.Helper()
	raw, err := json.Marshal(samples)
	if err != nil {
		t.Fatalf("marshal curve: %v", err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// sprintCurve synthesizes a 100Hz effort: quiet, a hard 7s run, quiet again.
func sprintCurve() []sprintanalysis.Sample {
	var samples []sprintanalysis.Sample
	for ts := 0.0; ts < 14.0; ts += 0.01 {
		mag := 1.0
		if ts >= 2.0 && ts < 9.0 {
			mag = 6.0
		}
		samples = append(samples, sprintanalysis.Sample{Timestamp: ts, X: mag})
	}
	return samples
}

func buildContainer(t *testing.T, curves ...[]sprintanalysis.Sample) []byte {
	t.Helper()
	sprints := make([]map[string]any, 0, len(curves))
	for _, curve := range curves {
		encoded := encodeCurve(t, curve)
		sprints = append(sprints, map[string]any{
			"distance":          60,
			"accelerationCurve": encoded,
			"gyroscopeCurve":    encoded,
		})
	}
	data, err := json.Marshal(map[string]any{
		"sessions": []map[string]any{
			{"date": "2024-05-11T09:30:00Z", "sprints": sprints},
		},
	})
	if err != nil {
		t.Fatalf("marshal container: %v", err)
	}
	return data
}

func buildRefFIT(t *testing.T) []byte {
	t.Helper()
	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		t.Fatalf("new fit file: %v", err)
	}
	activity, err := file.Activity()
	if err != nil {
		t.Fatalf("activity accessor: %v", err)
	}
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		record := fit.NewRecordMsg()
		record.Timestamp = start.Add(time.Duration(i) * time.Second)
		record.Speed = 5000 // 5 m/s
		activity.Records = append(activity.Records, record)
	}
	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		t.Fatalf("encode fit: %v", err)
	}
	return buf.Bytes()
}

func TestRunWritesArtifacts(t *testing.T) {
	tmp := t.TempDir()
	tracePath := filepath.Join(tmp, "session.sprintzero")
	if err := os.WriteFile(tracePath, buildContainer(t, sprintCurve()), 0o644); err != nil {
		t.Fatalf("write container: %v", err)
	}

	outDir := filepath.Join(tmp, "out")
	res, err := Run(Options{
		TracePath: tracePath,
		OutDir:    outDir,
		Format:    "csv",
		Overwrite: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.SprintCount != 1 || res.SkippedCount != 0 {
		t.Fatalf("counts = %d analyzed / %d skipped, want 1/0", res.SprintCount, res.SkippedCount)
	}

	data, err := os.ReadFile(res.ResultsPath)
	if err != nil {
		t.Fatalf("read results: %v", err)
	}
	var results []*sprintanalysis.SprintResult
	if err := json.Unmarshal(data, &results); err != nil {
		t.Fatalf("unmarshal results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Decision != sprintanalysis.DecisionAgree {
		t.Fatalf("decision %q, want agree", results[0].Decision)
	}
	if results[0].FinalDur < 6.0 || results[0].FinalDur > 8.0 {
		t.Fatalf("final duration %.2fs, want ~7s", results[0].FinalDur)
	}

	notes, err := os.ReadFile(res.NotesPath)
	if err != nil {
		t.Fatalf("read notes: %v", err)
	}
	if !strings.Contains(string(notes), "Sprint 1: 60m") {
		t.Fatalf("notes missing sprint header:\n%s", notes)
	}
}

func TestRunWithSpeedReference(t *testing.T) {
	tmp := t.TempDir()
	tracePath := filepath.Join(tmp, "session.sprintzero")
	if err := os.WriteFile(tracePath, buildContainer(t, sprintCurve()), 0o644); err != nil {
		t.Fatalf("write container: %v", err)
	}
	refPath := filepath.Join(tmp, "watch.fit")
	if err := os.WriteFile(refPath, buildRefFIT(t), 0o644); err != nil {
		t.Fatalf("write ref fit: %v", err)
	}

	res, err := Run(Options{
		TracePath:  tracePath,
		OutDir:     filepath.Join(tmp, "out"),
		RefFITPath: refPath,
		Format:     "csv",
		Overwrite:  true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(res.SmoothedPaths) != 1 {
		t.Fatalf("got %d smoothed artifacts, want 1", len(res.SmoothedPaths))
	}

	f, err := os.Open(res.SmoothedPaths[0])
	if err != nil {
		t.Fatalf("open smoothed csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read smoothed csv: %v", err)
	}
	if len(rows) < 2 {
		t.Fatal("smoothed csv has no data rows")
	}
	if rows[0][0] != "t_rel_s" || rows[0][1] != "smoothed_mps" {
		t.Fatalf("unexpected smoothed header: %v", rows[0])
	}
}

func TestRunSkipsInvalidSprints(t *testing.T) {
	// Second sprint has a zero-span trace and must be skipped with a warning.
	flat := make([]sprintanalysis.Sample, 120)
	for i := range flat {
		flat[i] = sprintanalysis.Sample{Timestamp: 1.0, X: 1.0}
	}

	tmp := t.TempDir()
	tracePath := filepath.Join(tmp, "session.sprintzero")
	if err := os.WriteFile(tracePath, buildContainer(t, sprintCurve(), flat), 0o644); err != nil {
		t.Fatalf("write container: %v", err)
	}

	res, err := Run(Options{
		TracePath: tracePath,
		OutDir:    filepath.Join(tmp, "out"),
		Format:    "csv",
		Overwrite: true,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.SprintCount != 1 || res.SkippedCount != 1 {
		t.Fatalf("counts = %d analyzed / %d skipped, want 1/1", res.SprintCount, res.SkippedCount)
	}
	if len(res.Warnings) == 0 {
		t.Fatal("expected a warning for the skipped sprint")
	}
}

func TestRunValidation(t *testing.T) {
	if _, err := Run(Options{OutDir: "x"}); err == nil {
		t.Fatal("expected an error for a missing trace path")
	}
	if _, err := Run(Options{TracePath: "x", OutDir: "y", Format: "xml"}); err == nil {
		t.Fatal("expected an error for an unsupported format")
	}

	tmp := t.TempDir()
	tracePath := filepath.Join(tmp, "session.sprintzero")
	if err := os.WriteFile(tracePath, buildContainer(t, sprintCurve()), 0o644); err != nil {
		t.Fatalf("write container: %v", err)
	}
	outDir := filepath.Join(tmp, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "stale.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write stale file: %v", err)
	}
	_, err := Run(Options{TracePath: tracePath, OutDir: outDir, Overwrite: false})
	if err == nil {
		t.Fatal("expected an error for a non-empty output directory without overwrite")
	}
}

func TestRunBytesProducesArtifacts(t *testing.T) {
	res, err := RunBytes(BytesOptions{
		SourceFileName: "session.sprintzero",
		TraceData:      buildContainer(t, sprintCurve()),
		RefFITData:     buildRefFIT(t),
		Format:         "csv",
	})
	if err != nil {
		t.Fatalf("RunBytes() error: %v", err)
	}

	required := []string{
		"sprint_results.json",
		"notes.txt",
		"smoothed_velocity_01.csv",
	}
	for _, name := range required {
		if _, ok := res.Files[name]; !ok {
			t.Fatalf("missing artifact %s (have %v)", name, fileNames(res.Files))
		}
	}
	if res.SprintCount != 1 {
		t.Fatalf("sprint count %d, want 1", res.SprintCount)
	}
}

func fileNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	return names
}
