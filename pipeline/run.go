package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sprintanalysis "github.com/lucasjlepore/sprint-analyzer"
	"github.com/lucasjlepore/sprint-analyzer/fitref"
	"github.com/lucasjlepore/sprint-analyzer/sprintzero"
)

// Run executes the full sprint_analyze pipeline: decode the container,
// analyze every sprint, and write all result artifacts to opts.OutDir.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.TracePath) == "" {
		return nil, fmt.Errorf("trace path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	traces, err := sprintzero.ParseFile(opts.TracePath)
	if err != nil {
		return nil, fmt.Errorf("parse sprint container: %w", err)
	}
	if len(traces) == 0 {
		return nil, fmt.Errorf("no analyzable sprints in %s", opts.TracePath)
	}

	var refs []sprintanalysis.SpeedSample
	if strings.TrimSpace(opts.RefFITPath) != "" {
		refs, err = fitref.LoadFile(opts.RefFITPath, fitref.Options{})
		if err != nil {
			return nil, fmt.Errorf("load speed reference: %w", err)
		}
	}

	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	set, err := buildArtifacts(traces, refs, opts.TrustReference, format, opts.Workers)
	if err != nil {
		return nil, err
	}

	out := &Result{
		OutputDir:    opts.OutDir,
		ResultsPath:  filepath.Join(opts.OutDir, resultsFileName),
		NotesPath:    filepath.Join(opts.OutDir, notesFileName),
		SprintCount:  set.sprintCount,
		SkippedCount: set.skippedCount,
		Warnings:     set.warnings,
	}
	for _, name := range set.profileNames {
		out.ProfilePaths = append(out.ProfilePaths, filepath.Join(opts.OutDir, name))
	}
	for _, name := range set.smoothedNames {
		out.SmoothedPaths = append(out.SmoothedPaths, filepath.Join(opts.OutDir, name))
	}

	for name, data := range set.files {
		path := filepath.Join(opts.OutDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
	}
	return out, nil
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}
