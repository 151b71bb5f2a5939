package pipeline

import (
	"fmt"

	sprintanalysis "github.com/lucasjlepore/sprint-analyzer"
	"github.com/lucasjlepore/sprint-analyzer/fitref"
	"github.com/lucasjlepore/sprint-analyzer/sprintzero"
)

// RunBytes runs the same pipeline as Run entirely in memory, for callers
// without a filesystem (the wasm build in particular).
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	if len(opts.TraceData) == 0 {
		return nil, fmt.Errorf("trace data is required")
	}
	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}

	traces, err := sprintzero.Parse(opts.TraceData)
	if err != nil {
		return nil, fmt.Errorf("parse sprint container %s: %w", opts.SourceFileName, err)
	}
	if len(traces) == 0 {
		return nil, fmt.Errorf("no analyzable sprints in %s", opts.SourceFileName)
	}

	var refs []sprintanalysis.SpeedSample
	if len(opts.RefFITData) > 0 {
		refs, err = fitref.FromBytes(opts.RefFITData, fitref.Options{})
		if err != nil {
			return nil, fmt.Errorf("load speed reference: %w", err)
		}
	}

	set, err := buildArtifacts(traces, refs, opts.TrustReference, format, opts.Workers)
	if err != nil {
		return nil, err
	}

	return &BytesResult{
		Files:        set.files,
		SprintCount:  set.sprintCount,
		SkippedCount: set.skippedCount,
		Warnings:     set.warnings,
	}, nil
}
