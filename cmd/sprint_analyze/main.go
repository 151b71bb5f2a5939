package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/sprint-analyzer/pipeline"
)

func main() {
	var (
		tracePath = flag.String("trace", "", "Path to input .sprintzero file")
		outDir    = flag.String("out", "", "Output directory")
		refPath   = flag.String("ref", "", "Optional FIT file with GPS speed reference for Kalman smoothing")
		trustRef  = flag.Bool("trust-ref", false, "Use the reference-trusting Kalman preset")
		format    = flag.String("format", "parquet", "Curve artifact format: parquet|csv")
		workers   = flag.Int("workers", 0, "Concurrent sprint analyses (0 = default)")
		overwrite = flag.Bool("overwrite", true, "Allow writing into non-empty output directories")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --trace session.sprintzero --out outdir [--ref watch.fit] [--format parquet|csv]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*tracePath) == "" || strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	result, err := pipeline.Run(pipeline.Options{
		TracePath:      *tracePath,
		OutDir:         *outDir,
		RefFITPath:     *refPath,
		TrustReference: *trustRef,
		Format:         *format,
		Overwrite:      *overwrite,
		Workers:        *workers,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sprint_analyze failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("sprint_analyze complete\n")
	fmt.Printf("Output dir:          %s\n", result.OutputDir)
	fmt.Printf("sprint results:      %s\n", result.ResultsPath)
	fmt.Printf("notes:               %s\n", result.NotesPath)
	for _, p := range result.ProfilePaths {
		fmt.Printf("velocity profile:    %s\n", p)
	}
	for _, p := range result.SmoothedPaths {
		fmt.Printf("smoothed velocity:   %s\n", p)
	}
	fmt.Printf("analyzed %d sprints (%d skipped)\n", result.SprintCount, result.SkippedCount)
	for _, w := range result.Warnings {
		fmt.Printf("warning:             %s\n", w)
	}
}
