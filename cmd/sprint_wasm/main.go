//go:build js && wasm

package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"syscall/js"
	"time"

	"github.com/lucasjlepore/sprint-analyzer/pipeline"
	"github.com/lucasjlepore/sprint-analyzer/sprintzero"
)

func main() {
	js.Global().Set("parseSprintzero", js.FuncOf(parseSprintzero))
	js.Global().Set("analyzeSprints", js.FuncOf(analyzeSprints))
	select {}
}

// parseSprintzero decodes a container without analyzing it, so the page can
// show what a file holds before committing to a full run.
func parseSprintzero(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{
			"ok":    false,
			"error": "expected argument: fileBytes(Uint8Array)",
		}
	}
	fileBytes := getBytesValue(args[0])
	if len(fileBytes) == 0 {
		return map[string]any{
			"ok":    false,
			"error": "sprint container bytes are required",
		}
	}

	traces, err := sprintzero.Parse(fileBytes)
	if err != nil {
		return map[string]any{
			"ok":    false,
			"error": err.Error(),
		}
	}

	sprints := make([]any, 0, len(traces))
	for _, tr := range traces {
		sprints = append(sprints, map[string]any{
			"index":         tr.Index,
			"date":          tr.Date,
			"distance_m":    tr.Distance,
			"accel_samples": len(tr.Accel),
			"gyro_samples":  len(tr.Gyro),
		})
	}
	return map[string]any{
		"ok":      true,
		"sprints": sprints,
	}
}

func analyzeSprints(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return map[string]any{
			"ok":    false,
			"error": "expected arguments: fileBytes(Uint8Array), options(object)",
		}
	}
	optsArg := args[1]
	fileBytes := getBytesValue(args[0])
	if len(fileBytes) == 0 {
		return map[string]any{
			"ok":    false,
			"error": "sprint container bytes are required",
		}
	}

	opts := pipeline.BytesOptions{
		SourceFileName: getString(optsArg, "source_file_name", "input.sprintzero"),
		TraceData:      fileBytes,
		TrustReference: getBool(optsArg, "trust_reference"),
		Format:         getString(optsArg, "format", "parquet"),
	}
	if refArg := getBytes(optsArg, "ref_fit"); len(refArg) > 0 {
		opts.RefFITData = refArg
	}

	result, err := pipeline.RunBytes(opts)
	if err != nil {
		return map[string]any{
			"ok":    false,
			"error": err.Error(),
		}
	}

	zipBytes, err := zipArtifacts(result.Files)
	if err != nil {
		return map[string]any{
			"ok":    false,
			"error": fmt.Sprintf("create zip: %v", err),
		}
	}
	payload := js.Global().Get("Uint8Array").New(len(zipBytes))
	js.CopyBytesToJS(payload, zipBytes)

	fileNames := make([]string, 0, len(result.Files))
	for name := range result.Files {
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)

	return map[string]any{
		"ok":       true,
		"zip":      payload,
		"sprints":  result.SprintCount,
		"skipped":  result.SkippedCount,
		"warnings": stringsToAny(result.Warnings),
		"files":    stringsToAny(fileNames),
	}
}

func zipArtifacts(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fixedTime := time.Unix(0, 0).UTC()

	for _, name := range names {
		h := &zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		}
		h.SetModTime(fixedTime)
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() {
		return fallback
	}
	s := out.String()
	if s == "" || s == "undefined" || s == "null" {
		return fallback
	}
	return s
}

func getBool(v js.Value, key string) bool {
	if v.IsUndefined() || v.IsNull() {
		return false
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeBoolean {
		return false
	}
	return out.Bool()
}

func getBytes(v js.Value, key string) []byte {
	if v.IsUndefined() || v.IsNull() {
		return nil
	}
	return getBytesValue(v.Get(key))
}

func getBytesValue(v js.Value) []byte {
	if v.IsUndefined() || v.IsNull() {
		return nil
	}
	length := v.Get("length")
	if length.IsUndefined() || length.Int() == 0 {
		return nil
	}
	data := make([]byte, length.Int())
	if n := js.CopyBytesToGo(data, v); n == 0 {
		return nil
	}
	return data
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
