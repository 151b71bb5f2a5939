package fitref

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tormoder/fit"
)

// buildSpeedFIT encodes an in-memory activity FIT whose records carry the
// given speeds in m/s, one second apart.
func buildSpeedFIT(t *testing.T, speeds []float64) []byte {
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
	for i, speed := range speeds {
		record := fit.NewRecordMsg()
		record.Timestamp = start.Add(time.Duration(i) * time.Second)
		record.Speed = uint16(math.Round(speed * 1000))
		activity.Records = append(activity.Records, record)
	}

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		t.Fatalf("encode fit: %v", err)
	}
	return buf.Bytes()
}

func TestFromBytesExtractsSpeeds(t *testing.T) {
	data := buildSpeedFIT(t, []float64{3.0, 4.0, 5.0})
	samples, err := FromBytes(data, Options{})
	if err != nil {
		t.Fatalf("FromBytes() error: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}
	for i, want := range []float64{3.0, 4.0, 5.0} {
		if math.Abs(samples[i].Speed-want) > 1e-9 {
			t.Fatalf("sample %d speed %v, want %v", i, samples[i].Speed, want)
		}
		if samples[i].Noise != DefaultSpeedNoise {
			t.Fatalf("sample %d noise %v, want default %v", i, samples[i].Noise, DefaultSpeedNoise)
		}
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].Timestamp <= samples[i-1].Timestamp {
			t.Fatalf("timestamps not ascending at %d", i)
		}
	}
}

func TestFromBytesNoiseOverride(t *testing.T) {
	data := buildSpeedFIT(t, []float64{3.0})
	samples, err := FromBytes(data, Options{Noise: 0.04})
	if err != nil {
		t.Fatalf("FromBytes() error: %v", err)
	}
	if samples[0].Noise != 0.04 {
		t.Fatalf("noise %v, want 0.04", samples[0].Noise)
	}
}

func TestFromBytesNoUsableRecords(t *testing.T) {
	// Records without any speed field must not produce references.
	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	if err != nil {
		t.Fatalf("new fit file: %v", err)
	}
	activity, err := file.Activity()
	if err != nil {
		t.Fatalf("activity accessor: %v", err)
	}
	record := fit.NewRecordMsg()
	record.Timestamp = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	record.HeartRate = 150
	activity.Records = append(activity.Records, record)

	var buf bytes.Buffer
	if err := fit.Encode(&buf, file, binary.LittleEndian); err != nil {
		t.Fatalf("encode fit: %v", err)
	}

	if _, err := FromBytes(buf.Bytes(), Options{}); err == nil {
		t.Fatal("expected an error for a speedless recording")
	}
}

func TestFromBytesRejectsGarbage(t *testing.T) {
	if _, err := FromBytes([]byte("definitely not a fit file"), Options{}); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestLoadFile(t *testing.T) {
	data := buildSpeedFIT(t, []float64{2.5, 2.6})
	path := filepath.Join(t.TempDir(), "watch.fit")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	samples, err := LoadFile(path, Options{})
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.fit"), Options{}); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestRebase(t *testing.T) {
	data := buildSpeedFIT(t, []float64{3.0, 4.0})
	samples, err := FromBytes(data, Options{})
	if err != nil {
		t.Fatalf("FromBytes() error: %v", err)
	}

	rebased := Rebase(samples, 5.0)
	if math.Abs(rebased[0].Timestamp-5.0) > 1e-9 {
		t.Fatalf("first rebased timestamp %v, want 5.0", rebased[0].Timestamp)
	}
	if math.Abs(rebased[1].Timestamp-6.0) > 1e-9 {
		t.Fatalf("second rebased timestamp %v, want 6.0", rebased[1].Timestamp)
	}
	if samples[0].Timestamp == rebased[0].Timestamp {
		t.Fatal("Rebase must not mutate its input")
	}

	if out := Rebase(nil, 0); out != nil {
		t.Fatalf("empty input should rebase to nil, got %v", out)
	}
}
