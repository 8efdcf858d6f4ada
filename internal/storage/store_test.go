package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Frames: []sim.Frame{
			{Time: 0, Centroid: mgl64.Vec3{0, 2, 0}},
			{Time: 1.0 / 60, Centroid: mgl64.Vec3{0, 1.99, 0.001}, EdgeError: 0.01, VolumeError: 0.002},
		},
		Metrics: map[string]float64{
			"centroid_drop": 0.01,
		},
	}
}

func testMeta() RunMetadata {
	return RunMetadata{
		Name:           "jelly",
		Mesh:           "box",
		Particles:      64,
		Tetrahedra:     162,
		Dt:             1.0 / 60,
		Substeps:       10,
		Frames:         1,
		EdgeCompliance: 0.05,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(testMeta(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "jelly" || meta.Particles != 64 || meta.Substeps != 10 {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Metrics["centroid_drop"] != 0.01 {
		t.Errorf("expected centroid_drop 0.01, got %f", meta.Metrics["centroid_drop"])
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	want := testResult().Frames
	if len(frames) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(frames))
	}
	for i := range frames {
		if frames[i] != want[i] {
			t.Errorf("frame %d: got %+v, want %+v", i, frames[i], want[i])
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	first, err := st.Save(testMeta(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	second, err := st.Save(testMeta(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("runs out of order: %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runID, err := st.Save(testMeta(), testResult())
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, framesFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestLoadFrames_SkipsBadRows(t *testing.T) {
	tmpDir := t.TempDir()
	runDir := filepath.Join(tmpDir, "manual")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	data := "time,cx,cy,cz,edge_error,volume_error\n0,0,1,0,0,0\nbad,0,1,0,0,0\n0.5,0\n1,0,0.5,0,0.1,0.2\n"
	if err := os.WriteFile(filepath.Join(runDir, framesFile), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	frames, err := New(tmpDir).LoadFrames("manual")
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[1].Centroid.Y() != 0.5 || frames[1].VolumeError != 0.2 {
		t.Errorf("unexpected frame %+v", frames[1])
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := testMeta()
	meta.ID = "jelly_1"

	if err := ExportJSON(&buf, meta, testResult().Frames); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got ExportData
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.ID != "jelly_1" || got.Steps != 2 {
		t.Errorf("unexpected export header: id %s steps %d", got.ID, got.Steps)
	}
	if got.Centroids[1][1] != 1.99 || got.EdgeErrors[1] != 0.01 {
		t.Errorf("unexpected series: %+v %+v", got.Centroids, got.EdgeErrors)
	}
}
