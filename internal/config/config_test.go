package config

import (
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/mesh"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Substeps <= 0 {
		t.Error("substeps should be positive")
	}
	if cfg.Frames <= 0 {
		t.Error("frames should be positive")
	}
	if cfg.Mesh.Generator != "box" {
		t.Errorf("expected box generator, got %s", cfg.Mesh.Generator)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := `
mesh:
  generator: tet
  size: 2
  height: 4
edge_compliance: 0.5
ground_height: -.inf
substeps: 4
grab:
  - particle: 3
    target: [0, 6, 0]
    start: 10
    end: 20
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Mesh.Generator != "tet" || cfg.Mesh.Size != 2 {
		t.Errorf("mesh not loaded: %+v", cfg.Mesh)
	}
	if cfg.EdgeCompliance != 0.5 {
		t.Errorf("expected edge compliance 0.5, got %f", cfg.EdgeCompliance)
	}
	if !math.IsInf(cfg.GroundHeight, -1) {
		t.Errorf("expected disabled ground, got %f", cfg.GroundHeight)
	}
	if cfg.Substeps != 4 {
		t.Errorf("expected 4 substeps, got %d", cfg.Substeps)
	}
	if cfg.Dt != DefaultDt {
		t.Errorf("unset dt should keep default, got %f", cfg.Dt)
	}
	if len(cfg.Grabs) != 1 || cfg.Grabs[0].Target[1] != 6 {
		t.Errorf("grab script not loaded: %+v", cfg.Grabs)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("drag")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Mesh != cfg.Mesh || len(loaded.Grabs) != 1 || loaded.Grabs[0] != cfg.Grabs[0] {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, cfg)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("jelly")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.EdgeCompliance != 0.05 {
		t.Errorf("expected edge compliance 0.05, got %f", cfg.EdgeCompliance)
	}

	cfg.EdgeCompliance = 9
	if Presets["jelly"].EdgeCompliance == 9 {
		t.Error("GetPreset should return a copy")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(names))
	}
	if !slices.IsSorted(names) {
		t.Errorf("presets not sorted: %v", names)
	}
}

func TestPresetsBuild(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := GetPreset(name)
			body, err := cfg.Body(quiet)
			if err != nil {
				t.Fatalf("build failed: %v", err)
			}
			for _, g := range cfg.Grabs {
				if g.Particle >= body.NumParticles() {
					t.Errorf("grab particle %d out of range (%d particles)", g.Particle, body.NumParticles())
				}
			}
			if sc := cfg.SimConfig(); sc.Frames != cfg.Frames || len(sc.Grabs) != len(cfg.Grabs) {
				t.Errorf("sim config mismatch: %+v", sc)
			}
		})
	}
}

func TestBuildMesh(t *testing.T) {
	tests := []struct {
		name      string
		mesh      MeshConfig
		nodes     int
		elements  int
		expectErr bool
	}{
		{"tet", MeshConfig{Generator: "tet", Size: 1}, 4, 1, false},
		{"box", MeshConfig{Generator: "box", Resolution: 2, Size: 1}, 27, 48, false},
		{"default box", MeshConfig{}, 64, 162, false},
		{"unknown", MeshConfig{Generator: "sphere"}, 0, 0, true},
		{"bad layout", MeshConfig{Node: "x.node", Layout: "obj"}, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Mesh = tt.mesh
			m, err := cfg.BuildMesh(quiet)
			if tt.expectErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(m.Nodes) != tt.nodes || len(m.Elements) != tt.elements {
				t.Errorf("got %d nodes %d elements, want %d and %d", len(m.Nodes), len(m.Elements), tt.nodes, tt.elements)
			}
		})
	}
}

func TestBuildMesh_Files(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "box")
	src, err := mesh.Box(1, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{})
	if err != nil {
		t.Fatal(err)
	}
	nodePath, elePath, err := mesh.Save(prefix, src)
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Mesh = MeshConfig{Node: nodePath, Element: elePath, Layout: "tetgen"}
	m, err := cfg.BuildMesh(quiet)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Nodes) != 8 || len(m.Elements) != 6 {
		t.Errorf("got %d nodes %d elements", len(m.Nodes), len(m.Elements))
	}
	if cfg.MeshName() != nodePath {
		t.Errorf("mesh name %q", cfg.MeshName())
	}
}
