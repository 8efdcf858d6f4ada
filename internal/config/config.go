package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/softsim/internal/mesh"
	"github.com/san-kum/softsim/internal/sim"
	"github.com/san-kum/softsim/internal/xpbd"
)

const (
	DefaultDt         = 1.0 / 60.0
	DefaultSubsteps   = 10
	DefaultFrames     = 300
	DefaultResolution = 3
	DefaultHeight     = 1.0
	DefaultCompliance = 0.01
)

type Config struct {
	Mesh             MeshConfig   `yaml:"mesh"`
	Density          float64      `yaml:"density"`
	EdgeCompliance   float64      `yaml:"edge_compliance"`
	VolumeCompliance float64      `yaml:"volume_compliance"`
	Damping          float64      `yaml:"damping"`
	GroundHeight     float64      `yaml:"ground_height"`
	Dt               float64      `yaml:"dt"`
	Substeps         int          `yaml:"substeps"`
	Frames           int          `yaml:"frames"`
	Gravity          [3]float64   `yaml:"gravity"`
	Grabs            []GrabConfig `yaml:"grab,omitempty"`
}

// MeshConfig selects the rest mesh. Node and Element name TetGen or Blender
// files; when Node is empty, Generator builds one instead.
type MeshConfig struct {
	Node      string `yaml:"node,omitempty"`
	Element   string `yaml:"element,omitempty"`
	Layout    string `yaml:"layout,omitempty"`
	Generator string `yaml:"generator,omitempty"`
	// Resolution is the number of box cells per axis.
	Resolution int `yaml:"resolution,omitempty"`
	// Size is the box edge or the tetrahedron edge length.
	Size float64 `yaml:"size,omitempty"`
	// Height lifts the generated mesh: the box's bottom face or the
	// tetrahedron's centroid sits at this y.
	Height float64 `yaml:"height"`
}

type GrabConfig struct {
	Particle int        `yaml:"particle"`
	Target   [3]float64 `yaml:"target"`
	Start    int        `yaml:"start"`
	End      int        `yaml:"end"`
}

func DefaultConfig() *Config {
	return &Config{
		Mesh: MeshConfig{
			Generator:  "box",
			Resolution: DefaultResolution,
			Size:       1.0,
			Height:     DefaultHeight,
		},
		Density:          1.0,
		EdgeCompliance:   DefaultCompliance,
		VolumeCompliance: 0,
		Damping:          xpbd.DefaultDamping,
		GroundHeight:     0,
		Dt:               DefaultDt,
		Substeps:         DefaultSubsteps,
		Frames:           DefaultFrames,
		Gravity:          [3]float64{0, -10, 0},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy so presets are never mutated by callers.
func (c *Config) Clone() *Config {
	out := *c
	out.Grabs = append([]GrabConfig(nil), c.Grabs...)
	return &out
}

// BuildMesh imports the configured files or runs the configured generator.
func (c *Config) BuildMesh(logger *slog.Logger) (mesh.Mesh, error) {
	if c.Mesh.Node != "" {
		layout, err := mesh.ParseLayout(c.Mesh.Layout)
		if err != nil {
			return mesh.Mesh{}, err
		}
		return mesh.NewImporter(layout, logger).Import(c.Mesh.Node, c.Mesh.Element), nil
	}

	size := c.Mesh.Size
	if size <= 0 {
		size = 1
	}

	switch strings.ToLower(c.Mesh.Generator) {
	case "tet", "tetrahedron":
		return mesh.RegularTetrahedron(size, mgl64.Vec3{0, c.Mesh.Height, 0}), nil
	case "", "box":
		res := c.Mesh.Resolution
		if res == 0 {
			res = DefaultResolution
		}
		origin := mgl64.Vec3{-size / 2, c.Mesh.Height, -size / 2}
		return mesh.Box(res, mgl64.Vec3{size, size, size}, origin)
	default:
		return mesh.Mesh{}, fmt.Errorf("unknown mesh generator: %s", c.Mesh.Generator)
	}
}

func (c *Config) Options(logger *slog.Logger) xpbd.Options {
	return xpbd.Options{
		Density:          c.Density,
		EdgeCompliance:   c.EdgeCompliance,
		VolumeCompliance: c.VolumeCompliance,
		Damping:          c.Damping,
		GroundHeight:     c.GroundHeight,
		Logger:           logger,
	}
}

// Body builds the soft body described by the config.
func (c *Config) Body(logger *slog.Logger) (*xpbd.SoftBody, error) {
	m, err := c.BuildMesh(logger)
	if err != nil {
		return nil, err
	}
	return xpbd.New(m, c.Options(logger))
}

func (c *Config) SimConfig() sim.Config {
	cfg := sim.Config{
		Dt:            c.Dt,
		Substeps:      c.Substeps,
		Frames:        c.Frames,
		Gravity:       mgl64.Vec3(c.Gravity),
		ValidateState: true,
	}
	for _, g := range c.Grabs {
		cfg.Grabs = append(cfg.Grabs, sim.GrabEvent{
			Particle: g.Particle,
			Target:   mgl64.Vec3(g.Target),
			Start:    g.Start,
			End:      g.End,
		})
	}
	return cfg
}

// MeshName describes the mesh source for run metadata.
func (c *Config) MeshName() string {
	if c.Mesh.Node != "" {
		return c.Mesh.Node
	}
	if c.Mesh.Generator == "" {
		return "box"
	}
	return c.Mesh.Generator
}
