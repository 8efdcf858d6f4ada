package config

import (
	"math"
	"sort"

	"github.com/san-kum/softsim/internal/xpbd"
)

var gravity = [3]float64{0, -10, 0}

var Presets = map[string]*Config{
	"tet": {
		Mesh:             MeshConfig{Generator: "tet", Size: 1, Height: 2},
		Density:          1,
		EdgeCompliance:   0.01,
		VolumeCompliance: 0.01,
		Damping:          xpbd.DefaultDamping,
		Dt:               DefaultDt,
		Substeps:         DefaultSubsteps,
		Frames:           180,
		Gravity:          gravity,
	},
	"freefall": {
		Mesh:             MeshConfig{Generator: "tet", Size: 1, Height: 10},
		Density:          1,
		EdgeCompliance:   0.01,
		VolumeCompliance: 0.01,
		Damping:          xpbd.DefaultDamping,
		GroundHeight:     math.Inf(-1),
		Dt:               DefaultDt,
		Substeps:         DefaultSubsteps,
		Frames:           60,
		Gravity:          gravity,
	},
	"jelly": {
		Mesh:           MeshConfig{Generator: "box", Resolution: 3, Size: 1, Height: 1.5},
		Density:        1,
		EdgeCompliance: 0.05,
		Damping:        xpbd.DefaultDamping,
		Dt:             DefaultDt,
		Substeps:       DefaultSubsteps,
		Frames:         300,
		Gravity:        gravity,
	},
	"stiff": {
		Mesh:     MeshConfig{Generator: "box", Resolution: 3, Size: 1, Height: 1.5},
		Density:  1,
		Damping:  xpbd.DefaultDamping,
		Dt:       DefaultDt,
		Substeps: 20,
		Frames:   300,
		Gravity:  gravity,
	},
	"pudding": {
		Mesh:             MeshConfig{Generator: "box", Resolution: 4, Size: 1.5, Height: 0.5},
		Density:          2,
		EdgeCompliance:   0.2,
		VolumeCompliance: 0.001,
		Damping:          0.999,
		Dt:               DefaultDt,
		Substeps:         DefaultSubsteps,
		Frames:           400,
		Gravity:          gravity,
	},
	"drag": {
		Mesh:           MeshConfig{Generator: "box", Resolution: 3, Size: 1, Height: 0},
		Density:        1,
		EdgeCompliance: 0.02,
		Damping:        xpbd.DefaultDamping,
		Dt:             DefaultDt,
		Substeps:       DefaultSubsteps,
		Frames:         360,
		Gravity:        gravity,
		// particle 63 is the +x +y +z corner of a 3-cell box
		Grabs: []GrabConfig{
			{Particle: 63, Target: [3]float64{1.5, 2.5, 1.5}, Start: 30, End: 240},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
