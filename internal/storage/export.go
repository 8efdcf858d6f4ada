package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/softsim/internal/sim"
)

type ExportData struct {
	RunMetadata
	Steps        int          `json:"steps"`
	Times        []float64    `json:"times"`
	Centroids    [][3]float64 `json:"centroids"`
	EdgeErrors   []float64    `json:"edge_errors"`
	VolumeErrors []float64    `json:"volume_errors"`
}

// ExportJSON writes a run and its frames as a single JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, frames []sim.Frame) error {
	data := ExportData{
		RunMetadata:  meta,
		Steps:        len(frames),
		Times:        make([]float64, len(frames)),
		Centroids:    make([][3]float64, len(frames)),
		EdgeErrors:   make([]float64, len(frames)),
		VolumeErrors: make([]float64, len(frames)),
	}

	for i, f := range frames {
		data.Times[i] = f.Time
		data.Centroids[i] = f.Centroid
		data.EdgeErrors[i] = f.EdgeError
		data.VolumeErrors[i] = f.VolumeError
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
