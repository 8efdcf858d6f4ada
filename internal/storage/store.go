package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/softsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var frameHeader = []string{"time", "cx", "cy", "cz", "edge_error", "volume_error"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata describes one saved run. ID and Timestamp are filled by Save.
type RunMetadata struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Mesh             string             `json:"mesh"`
	Timestamp        time.Time          `json:"timestamp"`
	Particles        int                `json:"particles"`
	Tetrahedra       int                `json:"tetrahedra"`
	Dt               float64            `json:"dt"`
	Substeps         int                `json:"substeps"`
	Frames           int                `json:"frames"`
	EdgeCompliance   float64            `json:"edge_compliance"`
	VolumeCompliance float64            `json:"volume_compliance"`
	Metrics          map[string]float64 `json:"metrics"`
}

func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	if meta.Name == "" {
		meta.Name = "run"
	}
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	meta.Timestamp = now
	meta.Metrics = result.Metrics

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	for i := 1; ; i++ {
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", err
		}
		meta.ID = fmt.Sprintf("%s_%d_%d", meta.Name, now.UnixNano(), i)
		runDir = filepath.Join(s.baseDir, meta.ID)
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, framesFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(frameHeader); err != nil {
		return "", err
	}
	for _, f := range result.Frames {
		if err := w.Write(formatFrame(f)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadFrames reads the per-frame series of a run. Rows that do not parse
// are skipped.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []sim.Frame{}, nil
	}

	frames := make([]sim.Frame, 0, len(records)-1)
	for _, record := range records[1:] {
		f, ok := parseFrame(record)
		if !ok {
			continue
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func formatFrame(f sim.Frame) []string {
	vals := []float64{f.Time, f.Centroid.X(), f.Centroid.Y(), f.Centroid.Z(), f.EdgeError, f.VolumeError}
	row := make([]string, len(vals))
	for i, v := range vals {
		row[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return row
}

func parseFrame(record []string) (sim.Frame, bool) {
	if len(record) < len(frameHeader) {
		return sim.Frame{}, false
	}
	var vals [6]float64
	for i := range vals {
		v, err := strconv.ParseFloat(record[i], 64)
		if err != nil {
			return sim.Frame{}, false
		}
		vals[i] = v
	}
	return sim.Frame{
		Time:        vals[0],
		Centroid:    mgl64.Vec3{vals[1], vals[2], vals[3]},
		EdgeError:   vals[4],
		VolumeError: vals[5],
	}, true
}
