package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/softsim/internal/xpbd"
)

type Simulator struct {
	body      *xpbd.SoftBody
	metrics   []Metric
	observers []Observer
}

func New(body *xpbd.SoftBody) *Simulator {
	return &Simulator{
		body:      body,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Body() *xpbd.SoftBody { return s.body }

// Run steps the body for cfg.Frames frames. Cancellation is checked between
// frames; a frame in progress always completes.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Frames:  make([]Frame, 0, cfg.Frames+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0
	result.Frames = append(result.Frames, s.record(t))

	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := s.applyGrabs(cfg.Grabs, i); err != nil {
			return result, err
		}

		s.body.Step(cfg.Dt, cfg.Substeps, cfg.Gravity)
		t += cfg.Dt
		result.StepsTaken++

		if cfg.ValidateState && !s.body.Valid() {
			result.Errors = append(result.Errors, FrameError{Frame: i, Time: t, Err: ErrUnstable})
			break
		}

		for _, m := range s.metrics {
			m.Observe(s.body, t)
		}
		for _, obs := range s.observers {
			obs.OnFrame(s.body, i, t)
		}

		result.Frames = append(result.Frames, s.record(t))
	}

	if _, _, ok := s.body.Grabbed(); ok {
		s.body.Unpin()
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// applyGrabs pins and releases particles between frames, never during one.
func (s *Simulator) applyGrabs(events []GrabEvent, frame int) error {
	for _, ev := range events {
		if ev.End > ev.Start && ev.End == frame {
			if p, _, ok := s.body.Grabbed(); ok && p == ev.Particle {
				s.body.Unpin()
			}
		}
	}
	for _, ev := range events {
		if ev.Start == frame {
			if err := s.body.Pin(ev.Particle, ev.Target); err != nil {
				return fmt.Errorf("grab at frame %d: %w", frame, err)
			}
		}
	}
	return nil
}

func (s *Simulator) record(t float64) Frame {
	return Frame{
		Time:        t,
		Centroid:    s.body.Centroid(),
		EdgeError:   s.body.EdgeError(),
		VolumeError: s.body.VolumeError(),
	}
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Substeps <= 0 {
		return fmt.Errorf("substeps must be positive, got %d", cfg.Substeps)
	}
	if cfg.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", cfg.Frames)
	}
	for _, ev := range cfg.Grabs {
		if ev.Start < 0 {
			return fmt.Errorf("grab of particle %d starts at negative frame %d", ev.Particle, ev.Start)
		}
	}
	return nil
}
