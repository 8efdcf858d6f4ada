package sim

import (
	"context"
	"sync"

	"github.com/san-kum/softsim/internal/xpbd"
)

// Factory builds a fresh body and its metrics for one ensemble member.
type Factory func() (*xpbd.SoftBody, []Metric, error)

// Ensemble runs independent bodies side by side, one goroutine each. Every
// member owns its body, so no state is shared between goroutines.
type Ensemble struct {
	factories []Factory
}

func NewEnsemble(factories ...Factory) *Ensemble {
	return &Ensemble{factories: factories}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(e.factories))
	errs := make([]error, len(e.factories))

	var wg sync.WaitGroup
	for i, build := range e.factories {
		wg.Add(1)
		go func(idx int, build Factory) {
			defer wg.Done()

			body, metrics, err := build()
			if err != nil {
				errs[idx] = err
				return
			}

			sim := New(body)
			for _, m := range metrics {
				sim.AddMetric(m)
			}

			results[idx], errs[idx] = sim.Run(ctx, cfg)
		}(i, build)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
