// Package filtering applies ordered eligibility rules to search results.
// Every filter reports a Step so the pipeline can account for exactly where
// candidates were dropped.
package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/kayaan/driver-gtm/internal/dat"
)

// Step records one filter's effect on the candidate set.
type Step struct {
	Name    string
	Initial int
	Dropped int
	Left    int
}

// DriverFilter narrows a capacity result set. Implementations must preserve
// the relative order of the drivers they keep.
type DriverFilter interface {
	Name() string
	Apply(ctx context.Context, drivers []*dat.Driver) ([]*dat.Driver, error)
}

// LoadFilter narrows a freight result set, preserving order.
type LoadFilter interface {
	Name() string
	Apply(ctx context.Context, loads []*dat.Load) ([]*dat.Load, error)
}

// RunDriverFilters applies the filters in order and returns the survivors and
// the per-step accounting.
func RunDriverFilters(ctx context.Context, logger *zap.Logger, drivers []*dat.Driver, filters ...DriverFilter) ([]*dat.Driver, []Step, error) {
	steps := make([]Step, 0, len(filters))

	for _, filter := range filters {
		if err := ctx.Err(); err != nil {
			return nil, steps, err
		}

		initial := len(drivers)
		kept, err := filter.Apply(ctx, drivers)
		if err != nil {
			return nil, steps, err
		}

		step := Step{
			Name:    filter.Name(),
			Initial: initial,
			Dropped: initial - len(kept),
			Left:    len(kept),
		}
		steps = append(steps, step)

		logger.Info("driver filter applied",
			zap.String("filter", step.Name),
			zap.Int("initial", step.Initial),
			zap.Int("dropped", step.Dropped),
			zap.Int("left", step.Left),
		)

		drivers = kept
	}

	return drivers, steps, nil
}

// RunLoadFilters is the load-side counterpart of RunDriverFilters.
func RunLoadFilters(ctx context.Context, logger *zap.Logger, loads []*dat.Load, filters ...LoadFilter) ([]*dat.Load, []Step, error) {
	steps := make([]Step, 0, len(filters))

	for _, filter := range filters {
		if err := ctx.Err(); err != nil {
			return nil, steps, err
		}

		initial := len(loads)
		kept, err := filter.Apply(ctx, loads)
		if err != nil {
			return nil, steps, err
		}

		step := Step{
			Name:    filter.Name(),
			Initial: initial,
			Dropped: initial - len(kept),
			Left:    len(kept),
		}
		steps = append(steps, step)

		logger.Info("load filter applied",
			zap.String("filter", step.Name),
			zap.Int("initial", step.Initial),
			zap.Int("dropped", step.Dropped),
			zap.Int("left", step.Left),
		)

		loads = kept
	}

	return loads, steps, nil
}
