package filtering

import (
	"context"

	"github.com/kayaan/driver-gtm/internal/dat"
)

// MaxDeadhead drops loads whose origin deadhead exceeds the cap. A load
// without a posted deadhead reads as zero miles and is kept. MaxMiles of
// zero or below disables the filter.
type MaxDeadhead struct {
	MaxMiles float64
}

func (f *MaxDeadhead) Name() string { return "max_deadhead" }

func (f *MaxDeadhead) Apply(ctx context.Context, loads []*dat.Load) ([]*dat.Load, error) {
	if f.MaxMiles <= 0 {
		return loads, nil
	}

	kept := make([]*dat.Load, 0, len(loads))
	for _, load := range loads {
		if load.DeadheadMiles() <= f.MaxMiles {
			kept = append(kept, load)
		}
	}

	return kept, nil
}
