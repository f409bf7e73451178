package filtering

import (
	"context"

	"github.com/kayaan/driver-gtm/internal/dat"
	"github.com/kayaan/driver-gtm/internal/fleet"
)

// FleetResolver resolves a carrier's registry record. Resolution never fails
// hard; an unreachable registry yields a failed-resolution record.
type FleetResolver interface {
	Resolve(ctx context.Context, dotNumber string) *fleet.Info
}

// SmallCarrier keeps owner-operators and small fleets. A carrier with more
// than MaxTrucks verified power units is dropped; carriers whose fleet size
// cannot be verified get the benefit of the doubt and stay.
type SmallCarrier struct {
	Resolver  FleetResolver
	MaxTrucks int
}

func (f *SmallCarrier) Name() string { return "small_carrier" }

func (f *SmallCarrier) Apply(ctx context.Context, drivers []*dat.Driver) ([]*dat.Driver, error) {
	kept := make([]*dat.Driver, 0, len(drivers))

	for _, driver := range drivers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info := f.Resolver.Resolve(ctx, driver.DOTNumber())
		driver.Fleet = info

		if info.Resolution == fleet.ResolutionKnown && info.TruckUnits.Known && info.TruckUnits.Value > f.MaxTrucks {
			continue
		}

		kept = append(kept, driver)
	}

	return kept, nil
}
