package filtering

import (
	"context"
	"time"

	"github.com/kayaan/driver-gtm/internal/dat"
)

// TimeWindow is a half-open-ended interval in UTC. A zero bound means
// unbounded on that side.
type TimeWindow struct {
	Earliest time.Time
	Latest   time.Time
}

func (w TimeWindow) IsZero() bool {
	return w.Earliest.IsZero() && w.Latest.IsZero()
}

// Overlaps reports whether the two windows share any instant. Unbounded sides
// always overlap.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	if !w.Latest.IsZero() && !other.Earliest.IsZero() && w.Latest.Before(other.Earliest) {
		return false
	}
	if !other.Latest.IsZero() && !w.Earliest.IsZero() && other.Latest.Before(w.Earliest) {
		return false
	}
	return true
}

// ParseWindow converts a wire window to a TimeWindow. Unparseable bounds are
// reported; missing bounds stay zero.
func ParseWindow(w dat.Window) (TimeWindow, error) {
	var parsed TimeWindow

	if w.EarliestWhen != "" {
		earliest, err := dat.ParseWhen(w.EarliestWhen)
		if err != nil {
			return TimeWindow{}, err
		}
		parsed.Earliest = earliest.UTC()
	}
	if w.LatestWhen != "" {
		latest, err := dat.ParseWhen(w.LatestWhen)
		if err != nil {
			return TimeWindow{}, err
		}
		parsed.Latest = latest.UTC()
	}

	return parsed, nil
}

// DriverAvailability keeps drivers whose availability window overlaps the
// requested one. Drivers with missing or unparseable windows stay: capacity
// postings are loose about availability and absence is not a refusal.
type DriverAvailability struct {
	Window TimeWindow
}

func (f *DriverAvailability) Name() string { return "driver_availability" }

func (f *DriverAvailability) Apply(ctx context.Context, drivers []*dat.Driver) ([]*dat.Driver, error) {
	if f.Window.IsZero() {
		return drivers, nil
	}

	kept := make([]*dat.Driver, 0, len(drivers))
	for _, driver := range drivers {
		if driver.Availability.IsZero() {
			kept = append(kept, driver)
			continue
		}

		window, err := ParseWindow(driver.Availability)
		if err != nil {
			kept = append(kept, driver)
			continue
		}

		if window.Overlaps(f.Window) {
			kept = append(kept, driver)
		}
	}

	return kept, nil
}

// LoadPickup keeps loads whose pickup window overlaps the driver's
// availability. Unlike drivers, a load with a missing or unparseable pickup
// window is dropped: a pickup time the driver cannot plan against is not a
// dispatchable load.
type LoadPickup struct {
	Window TimeWindow
}

func (f *LoadPickup) Name() string { return "load_pickup" }

func (f *LoadPickup) Apply(ctx context.Context, loads []*dat.Load) ([]*dat.Load, error) {
	kept := make([]*dat.Load, 0, len(loads))
	for _, load := range loads {
		if load.Availability.IsZero() {
			continue
		}

		window, err := ParseWindow(load.Availability)
		if err != nil {
			continue
		}

		if f.Window.IsZero() || window.Overlaps(f.Window) {
			kept = append(kept, load)
		}
	}

	return kept, nil
}
