package filtering

import (
	"context"
	"strings"

	"github.com/kayaan/driver-gtm/internal/dat"
)

const (
	LoadTypeFull    = "FULL"
	LoadTypePartial = "PARTIAL"
	LoadTypeBoth    = "BOTH"
)

// NormalizeLoadType upper-cases and validates a load type, treating the empty
// string as BOTH.
func NormalizeLoadType(s string) (string, bool) {
	switch normalized := strings.ToUpper(strings.TrimSpace(s)); normalized {
	case "":
		return LoadTypeBoth, true
	case LoadTypeFull, LoadTypePartial, LoadTypeBoth:
		return normalized, true
	default:
		return "", false
	}
}

// LoadType keeps loads matching the requested shipment type. BOTH keeps
// everything, including loads that do not declare a type.
type LoadType struct {
	Want string
}

func (f *LoadType) Name() string { return "load_type" }

func (f *LoadType) Apply(ctx context.Context, loads []*dat.Load) ([]*dat.Load, error) {
	if f.Want == "" || f.Want == LoadTypeBoth {
		return loads, nil
	}

	kept := make([]*dat.Load, 0, len(loads))
	for _, load := range loads {
		if load.FullPartial() == f.Want {
			kept = append(kept, load)
		}
	}

	return kept, nil
}
