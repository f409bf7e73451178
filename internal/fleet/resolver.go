package fleet

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kayaan/driver-gtm/internal/metrics"
)

// Lookup is the external registry call. Implemented by usdot.Client.
type Lookup interface {
	LookupFleetSize(ctx context.Context, dotNumber string) (*Info, error)
}

// Resolver memoizes registry lookups by DOT number for the life of the
// process. Lookup failures are never raised to callers: an unresolvable
// fleet size must not remove a carrier from consideration, so every failure
// mode degrades to an unknown/failed Info instead.
type Resolver struct {
	lookup Lookup
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]*Info
}

func NewResolver(lookup Lookup, logger *zap.Logger) *Resolver {
	return &Resolver{
		lookup: lookup,
		logger: logger,
		cache:  make(map[string]*Info),
	}
}

// Resolve returns the fleet record for a DOT number. Only successful lookups
// are cached; a failed lookup may succeed on a later request. Concurrent
// misses for the same key may each call the registry and the last writer
// wins; the value is identical either way.
func (r *Resolver) Resolve(ctx context.Context, dotNumber string) *Info {
	dot := NormalizeDOT(dotNumber)
	if dot == "" {
		return Unknown(dotNumber)
	}

	r.mu.RLock()
	cached, ok := r.cache[dot]
	r.mu.RUnlock()
	if ok {
		metrics.FleetCacheHits.Inc()
		return cached
	}

	metrics.FleetCacheMisses.Inc()

	info, err := r.lookup.LookupFleetSize(ctx, dot)
	if err != nil {
		metrics.FleetLookupFailures.Inc()
		r.logger.Warn("fleet size lookup failed, treating as unverifiable",
			zap.String("dot_number", dot),
			zap.Error(err),
		)
		return Failed(dot, err.Error())
	}

	r.mu.Lock()
	r.cache[dot] = info
	r.mu.Unlock()

	r.logger.Debug("fleet size resolved",
		zap.String("dot_number", dot),
		zap.String("resolution", info.Resolution.String()),
		zap.Bool("truck_units_known", info.TruckUnits.Known),
		zap.Int("truck_units", info.TruckUnits.Value),
	)

	return info
}

// CacheSize reports the number of memoized carriers.
func (r *Resolver) CacheSize() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

// NormalizeDOT trims a raw DOT number and maps the upstream "no number"
// sentinels to the empty string.
func NormalizeDOT(dotNumber string) string {
	dot := strings.TrimSpace(dotNumber)
	if dot == "" || dot == "0" || strings.EqualFold(dot, "N/A") {
		return ""
	}
	return dot
}
