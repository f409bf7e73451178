// Package gtm orchestrates the go-to-market pipeline: search the board,
// filter candidates, grade the markets, and rank the results.
package gtm

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/kayaan/driver-gtm/internal/cities"
	"github.com/kayaan/driver-gtm/internal/dat"
	"github.com/kayaan/driver-gtm/internal/filtering"
	"github.com/kayaan/driver-gtm/internal/fleet"
	"github.com/kayaan/driver-gtm/internal/scoring"
)

const (
	// Verified fleets above this many power units are not small carriers.
	defaultMaxTrucks = 10

	// Market grading covers the most frequent destination states only;
	// the long tail is not worth the upstream calls.
	defaultMaxMarketStates = 10

	// Concurrent market-signal fetches.
	defaultMarketWorkers = 5
)

// ValidationError reports unusable request input. It maps to a client error,
// never to an upstream failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Gateway is the load board surface the pipeline drives.
type Gateway interface {
	Authenticate(ctx context.Context) error
	SearchDrivers(ctx context.Context, params *dat.DriverSearchParams) (*dat.Drivers, int, error)
	SearchLoads(ctx context.Context, params *dat.LoadSearchParams) (*dat.Loads, error)
	FetchMarketSignal(ctx context.Context, state string, equipmentTypes []string) (*dat.MarketSignal, error)
}

// Resolver resolves carrier registry records.
type Resolver interface {
	Resolve(ctx context.Context, dotNumber string) *fleet.Info
}

type Service struct {
	logger   *zap.Logger
	gateway  Gateway
	resolver Resolver
	cities   *cities.DB
	params   scoring.Params

	MaxTrucks       int
	MaxMarketStates int
	MarketWorkers   int
}

func NewService(logger *zap.Logger, gateway Gateway, resolver Resolver, db *cities.DB, params scoring.Params) *Service {
	return &Service{
		logger:          logger,
		gateway:         gateway,
		resolver:        resolver,
		cities:          db,
		params:          params,
		MaxTrucks:       defaultMaxTrucks,
		MaxMarketStates: defaultMaxMarketStates,
		MarketWorkers:   defaultMarketWorkers,
	}
}

// VerifyCredentials proves the configured credentials can obtain a token.
func (s *Service) VerifyCredentials(ctx context.Context) error {
	return s.gateway.Authenticate(ctx)
}

// SearchRequest asks for small-carrier capacity around a city.
type SearchRequest struct {
	City           string
	State          string
	EquipmentTypes []string
	LoadType       string
	Limit          int
	Availability   filtering.TimeWindow
	// DestinationStates restricts the search to trucks heading toward
	// these states; empty means any direction.
	DestinationStates []string
	// MaxDeadheadMiles caps how far from the city a truck may sit.
	MaxDeadheadMiles float64
}

// SearchResult is the filtered capacity list plus the filter accounting.
type SearchResult struct {
	Drivers        []*dat.Driver
	TotalAvailable int
	Steps          []filtering.Step
}

// LoadRequest asks for ranked freight around a driver's position.
type LoadRequest struct {
	City           string
	State          string
	EquipmentTypes []string
	LoadType       string
	Limit          int
	Availability   filtering.TimeWindow
	// DestinationStates restricts the freight to these destinations;
	// empty means any.
	DestinationStates []string
	// MaxDeadheadMiles drops loads picking up farther than this from the
	// driver; zero disables the cap.
	MaxDeadheadMiles float64
}

// LoadResult is the ranked freight list plus the filter accounting.
type LoadResult struct {
	Loads []*scoring.RankedLoad
	Steps []filtering.Step
}

func (s *Service) origin(city, state string) (dat.Place, error) {
	coords, ok := s.cities.CityCoordinates(city, state)
	if !ok {
		return dat.Place{}, &ValidationError{
			Field:  "city",
			Reason: fmt.Sprintf("unknown city %q in state %q", city, state),
		}
	}

	return dat.Place{
		City:      city,
		StateProv: state,
		Latitude:  coords.Lat,
		Longitude: coords.Lng,
	}, nil
}

// SearchDrivers finds capacity near the given city and keeps only small
// carriers available in the requested window. Order of the surviving drivers
// follows the board's own relevance order.
func (s *Service) SearchDrivers(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	loadType, ok := filtering.NormalizeLoadType(req.LoadType)
	if !ok {
		return nil, &ValidationError{Field: "load_type", Reason: fmt.Sprintf("unsupported value %q", req.LoadType)}
	}

	origin, err := s.origin(req.City, req.State)
	if err != nil {
		return nil, err
	}

	drivers, total, err := s.gateway.SearchDrivers(ctx, &dat.DriverSearchParams{
		Origin:            origin,
		EquipmentTypes:    req.EquipmentTypes,
		DestinationStates: req.DestinationStates,
		MaxDeadheadMiles:  req.MaxDeadheadMiles,
		LoadType:          loadType,
		Limit:             req.Limit,
	})
	if err != nil {
		return nil, err
	}

	kept, steps, err := filtering.RunDriverFilters(ctx, s.logger, drivers.Items,
		&filtering.SmallCarrier{Resolver: s.resolver, MaxTrucks: s.MaxTrucks},
		&filtering.DriverAvailability{Window: req.Availability},
	)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Drivers:        kept,
		TotalAvailable: total,
		Steps:          steps,
	}, nil
}

// RankLoads finds freight near the driver, filters it to what the driver can
// actually haul, grades the destination markets and returns the loads ranked
// best-first with broker fleet records attached.
func (s *Service) RankLoads(ctx context.Context, req *LoadRequest) (*LoadResult, error) {
	loadType, ok := filtering.NormalizeLoadType(req.LoadType)
	if !ok {
		return nil, &ValidationError{Field: "load_type", Reason: fmt.Sprintf("unsupported value %q", req.LoadType)}
	}

	origin, err := s.origin(req.City, req.State)
	if err != nil {
		return nil, err
	}

	loads, err := s.gateway.SearchLoads(ctx, &dat.LoadSearchParams{
		Origin:            origin,
		EquipmentTypes:    req.EquipmentTypes,
		DestinationStates: req.DestinationStates,
		LoadType:          loadType,
		Limit:             req.Limit,
	})
	if err != nil {
		return nil, err
	}

	kept, steps, err := filtering.RunLoadFilters(ctx, s.logger, loads.Items,
		&filtering.LoadType{Want: loadType},
		&filtering.MaxDeadhead{MaxMiles: req.MaxDeadheadMiles},
		&filtering.LoadPickup{Window: req.Availability},
	)
	if err != nil {
		return nil, err
	}

	signals := s.fetchMarketSignals(ctx, kept, req.EquipmentTypes)
	ranked := scoring.Rank(s.params, kept, signals)
	s.attachBrokerFleets(ctx, ranked)

	return &LoadResult{Loads: ranked, Steps: steps}, nil
}

// topDestinationStates returns the most frequent destination states among the
// loads, most frequent first, capped at MaxMarketStates. Ties break
// alphabetically so repeated runs grade the same markets.
func (s *Service) topDestinationStates(loads []*dat.Load) []string {
	counts := make(map[string]int)
	for _, load := range loads {
		if state := load.DestinationState(); state != "" {
			counts[state]++
		}
	}

	states := make([]string, 0, len(counts))
	for state := range counts {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool {
		if counts[states[i]] != counts[states[j]] {
			return counts[states[i]] > counts[states[j]]
		}
		return states[i] < states[j]
	})

	if len(states) > s.MaxMarketStates {
		states = states[:s.MaxMarketStates]
	}
	return states
}

// fetchMarketSignals grades the top destination states concurrently. A failed
// fetch logs and leaves that state unscored; it never fails the request.
func (s *Service) fetchMarketSignals(ctx context.Context, loads []*dat.Load, equipmentTypes []string) map[string]*dat.MarketSignal {
	states := s.topDestinationStates(loads)

	signals := make(map[string]*dat.MarketSignal, len(states))
	if len(states) == 0 {
		return signals
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.MarketWorkers)
	)

	for _, state := range states {
		wg.Add(1)
		go func(state string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			signal, err := s.gateway.FetchMarketSignal(ctx, state, equipmentTypes)
			if err != nil {
				s.logger.Warn("market signal unavailable",
					zap.String("state", state),
					zap.Error(err),
				)
				return
			}

			mu.Lock()
			signals[state] = signal
			mu.Unlock()
		}(state)
	}

	wg.Wait()
	return signals
}

// attachBrokerFleets decorates ranked loads with the poster's registry
// record. Lookups go through the shared cache, so repeated brokers cost one
// call.
func (s *Service) attachBrokerFleets(ctx context.Context, ranked []*scoring.RankedLoad) {
	for _, item := range ranked {
		item.Load.BrokerFleet = s.resolver.Resolve(ctx, item.Load.BrokerDOT())
	}
}
