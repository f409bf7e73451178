package gtm

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kayaan/driver-gtm/internal/cities"
	"github.com/kayaan/driver-gtm/internal/dat"
	"github.com/kayaan/driver-gtm/internal/filtering"
	"github.com/kayaan/driver-gtm/internal/fleet"
	"github.com/kayaan/driver-gtm/internal/scoring"
)

type stubGateway struct {
	drivers *dat.Drivers
	total   int
	loads   *dat.Loads
	signals map[string]*dat.MarketSignal

	driverParams *dat.DriverSearchParams
	loadParams   *dat.LoadSearchParams

	signalCalls atomic.Int64
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
}

func (g *stubGateway) Authenticate(context.Context) error { return nil }

func (g *stubGateway) SearchDrivers(_ context.Context, params *dat.DriverSearchParams) (*dat.Drivers, int, error) {
	g.driverParams = params
	return g.drivers, g.total, nil
}

func (g *stubGateway) SearchLoads(_ context.Context, params *dat.LoadSearchParams) (*dat.Loads, error) {
	g.loadParams = params
	return g.loads, nil
}

func (g *stubGateway) FetchMarketSignal(_ context.Context, state string, _ []string) (*dat.MarketSignal, error) {
	g.signalCalls.Add(1)

	current := g.inFlight.Add(1)
	for {
		max := g.maxInFlight.Load()
		if current <= max || g.maxInFlight.CompareAndSwap(max, current) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	g.inFlight.Add(-1)

	signal, ok := g.signals[state]
	if !ok {
		return nil, fmt.Errorf("no market data for %s", state)
	}
	return signal, nil
}

type stubResolver struct {
	infos map[string]*fleet.Info
	calls atomic.Int64
}

func (s *stubResolver) Resolve(_ context.Context, dotNumber string) *fleet.Info {
	s.calls.Add(1)
	if dotNumber == "" {
		return fleet.Unknown("")
	}
	if info, ok := s.infos[dotNumber]; ok {
		return info
	}
	return fleet.Failed(dotNumber, "no registry record")
}

func newTestService(t *testing.T, gateway *stubGateway, resolver *stubResolver) *Service {
	t.Helper()

	db, err := cities.Load()
	if err != nil {
		t.Fatalf("loading city database: %v", err)
	}

	return NewService(zap.NewNop(), gateway, resolver, db, scoring.DefaultParams())
}

func smallCarrier(dot string, trucks int) *fleet.Info {
	return &fleet.Info{
		DOTNumber:  dot,
		TruckUnits: fleet.KnownCount(trucks),
		Resolution: fleet.ResolutionKnown,
	}
}

func TestSearchDrivers(t *testing.T) {
	resolver := &stubResolver{infos: map[string]*fleet.Info{}}
	gateway := &stubGateway{drivers: &dat.Drivers{}, total: 42}

	for i := 0; i < 8; i++ {
		dot := fmt.Sprintf("1%03d", i)
		resolver.infos[dot] = smallCarrier(dot, 5)
		gateway.drivers.Items = append(gateway.drivers.Items, &dat.Driver{
			MatchID:      "small-" + dot,
			PosterDotIDs: dat.PosterDotIDs{DotNumber: dot},
		})
	}
	for i := 0; i < 5; i++ {
		dot := fmt.Sprintf("2%03d", i)
		resolver.infos[dot] = smallCarrier(dot, 15)
		gateway.drivers.Items = append(gateway.drivers.Items, &dat.Driver{
			MatchID:      "large-" + dot,
			PosterDotIDs: dat.PosterDotIDs{DotNumber: dot},
		})
	}
	for i := 0; i < 7; i++ {
		gateway.drivers.Items = append(gateway.drivers.Items, &dat.Driver{
			MatchID: fmt.Sprintf("nodot-%d", i),
		})
	}

	service := newTestService(t, gateway, resolver)

	result, err := service.SearchDrivers(context.Background(), &SearchRequest{
		City:              "Houston",
		State:             "TX",
		EquipmentTypes:    []string{"V"},
		LoadType:          "full",
		DestinationStates: []string{"CA"},
		MaxDeadheadMiles:  75,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Drivers) != 15 {
		t.Fatalf("expected 15 drivers (8 small + 7 unverifiable), got %d", len(result.Drivers))
	}
	if result.TotalAvailable != 42 {
		t.Fatalf("total available must pass through, got %d", result.TotalAvailable)
	}
	if len(result.Steps) != 2 {
		t.Fatalf("expected 2 filter steps, got %d", len(result.Steps))
	}
	if result.Steps[0].Dropped != 5 {
		t.Fatalf("expected 5 large carriers dropped, got %+v", result.Steps[0])
	}

	if gateway.driverParams.Origin.Latitude == 0 || gateway.driverParams.Origin.Longitude == 0 {
		t.Fatalf("origin must carry resolved coordinates: %+v", gateway.driverParams.Origin)
	}
	if gateway.driverParams.LoadType != "FULL" {
		t.Fatalf("load type must be normalized, got %q", gateway.driverParams.LoadType)
	}
	if len(gateway.driverParams.DestinationStates) != 1 || gateway.driverParams.DestinationStates[0] != "CA" {
		t.Fatalf("destination states must reach the board query: %v", gateway.driverParams.DestinationStates)
	}
	if gateway.driverParams.MaxDeadheadMiles != 75 {
		t.Fatalf("the deadhead cap must reach the board query: %v", gateway.driverParams.MaxDeadheadMiles)
	}
}

func TestSearchDriversValidation(t *testing.T) {
	service := newTestService(t, &stubGateway{drivers: &dat.Drivers{}}, &stubResolver{})

	t.Run("unknown city", func(t *testing.T) {
		_, err := service.SearchDrivers(context.Background(), &SearchRequest{
			City:  "Atlantis",
			State: "TX",
		})

		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if validationErr.Field != "city" {
			t.Fatalf("expected city field, got %q", validationErr.Field)
		}
	})

	t.Run("bad load type", func(t *testing.T) {
		_, err := service.SearchDrivers(context.Background(), &SearchRequest{
			City:     "Houston",
			State:    "TX",
			LoadType: "LTL",
		})

		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func rankableLoad(id, destState string, perMileRate float64) *dat.Load {
	load := &dat.Load{
		MatchID:    id,
		TripLength: dat.Mileage{Miles: 800},
		Availability: dat.Window{
			EarliestWhen: "2026-09-01T08:00:00Z",
			LatestWhen:   "2026-09-02T08:00:00Z",
		},
		EstimatedRate: perMileRate,
		PosterDotIDs:  dat.PosterDotIDs{DotNumber: "555"},
	}
	load.MatchingAssetInfo.Capacity.Shipment.FullPartial = "FULL"
	load.MatchingAssetInfo.Destination.Place = dat.Location{City: "X", StateProv: destState}
	return load
}

func TestRankLoads(t *testing.T) {
	resolver := &stubResolver{infos: map[string]*fleet.Info{
		"555": smallCarrier("555", 3),
	}}

	noPickup := rankableLoad("no-pickup", "GA", 2.8)
	noPickup.Availability = dat.Window{}

	gateway := &stubGateway{
		loads: &dat.Loads{Items: []*dat.Load{
			rankableLoad("dead-end", "ZZ", 2.8),
			rankableLoad("good-market", "GA", 2.8),
			noPickup,
		}},
		signals: map[string]*dat.MarketSignal{
			"GA": {State: "GA", OutboundLoads: 100, AvailableTrucks: 40, DistinctLanes: 12},
		},
	}

	service := newTestService(t, gateway, resolver)

	result, err := service.RankLoads(context.Background(), &LoadRequest{
		City:           "Houston",
		State:          "TX",
		EquipmentTypes: []string{"V"},
		LoadType:       "FULL",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Loads) != 2 {
		t.Fatalf("the load without a pickup window must be dropped; got %d", len(result.Loads))
	}
	if result.Loads[0].Load.MatchID != "good-market" {
		t.Fatalf("the load with market data must rank first, got %s", result.Loads[0].Load.MatchID)
	}
	if result.Loads[1].Market.SignalAvailable {
		t.Fatalf("unreachable market must be reported unavailable, not fail the request")
	}

	for _, item := range result.Loads {
		if item.Load.BrokerFleet == nil {
			t.Fatalf("every ranked load must carry the broker fleet record: %s", item.Load.MatchID)
		}
		if item.Composite.Recommendation == "" {
			t.Fatalf("every ranked load must carry a recommendation")
		}
	}
}

func TestRankLoadsMaxDeadhead(t *testing.T) {
	near := rankableLoad("near", "GA", 2.8)
	near.OriginDeadheadMiles = dat.Mileage{Miles: 20}
	far := rankableLoad("far", "GA", 2.8)
	far.OriginDeadheadMiles = dat.Mileage{Miles: 120}

	gateway := &stubGateway{
		loads:   &dat.Loads{Items: []*dat.Load{near, far}},
		signals: map[string]*dat.MarketSignal{},
	}

	service := newTestService(t, gateway, &stubResolver{})

	result, err := service.RankLoads(context.Background(), &LoadRequest{
		City:              "Houston",
		State:             "TX",
		EquipmentTypes:    []string{"V"},
		DestinationStates: []string{"GA"},
		MaxDeadheadMiles:  50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Loads) != 1 || result.Loads[0].Load.MatchID != "near" {
		t.Fatalf("loads past the deadhead cap must be dropped, got %d", len(result.Loads))
	}
	if len(gateway.loadParams.DestinationStates) != 1 || gateway.loadParams.DestinationStates[0] != "GA" {
		t.Fatalf("destination states must reach the board query: %v", gateway.loadParams.DestinationStates)
	}

	var step *filtering.Step
	for i := range result.Steps {
		if result.Steps[i].Name == "max_deadhead" {
			step = &result.Steps[i]
		}
	}
	if step == nil {
		t.Fatalf("the deadhead cap must report its accounting: %+v", result.Steps)
	}
	if step.Dropped != 1 {
		t.Fatalf("expected 1 load dropped by the cap, got %+v", step)
	}
}

func TestRankLoadsMarketConcurrencyCap(t *testing.T) {
	gateway := &stubGateway{
		loads:   &dat.Loads{},
		signals: map[string]*dat.MarketSignal{},
	}
	for i := 0; i < 30; i++ {
		state := fmt.Sprintf("S%02d", i)
		gateway.loads.Items = append(gateway.loads.Items, rankableLoad(state, state, 2.5))
		gateway.signals[state] = &dat.MarketSignal{State: state, OutboundLoads: 10, AvailableTrucks: 5}
	}

	service := newTestService(t, gateway, &stubResolver{})

	_, err := service.RankLoads(context.Background(), &LoadRequest{
		City:  "Houston",
		State: "TX",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls := gateway.signalCalls.Load(); calls != int64(service.MaxMarketStates) {
		t.Fatalf("expected %d market fetches, got %d", service.MaxMarketStates, calls)
	}
	if max := gateway.maxInFlight.Load(); max > int64(service.MarketWorkers) {
		t.Fatalf("market fetches exceeded the worker cap: %d in flight", max)
	}
}

func TestProviderEnvironments(t *testing.T) {
	db, err := cities.Load()
	if err != nil {
		t.Fatalf("loading city database: %v", err)
	}

	provider := NewProvider(zap.NewNop(), db, scoring.DefaultParams(), nil, dat.Credentials{
		Username: "org@example.com",
		Password: "secret",
		User:     "user@example.com",
	})

	staging1, err := provider.Service(dat.EnvStaging, dat.Credentials{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	staging2, err := provider.Service(dat.EnvStaging, dat.Credentials{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if staging1 != staging2 {
		t.Fatalf("staging service must be cached")
	}

	_, err = provider.Service(dat.EnvProduction, dat.Credentials{Username: "only"})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("incomplete production credentials must be rejected, got %v", err)
	}

	prod1, err := provider.Service(dat.EnvProduction, dat.Credentials{
		Username: "org@example.com", Password: "secret", User: "user@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prod2, _ := provider.Service(dat.EnvProduction, dat.Credentials{
		Username: "org@example.com", Password: "secret", User: "user@example.com",
	})
	if prod1 == prod2 {
		t.Fatalf("production services must not be cached")
	}
}

func TestTopDestinationStates(t *testing.T) {
	service := newTestService(t, &stubGateway{}, &stubResolver{})
	service.MaxMarketStates = 2

	loads := []*dat.Load{
		rankableLoad("a", "GA", 2.5),
		rankableLoad("b", "GA", 2.5),
		rankableLoad("c", "FL", 2.5),
		rankableLoad("d", "TN", 2.5),
		rankableLoad("e", "", 2.5), // open destination, not a market
	}

	states := service.topDestinationStates(loads)
	if len(states) != 2 {
		t.Fatalf("expected 2 states, got %v", states)
	}
	if states[0] != "GA" || states[1] != "FL" {
		t.Fatalf("expected frequency then alphabetical order, got %v", states)
	}
}

var _ filtering.FleetResolver = (*stubResolver)(nil)
