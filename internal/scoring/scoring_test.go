package scoring

import (
	"math"
	"testing"

	"github.com/kayaan/driver-gtm/internal/dat"
)

func TestBandNormalize(t *testing.T) {
	band := Band{Floor: 1.5, Ceiling: 3.5}

	cases := []struct {
		in   float64
		want float64
	}{
		{1.0, 0},
		{1.5, 0},
		{2.5, 50},
		{3.5, 100},
		{9.9, 100},
	}

	for _, tc := range cases {
		if got := band.Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%v) = %v, expected %v", tc.in, got, tc.want)
		}
	}

	degenerate := Band{Floor: 5, Ceiling: 5}
	if got := degenerate.Normalize(10); got != 0 {
		t.Fatalf("degenerate band must normalize to 0, got %v", got)
	}
}

func TestRecommendBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{100, RecommendationExcellent},
		{90, RecommendationExcellent},
		{89, RecommendationGood},
		{75, RecommendationGood},
		{74, RecommendationModerate},
		{60, RecommendationModerate},
		{59, RecommendationLow},
		{0, RecommendationLow},
	}

	for _, tc := range cases {
		if got := Recommend(tc.score); got != tc.want {
			t.Fatalf("Recommend(%d) = %s, expected %s", tc.score, got, tc.want)
		}
	}
}

func approx(got, want, tolerance float64) bool {
	return math.Abs(got-want) <= tolerance
}

func loadWithRate(equipment string, tripMiles, deadheadMiles, perMileRate float64) *dat.Load {
	load := &dat.Load{
		TripLength:     dat.Mileage{Miles: tripMiles},
		OriginDeadhead: dat.Mileage{Miles: deadheadMiles},
	}
	load.MatchingAssetInfo.EquipmentType = equipment
	if perMileRate > 0 {
		load.LoadBoardRateInfo.NonBookable = dat.RateBasis{RateUsd: perMileRate, Basis: "PER_MILE"}
	}
	return load
}

func TestProfitForPostedRate(t *testing.T) {
	params := DefaultParams()
	load := loadWithRate("V", 1000, 0, 2.5)

	profit := ProfitFor(params, load)

	if profit.RateSource != RateSourcePosted {
		t.Fatalf("expected posted rate source, got %s", profit.RateSource)
	}
	if profit.Revenue != 2500 {
		t.Fatalf("expected revenue 2500, got %v", profit.Revenue)
	}

	// 1000 miles at 3.89/6.6 fuel plus 0.40 ops.
	if !approx(profit.Cost, 989.39, 0.01) {
		t.Fatalf("unexpected cost: %v", profit.Cost)
	}
	if !approx(profit.Profit, 1510.61, 0.01) {
		t.Fatalf("unexpected profit: %v", profit.Profit)
	}
	if profit.Score < 1 || profit.Score > 100 {
		t.Fatalf("score out of range: %d", profit.Score)
	}
}

func TestProfitForFallbackRates(t *testing.T) {
	params := DefaultParams()

	cases := []struct {
		name      string
		equipment string
		tripMiles float64
		wantRate  float64
	}{
		{"reefer short haul", "R", 400, 2.90},
		{"reefer long haul", "R", 800, 2.60},
		{"van short haul", "V", 400, 2.70},
		{"flatbed long haul", "F", 800, 2.30},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profit := ProfitFor(params, loadWithRate(tc.equipment, tc.tripMiles, 0, 0))

			if profit.RateSource != RateSourceFallback {
				t.Fatalf("expected fallback rate source, got %s", profit.RateSource)
			}
			if profit.RatePerMile != tc.wantRate {
				t.Fatalf("expected rate %v, got %v", tc.wantRate, profit.RatePerMile)
			}
		})
	}
}

func TestProfitScoreMonotonicInRate(t *testing.T) {
	params := DefaultParams()

	low := ProfitFor(params, loadWithRate("V", 800, 50, 1.80))
	high := ProfitFor(params, loadWithRate("V", 800, 50, 3.20))

	if high.Score <= low.Score {
		t.Fatalf("higher rate must not score lower: %d vs %d", high.Score, low.Score)
	}
}

func TestDistanceFactor(t *testing.T) {
	params := DefaultParams()

	cases := []struct {
		miles float64
		want  float64
	}{
		{0, 0.70},
		{125, 0.85},
		{250, 1.0},
		{800, 1.0},
		{1200, 1.0},
		{2400, 0.70},
		{9000, 0.70},
	}

	for _, tc := range cases {
		if got := distanceFactor(params, tc.miles); !approx(got, tc.want, 1e-9) {
			t.Fatalf("distanceFactor(%v) = %v, expected %v", tc.miles, got, tc.want)
		}
	}
}

func TestMarketFor(t *testing.T) {
	params := DefaultParams()

	t.Run("no signal", func(t *testing.T) {
		scores := MarketFor(params, nil)
		if scores.Connectivity != 0 || scores.Ease != 0 || scores.SignalAvailable {
			t.Fatalf("missing signal must zero both axes: %+v", scores)
		}
	})

	t.Run("dead market", func(t *testing.T) {
		scores := MarketFor(params, &dat.MarketSignal{State: "WY"})
		if scores.Connectivity != 0 || scores.Ease != 0 {
			t.Fatalf("dead market must score zero: %+v", scores)
		}
		if !scores.SignalAvailable {
			t.Fatalf("a fetched signal is still a signal")
		}
	})

	t.Run("hot market", func(t *testing.T) {
		scores := MarketFor(params, &dat.MarketSignal{
			State:           "TX",
			OutboundLoads:   100,
			AvailableTrucks: 50,
			DistinctLanes:   10,
		})

		if !approx(scores.SupplyDemandRatio, 0.5, 1e-9) {
			t.Fatalf("unexpected supply/demand ratio: %v", scores.SupplyDemandRatio)
		}
		if scores.Connectivity != 70 {
			t.Fatalf("expected connectivity 70, got %d", scores.Connectivity)
		}
		if scores.Ease != 100 {
			t.Fatalf("expected ease 100, got %d", scores.Ease)
		}
	})

	t.Run("saturated market", func(t *testing.T) {
		scores := MarketFor(params, &dat.MarketSignal{
			State:           "FL",
			OutboundLoads:   100,
			AvailableTrucks: 500,
		})

		if scores.Ease != 40 {
			t.Fatalf("saturated market keeps only the volume component, got ease %d", scores.Ease)
		}
		if scores.Connectivity != 40 {
			t.Fatalf("no lanes keeps only the volume component, got connectivity %d", scores.Connectivity)
		}
	})
}

func TestComposite(t *testing.T) {
	params := DefaultParams()

	score := Composite(params,
		ProfitData{Score: 80},
		MarketScores{Connectivity: 90, Ease: 100},
	)

	if score.Score != 87 {
		t.Fatalf("expected composite 87, got %d", score.Score)
	}
	if score.Recommendation != RecommendationGood {
		t.Fatalf("expected Good, got %s", score.Recommendation)
	}
	if score.Profit != 80 || score.Connectivity != 90 || score.Ease != 100 {
		t.Fatalf("components must pass through: %+v", score)
	}
}

// revenueOnlyParams score loads purely on revenue so ties can be constructed
// deterministically.
func revenueOnlyParams() Params {
	params := DefaultParams()
	params.ProfitPerMileWeight = 0
	params.RatePerMileWeight = 0
	params.RevenueWeight = 1
	return params
}

func TestRankOrdering(t *testing.T) {
	params := revenueOnlyParams()

	loadA := loadWithRate("V", 500, 200, 3.2)   // revenue 1600, total 700
	loadB := loadWithRate("V", 500, 0, 3.2)     // revenue 1600, total 500
	loadC := loadWithRate("V", 500, 0, 4.0)     // revenue 2000
	loadD := loadWithRate("V", 500, 400, 3.208) // revenue 1604, total 900

	ranked := Rank(params, []*dat.Load{loadA, loadB, loadC, loadD}, nil)

	want := []*dat.Load{loadC, loadD, loadB, loadA}
	for i, expected := range want {
		if ranked[i].Load != expected {
			t.Fatalf("position %d: expected total %v, got revenue %v total %v",
				i, expected.TotalMiles(), ranked[i].Profit.Revenue, ranked[i].Load.TotalMiles())
		}
	}

	// Same score, same revenue: the shorter total trip wins.
	if ranked[2].Load.TotalMiles() >= ranked[3].Load.TotalMiles() {
		t.Fatalf("revenue tie must break on total distance")
	}
}

func TestRankStableForIdenticalLoads(t *testing.T) {
	params := revenueOnlyParams()

	first := loadWithRate("V", 500, 0, 3.2)
	second := loadWithRate("V", 500, 0, 3.2)

	ranked := Rank(params, []*dat.Load{first, second}, nil)

	if ranked[0].Load != first || ranked[1].Load != second {
		t.Fatalf("identical loads must keep their incoming order")
	}
}

func TestRankMissingMarketSignal(t *testing.T) {
	params := DefaultParams()

	scored := loadWithRate("V", 800, 0, 2.8)
	scored.MatchingAssetInfo.Destination.Place = dat.Location{City: "Atlanta", StateProv: "GA"}

	unscored := loadWithRate("V", 800, 0, 2.8)
	unscored.MatchingAssetInfo.Destination.Place = dat.Location{City: "Nowhere", StateProv: "ZZ"}

	signals := map[string]*dat.MarketSignal{
		"GA": {State: "GA", OutboundLoads: 100, AvailableTrucks: 40, DistinctLanes: 12},
	}

	ranked := Rank(params, []*dat.Load{unscored, scored}, signals)

	if len(ranked) != 2 {
		t.Fatalf("a missing market signal must never drop a load")
	}
	if ranked[0].Load != scored {
		t.Fatalf("the load with market data must outrank the one without")
	}
	if ranked[1].Market.SignalAvailable {
		t.Fatalf("missing signal must be reported as unavailable")
	}
	if ranked[1].Composite.Recommendation == "" {
		t.Fatalf("every ranked load carries a recommendation")
	}
}
