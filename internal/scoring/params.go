// Package scoring turns raw load economics and market signals into a single
// 0..100 composite score with a dispatch recommendation.
package scoring

import "math"

// Band is a linear normalization range. Values at or below Floor map to 0,
// values at or above Ceiling map to 100, everything between scales linearly.
type Band struct {
	Floor   float64 `json:"floor" mapstructure:"floor"`
	Ceiling float64 `json:"ceiling" mapstructure:"ceiling"`
}

func (b Band) Normalize(v float64) float64 {
	if b.Ceiling <= b.Floor {
		return 0
	}
	if v <= b.Floor {
		return 0
	}
	if v >= b.Ceiling {
		return 100
	}
	return (v - b.Floor) / (b.Ceiling - b.Floor) * 100
}

// Params hold every tunable constant of the scoring model. All of them can be
// overridden from configuration; DefaultParams are the operating values.
type Params struct {
	// Composite weights. They are expected to sum to 1.
	ProfitWeight       float64 `json:"profit_weight" mapstructure:"profit_weight"`
	ConnectivityWeight float64 `json:"connectivity_weight" mapstructure:"connectivity_weight"`
	EaseWeight         float64 `json:"ease_weight" mapstructure:"ease_weight"`

	// Profit sub-weights over the normalized economics.
	ProfitPerMileWeight float64 `json:"profit_per_mile_weight" mapstructure:"profit_per_mile_weight"`
	RatePerMileWeight   float64 `json:"rate_per_mile_weight" mapstructure:"rate_per_mile_weight"`
	RevenueWeight       float64 `json:"revenue_weight" mapstructure:"revenue_weight"`

	ProfitPerMileBand Band `json:"profit_per_mile_band" mapstructure:"profit_per_mile_band"`
	RatePerMileBand   Band `json:"rate_per_mile_band" mapstructure:"rate_per_mile_band"`
	RevenueBand       Band `json:"revenue_band" mapstructure:"revenue_band"`

	// Trip-length shaping of the profit score.
	ShortHaulMiles       float64 `json:"short_haul_miles" mapstructure:"short_haul_miles"`
	LongHaulMiles        float64 `json:"long_haul_miles" mapstructure:"long_haul_miles"`
	DistancePenaltyFloor float64 `json:"distance_penalty_floor" mapstructure:"distance_penalty_floor"`

	// Market normalization.
	LaneBand     Band `json:"lane_band" mapstructure:"lane_band"`
	OutboundBand Band `json:"outbound_band" mapstructure:"outbound_band"`
	// Supply/demand ratio (trucks per outbound load). At or below Easy the
	// market is wide open; at or above Hard it is saturated.
	SupplyDemandBand Band `json:"supply_demand_band" mapstructure:"supply_demand_band"`

	LaneWeight     float64 `json:"lane_weight" mapstructure:"lane_weight"`
	BalanceWeight  float64 `json:"balance_weight" mapstructure:"balance_weight"`
	OutboundWeight float64 `json:"outbound_weight" mapstructure:"outbound_weight"`

	// Cost model.
	FuelPricePerGallon float64            `json:"fuel_price_per_gallon" mapstructure:"fuel_price_per_gallon"`
	OpsCostPerMile     float64            `json:"ops_cost_per_mile" mapstructure:"ops_cost_per_mile"`
	MilesPerGallon     map[string]float64 `json:"miles_per_gallon" mapstructure:"miles_per_gallon"`
	DefaultMPG         float64            `json:"default_mpg" mapstructure:"default_mpg"`

	// Fallback per-mile rates for loads that post no rate, keyed by haul
	// length around ShortTripMiles.
	ShortTripMiles    float64 `json:"short_trip_miles" mapstructure:"short_trip_miles"`
	ReeferShortRate   float64 `json:"reefer_short_rate" mapstructure:"reefer_short_rate"`
	ReeferLongRate    float64 `json:"reefer_long_rate" mapstructure:"reefer_long_rate"`
	StandardShortRate float64 `json:"standard_short_rate" mapstructure:"standard_short_rate"`
	StandardLongRate  float64 `json:"standard_long_rate" mapstructure:"standard_long_rate"`
}

func DefaultParams() Params {
	return Params{
		ProfitWeight:       0.50,
		ConnectivityWeight: 0.30,
		EaseWeight:         0.20,

		ProfitPerMileWeight: 0.50,
		RatePerMileWeight:   0.30,
		RevenueWeight:       0.20,

		ProfitPerMileBand: Band{Floor: -0.25, Ceiling: 1.50},
		RatePerMileBand:   Band{Floor: 1.50, Ceiling: 3.50},
		RevenueBand:       Band{Floor: 0, Ceiling: 4000},

		ShortHaulMiles:       250,
		LongHaulMiles:        1200,
		DistancePenaltyFloor: 0.70,

		LaneBand:         Band{Floor: 0, Ceiling: 20},
		OutboundBand:     Band{Floor: 0, Ceiling: 100},
		SupplyDemandBand: Band{Floor: 0.5, Ceiling: 4.0},

		LaneWeight:     0.60,
		BalanceWeight:  0.60,
		OutboundWeight: 0.40,

		FuelPricePerGallon: 3.89,
		OpsCostPerMile:     0.40,
		MilesPerGallon: map[string]float64{
			"V": 6.6,
			"R": 6.0,
			"F": 5.8,
		},
		DefaultMPG: 6.0,

		ShortTripMiles:    500,
		ReeferShortRate:   2.90,
		ReeferLongRate:    2.60,
		StandardShortRate: 2.70,
		StandardLongRate:  2.30,
	}
}

// mpg returns the fuel efficiency assumed for an equipment type.
func (p Params) mpg(equipmentType string) float64 {
	if v, ok := p.MilesPerGallon[equipmentType]; ok && v > 0 {
		return v
	}
	if p.DefaultMPG > 0 {
		return p.DefaultMPG
	}
	return 6.0
}

// FallbackRate is the per-mile rate assumed when a posting carries none.
func (p Params) FallbackRate(equipmentType string, tripMiles float64) float64 {
	short := tripMiles < p.ShortTripMiles
	if equipmentType == "R" {
		if short {
			return p.ReeferShortRate
		}
		return p.ReeferLongRate
	}
	if short {
		return p.StandardShortRate
	}
	return p.StandardLongRate
}

// clampScore rounds to the nearest integer and clamps to 0..100.
func clampScore(v float64) int {
	rounded := int(math.Round(v))
	if rounded < 0 {
		return 0
	}
	if rounded > 100 {
		return 100
	}
	return rounded
}
