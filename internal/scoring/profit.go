package scoring

import "github.com/kayaan/driver-gtm/internal/dat"

const (
	RateSourcePosted   = "posted"
	RateSourceFallback = "fallback"
)

// ProfitData is the full economic breakdown for one load, surfaced alongside
// the score so a dispatcher can audit the math.
type ProfitData struct {
	RatePerMile   float64 `json:"rate_per_mile"`
	RateSource    string  `json:"rate_source"`
	Revenue       float64 `json:"revenue"`
	Cost          float64 `json:"cost"`
	Profit        float64 `json:"profit"`
	ProfitPerMile float64 `json:"profit_per_mile"`
	Score         int     `json:"score"`
}

// ProfitFor computes the economics of a load and scores them. Loads that post
// no usable rate are priced with the equipment-and-distance fallback rate, so
// every load gets a score.
func ProfitFor(params Params, load *dat.Load) ProfitData {
	tripMiles := load.TripMiles()
	totalMiles := load.TotalMiles()

	rate, ok := load.PostedRatePerMile()
	source := RateSourcePosted
	if !ok {
		rate = params.FallbackRate(load.EquipmentType(), tripMiles)
		source = RateSourceFallback
	}

	revenue := rate * tripMiles
	costPerMile := params.FuelPricePerGallon/params.mpg(load.EquipmentType()) + params.OpsCostPerMile
	cost := totalMiles * costPerMile
	profit := revenue - cost

	perMile := 0.0
	if totalMiles > 0 {
		perMile = profit / totalMiles
	}

	raw := params.ProfitPerMileWeight*params.ProfitPerMileBand.Normalize(perMile) +
		params.RatePerMileWeight*params.RatePerMileBand.Normalize(rate) +
		params.RevenueWeight*params.RevenueBand.Normalize(revenue)

	return ProfitData{
		RatePerMile:   rate,
		RateSource:    source,
		Revenue:       revenue,
		Cost:          cost,
		Profit:        profit,
		ProfitPerMile: perMile,
		Score:         clampScore(raw * distanceFactor(params, tripMiles)),
	}
}

// distanceFactor discounts trips too short to amortize fixed effort and trips
// long enough to tie up the truck for days. Inside the short/long band the
// factor is 1.
func distanceFactor(params Params, tripMiles float64) float64 {
	floor := params.DistancePenaltyFloor
	if floor <= 0 || floor > 1 {
		floor = 1
	}

	switch {
	case params.ShortHaulMiles > 0 && tripMiles < params.ShortHaulMiles:
		return floor + (1-floor)*(tripMiles/params.ShortHaulMiles)
	case params.LongHaulMiles > 0 && tripMiles > params.LongHaulMiles:
		over := (tripMiles - params.LongHaulMiles) / params.LongHaulMiles
		if over > 1 {
			over = 1
		}
		return 1 - (1-floor)*over
	default:
		return 1
	}
}
