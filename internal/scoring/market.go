package scoring

import "github.com/kayaan/driver-gtm/internal/dat"

// MarketScores grades a destination state. A destination with no market data
// at all scores zero on both axes but never disqualifies a load.
type MarketScores struct {
	Connectivity int `json:"connectivity"`
	Ease         int `json:"ease"`

	SupplyDemandRatio float64 `json:"supply_demand_ratio"`
	OutboundLoads     int     `json:"outbound_loads"`
	AvailableTrucks   int     `json:"available_trucks"`
	DistinctLanes     int     `json:"distinct_lanes"`
	SignalAvailable   bool    `json:"signal_available"`
}

// MarketFor scores a market signal. Connectivity measures how many onward
// options the destination offers; ease measures how quickly the truck can
// book its next load there.
func MarketFor(params Params, signal *dat.MarketSignal) MarketScores {
	if signal == nil {
		return MarketScores{}
	}

	scores := MarketScores{
		OutboundLoads:   signal.OutboundLoads,
		AvailableTrucks: signal.AvailableTrucks,
		DistinctLanes:   signal.DistinctLanes,
		SignalAvailable: true,
	}

	// A state with neither outbound freight nor competing trucks is a dead
	// market, not an easy one.
	if signal.OutboundLoads == 0 && signal.AvailableTrucks == 0 {
		return scores
	}

	outbound := float64(signal.OutboundLoads)
	scores.SupplyDemandRatio = float64(signal.AvailableTrucks) / maxFloat(outbound, 1)

	outboundScore := params.OutboundBand.Normalize(outbound)
	laneScore := params.LaneBand.Normalize(float64(signal.DistinctLanes))
	balanceScore := 100 - params.SupplyDemandBand.Normalize(scores.SupplyDemandRatio)

	scores.Connectivity = clampScore(params.LaneWeight*laneScore + params.OutboundWeight*outboundScore)
	scores.Ease = clampScore(params.BalanceWeight*balanceScore + params.OutboundWeight*outboundScore)

	return scores
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
