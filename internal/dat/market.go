package dat

import (
	"context"

	"go.uber.org/zap"
)

// Lane sample size for counting distinct destination states out of a market.
const laneSampleLimit = 50

// MarketSignal summarizes freight conditions in a destination state: how much
// freight leaves it, how many trucks compete for that freight, and how many
// distinct lanes it feeds.
type MarketSignal struct {
	State           string
	OutboundLoads   int
	AvailableTrucks int
	DistinctLanes   int
}

// FetchMarketSignal queries outbound freight and available capacity for one
// state. The outbound query doubles as the lane sample; the truck query only
// needs its match counts.
func (c *Client) FetchMarketSignal(ctx context.Context, state string, equipmentTypes []string) (*MarketSignal, error) {
	areaOrigin := map[string]any{
		"area": map[string]any{"states": []string{state}},
	}

	outbound, err := c.runQuery(ctx, "market_outbound", map[string]any{
		"assetType":      assetTypeShipment,
		"equipmentTypes": equipmentTypes,
		"origin":         areaOrigin,
		"maxAgeMinutes":  maxAgeMinutes,
	}, laneSampleLimit)
	if err != nil {
		return nil, err
	}

	trucks, err := c.runQuery(ctx, "market_trucks", map[string]any{
		"assetType":      assetTypeTruck,
		"equipmentTypes": equipmentTypes,
		"origin":         areaOrigin,
		"maxAgeMinutes":  maxAgeMinutes,
	}, 1)
	if err != nil {
		return nil, err
	}

	signal := &MarketSignal{
		State:           state,
		OutboundLoads:   outbound.MatchCounts.Total(),
		AvailableTrucks: trucks.MatchCounts.Total(),
		DistinctLanes:   countDistinctLanes(state, outbound.Matches),
	}

	c.logger.Debug("market signal fetched",
		zap.String("state", state),
		zap.Int("outbound_loads", signal.OutboundLoads),
		zap.Int("available_trucks", signal.AvailableTrucks),
		zap.Int("distinct_lanes", signal.DistinctLanes),
	)

	return signal, nil
}

// countDistinctLanes counts distinct destination states across the sampled
// outbound matches, excluding intrastate moves.
func countDistinctLanes(origin string, matches []map[string]any) int {
	seen := make(map[string]struct{})
	for _, raw := range matches {
		var load Load
		if err := decodeMatch(raw, &load); err != nil {
			continue
		}
		dest := load.DestinationState()
		if dest == "" || dest == origin {
			continue
		}
		seen[dest] = struct{}{}
	}
	return len(seen)
}
