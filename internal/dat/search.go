package dat

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	// Hard ceiling on matches returned per query regardless of what the
	// caller asks for.
	MaxSearchLimit = 150

	defaultSearchLimit = 20

	// Postings older than two days are stale capacity.
	maxAgeMinutes = 2880

	assetTypeTruck    = "TRUCK"
	assetTypeShipment = "SHIPMENT"
)

// Place locates a search origin or destination.
type Place struct {
	City      string
	StateProv string
	Latitude  float64
	Longitude float64
}

// DriverSearchParams describe a capacity search: trucks near an origin that
// could haul the given equipment.
type DriverSearchParams struct {
	Origin         Place
	EquipmentTypes []string
	// Destination states the trucks should be willing to head toward;
	// empty means open.
	DestinationStates []string
	// MaxDeadheadMiles caps the truck's distance from the origin; zero
	// leaves it to the board's default radius.
	MaxDeadheadMiles float64
	LoadType         string // FULL, PARTIAL or BOTH
	Limit            int
}

// LoadSearchParams describe a freight search around a driver's position.
type LoadSearchParams struct {
	Origin         Place
	EquipmentTypes []string
	// Destination states the freight should head toward; empty means open.
	DestinationStates []string
	LoadType          string
	Limit             int
}

// MatchCounts is the match-volume summary attached to every query.
type MatchCounts struct {
	Normal         int `json:"normal"`
	Preferred      int `json:"preferred"`
	PrivateNetwork int `json:"privateNetwork"`
}

func (m MatchCounts) Total() int {
	return m.Normal + m.Preferred + m.PrivateNetwork
}

type queryResponse struct {
	QueryID string `json:"queryId"`
}

type matchesResponse struct {
	Matches     []map[string]any `json:"matches"`
	MatchCounts MatchCounts      `json:"matchCounts"`
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultSearchLimit
	}
	if limit > MaxSearchLimit {
		return MaxSearchLimit
	}
	return limit
}

func placeCriteria(p Place) map[string]any {
	return map[string]any{
		"place": map[string]any{
			"city":      p.City,
			"stateProv": p.StateProv,
			"latitude":  p.Latitude,
			"longitude": p.Longitude,
		},
	}
}

// SearchDrivers runs a capacity query and returns the typed matches along
// with the total match count reported by the board.
func (c *Client) SearchDrivers(ctx context.Context, params *DriverSearchParams) (*Drivers, int, error) {
	criteria := map[string]any{
		"assetType":      assetTypeTruck,
		"equipmentTypes": params.EquipmentTypes,
		"origin":         placeCriteria(params.Origin),
		"maxAgeMinutes":  maxAgeMinutes,
	}
	if len(params.DestinationStates) > 0 {
		criteria["destination"] = map[string]any{
			"area": map[string]any{"states": params.DestinationStates},
		}
	}
	if params.MaxDeadheadMiles > 0 {
		criteria["maxOriginDeadheadMiles"] = params.MaxDeadheadMiles
	}
	if lt := fullPartialCriteria(params.LoadType); lt != "" {
		criteria["fullPartial"] = lt
	}

	resp, err := c.runQuery(ctx, "driver_search", criteria, clampLimit(params.Limit))
	if err != nil {
		return nil, 0, err
	}

	drivers := &Drivers{Items: make([]*Driver, 0, len(resp.Matches))}
	for _, raw := range resp.Matches {
		var driver Driver
		if err := decodeMatch(raw, &driver); err != nil {
			return nil, 0, &SearchError{Op: "driver_search", Err: err}
		}
		drivers.Items = append(drivers.Items, &driver)
	}

	c.logger.Info("driver search completed",
		zap.String("origin", params.Origin.City+", "+params.Origin.StateProv),
		zap.Int("matches", drivers.Len()),
		zap.Int("total_available", resp.MatchCounts.Total()),
	)

	return drivers, resp.MatchCounts.Total(), nil
}

// SearchLoads runs a freight query around the driver's position.
func (c *Client) SearchLoads(ctx context.Context, params *LoadSearchParams) (*Loads, error) {
	criteria := map[string]any{
		"assetType":      assetTypeShipment,
		"equipmentTypes": params.EquipmentTypes,
		"origin":         placeCriteria(params.Origin),
		"maxAgeMinutes":  maxAgeMinutes,
	}
	if len(params.DestinationStates) > 0 {
		criteria["destination"] = map[string]any{
			"area": map[string]any{"states": params.DestinationStates},
		}
	}
	if lt := fullPartialCriteria(params.LoadType); lt != "" {
		criteria["fullPartial"] = lt
	}

	resp, err := c.runQuery(ctx, "load_search", criteria, clampLimit(params.Limit))
	if err != nil {
		return nil, err
	}

	loads := &Loads{Items: make([]*Load, 0, len(resp.Matches))}
	for _, raw := range resp.Matches {
		var load Load
		if err := decodeMatch(raw, &load); err != nil {
			return nil, &SearchError{Op: "load_search", Err: err}
		}
		loads.Items = append(loads.Items, &load)
	}

	c.logger.Info("load search completed",
		zap.String("origin", params.Origin.City+", "+params.Origin.StateProv),
		zap.Int("matches", loads.Len()),
	)

	return loads, nil
}

// fullPartialCriteria maps the caller's load type to a query constraint.
// BOTH and the empty string impose none.
func fullPartialCriteria(loadType string) string {
	switch loadType {
	case "FULL", "PARTIAL":
		return loadType
	default:
		return ""
	}
}

// runQuery is the two-step search protocol: submit criteria, then fetch the
// matches for the issued query id.
func (c *Client) runQuery(ctx context.Context, op string, criteria map[string]any, limit int) (*matchesResponse, error) {
	criteria["audience"] = map[string]any{
		"includesLoadBoard":      true,
		"includesPrivateNetwork": true,
	}

	payload := map[string]any{
		"criteria": criteria,
		"limit":    limit,
	}

	var query queryResponse
	if _, err := c.postJSON(ctx, op, c.FreightURL+"/search/v3/queries", payload, &query); err != nil {
		return nil, err
	}
	if query.QueryID == "" {
		return nil, &SearchError{Op: op, Err: fmt.Errorf("query accepted without an id")}
	}

	var matches matchesResponse
	if err := c.getJSON(ctx, op, c.FreightURL+"/search/v3/queryMatches/"+query.QueryID, nil, &matches); err != nil {
		return nil, err
	}

	return &matches, nil
}
