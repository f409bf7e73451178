package api

import (
	"github.com/kayaan/driver-gtm/internal/dat"
	"github.com/kayaan/driver-gtm/internal/filtering"
	"github.com/kayaan/driver-gtm/internal/fleet"
	"github.com/kayaan/driver-gtm/internal/gtm"
	"github.com/kayaan/driver-gtm/internal/scoring"
)

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
	User     string `json:"user"`
}

func (c credentialsPayload) toCredentials() dat.Credentials {
	return dat.Credentials{Username: c.Username, Password: c.Password, User: c.User}
}

type searchDriversRequest struct {
	Environment       string             `json:"environment"`
	Credentials       credentialsPayload `json:"credentials"`
	City              string             `json:"city"`
	State             string             `json:"state"`
	EquipmentTypes    []string           `json:"equipment_types"`
	LoadType          string             `json:"load_type"`
	Limit             int                `json:"limit"`
	AvailableFrom     string             `json:"available_from"`
	AvailableTo       string             `json:"available_to"`
	DestinationStates []string           `json:"destination_states"`
	MaxDeadhead       float64            `json:"max_deadhead"`
}

type loadsRequest struct {
	Environment       string             `json:"environment"`
	Credentials       credentialsPayload `json:"credentials"`
	City              string             `json:"city"`
	State             string             `json:"state"`
	EquipmentTypes    []string           `json:"equipment_types"`
	LoadType          string             `json:"load_type"`
	Limit             int                `json:"limit"`
	AvailableFrom     string             `json:"available_from"`
	AvailableTo       string             `json:"available_to"`
	DestinationStates []string           `json:"destination_states"`
	MaxDeadhead       float64            `json:"max_deadhead"`
}

type authenticateRequest struct {
	Environment string             `json:"environment"`
	Credentials credentialsPayload `json:"credentials"`
}

type stepPayload struct {
	Name    string `json:"name"`
	Initial int    `json:"initial"`
	Dropped int    `json:"dropped"`
	Left    int    `json:"left"`
}

func stepPayloads(steps []filtering.Step) []stepPayload {
	out := make([]stepPayload, 0, len(steps))
	for _, step := range steps {
		out = append(out, stepPayload(step))
	}
	return out
}

type fleetPayload struct {
	Resolution    string `json:"resolution"`
	FailureReason string `json:"failure_reason,omitempty"`
	LegalName     string `json:"legal_name,omitempty"`
	EntityType    string `json:"entity_type,omitempty"`
	PhysicalCity  string `json:"physical_city,omitempty"`
	PhysicalState string `json:"physical_state,omitempty"`
	TruckUnits    *int   `json:"truck_units,omitempty"`
	TotalDrivers  *int   `json:"total_drivers,omitempty"`
	MCNumber      *int   `json:"mc_number,omitempty"`
}

func fleetPayloadFor(info *fleet.Info) *fleetPayload {
	if info == nil {
		return nil
	}

	payload := &fleetPayload{
		Resolution:    info.Resolution.String(),
		FailureReason: info.FailureReason,
		LegalName:     info.LegalName,
		EntityType:    info.EntityType,
		PhysicalCity:  info.PhysicalCity,
		PhysicalState: info.PhysicalState,
	}
	if info.TruckUnits.Known {
		payload.TruckUnits = &info.TruckUnits.Value
	}
	if info.TotalDrivers.Known {
		payload.TotalDrivers = &info.TotalDrivers.Value
	}
	if info.MCNumber.Known {
		payload.MCNumber = &info.MCNumber.Value
	}
	return payload
}

type driverPayload struct {
	MatchID       string        `json:"match_id"`
	Company       string        `json:"company"`
	Phone         string        `json:"phone,omitempty"`
	Email         string        `json:"email,omitempty"`
	OriginCity    string        `json:"origin_city"`
	OriginState   string        `json:"origin_state"`
	EquipmentType string        `json:"equipment_type"`
	DOTNumber     string        `json:"dot_number,omitempty"`
	EarliestWhen  string        `json:"earliest_when,omitempty"`
	LatestWhen    string        `json:"latest_when,omitempty"`
	DeadheadMiles float64       `json:"deadhead_miles"`
	IsBookable    bool          `json:"is_bookable"`
	Fleet         *fleetPayload `json:"fleet,omitempty"`
}

func driverPayloadFor(driver *dat.Driver) driverPayload {
	return driverPayload{
		MatchID:       driver.MatchID,
		Company:       driver.CompanyName(),
		Phone:         driver.PosterInfo.Contact.BestPhone(),
		Email:         driver.PosterInfo.Contact.Email,
		OriginCity:    driver.OriginCity(),
		OriginState:   driver.OriginState(),
		EquipmentType: driver.EquipmentType(),
		DOTNumber:     driver.DOTNumber(),
		EarliestWhen:  driver.Availability.EarliestWhen,
		LatestWhen:    driver.Availability.LatestWhen,
		DeadheadMiles: driver.OriginDeadheadMiles.Miles,
		IsBookable:    driver.IsBookable,
		Fleet:         fleetPayloadFor(driver.Fleet),
	}
}

type searchDriversResponse struct {
	TotalAvailable int             `json:"total_available"`
	Count          int             `json:"count"`
	Drivers        []driverPayload `json:"drivers"`
	Filters        []stepPayload   `json:"filters"`
}

func searchDriversResponseFor(result *gtm.SearchResult) searchDriversResponse {
	drivers := make([]driverPayload, 0, len(result.Drivers))
	for _, driver := range result.Drivers {
		drivers = append(drivers, driverPayloadFor(driver))
	}

	return searchDriversResponse{
		TotalAvailable: result.TotalAvailable,
		Count:          len(drivers),
		Drivers:        drivers,
		Filters:        stepPayloads(result.Steps),
	}
}

type loadPayload struct {
	MatchID          string                 `json:"match_id"`
	OriginCity       string                 `json:"origin_city"`
	OriginState      string                 `json:"origin_state"`
	DestinationCity  string                 `json:"destination_city,omitempty"`
	DestinationState string                 `json:"destination_state,omitempty"`
	EquipmentType    string                 `json:"equipment_type"`
	FullPartial      string                 `json:"full_partial,omitempty"`
	TripMiles        float64                `json:"trip_miles"`
	DeadheadMiles    float64                `json:"deadhead_miles"`
	TotalMiles       float64                `json:"total_miles"`
	Broker           string                 `json:"broker,omitempty"`
	BrokerPhone      string                 `json:"broker_phone,omitempty"`
	BrokerDOT        string                 `json:"broker_dot,omitempty"`
	BrokerFleet      *fleetPayload          `json:"broker_fleet,omitempty"`
	Profit           scoring.ProfitData     `json:"profit"`
	Market           scoring.MarketScores   `json:"market"`
	Score            scoring.CompositeScore `json:"score"`
}

func loadPayloadFor(item *scoring.RankedLoad) loadPayload {
	load := item.Load
	return loadPayload{
		MatchID:          load.MatchID,
		OriginCity:       load.OriginCity(),
		OriginState:      load.OriginState(),
		DestinationCity:  load.DestinationCity(),
		DestinationState: load.DestinationState(),
		EquipmentType:    load.EquipmentType(),
		FullPartial:      load.FullPartial(),
		TripMiles:        load.TripMiles(),
		DeadheadMiles:    load.DeadheadMiles(),
		TotalMiles:       load.TotalMiles(),
		Broker:           load.PosterInfo.CompanyName,
		BrokerPhone:      load.PosterInfo.Contact.BestPhone(),
		BrokerDOT:        load.BrokerDOT(),
		BrokerFleet:      fleetPayloadFor(load.BrokerFleet),
		Profit:           item.Profit,
		Market:           item.Market,
		Score:            item.Composite,
	}
}

type loadsResponse struct {
	Count   int           `json:"count"`
	Loads   []loadPayload `json:"loads"`
	Filters []stepPayload `json:"filters"`
}

func loadsResponseFor(result *gtm.LoadResult) loadsResponse {
	loads := make([]loadPayload, 0, len(result.Loads))
	for _, item := range result.Loads {
		loads = append(loads, loadPayloadFor(item))
	}

	return loadsResponse{
		Count:   len(loads),
		Loads:   loads,
		Filters: stepPayloads(result.Steps),
	}
}
