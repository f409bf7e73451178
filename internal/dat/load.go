package dat

import (
	"strings"

	"github.com/kayaan/driver-gtm/internal/fleet"
)

// RateBasis is a posted rate: a dollar amount and whether it is flat for the
// whole trip or per mile.
type RateBasis struct {
	RateUsd float64 `json:"rateUsd"`
	Basis   string  `json:"basis"` // "FLAT" or "PER_MILE"
}

type LoadBoardRateInfo struct {
	Bookable    RateBasis `json:"bookable"`
	NonBookable RateBasis `json:"nonBookable"`
}

// Load is a single freight posting matched against a driver's position.
type Load struct {
	MatchID             string            `json:"matchId"`
	PostingID           string            `json:"postingId"`
	PostingExpiresWhen  string            `json:"postingExpiresWhen"`
	Comments            string            `json:"comments"`
	PosterInfo          PosterInfo        `json:"posterInfo"`
	PosterDotIDs        PosterDotIDs      `json:"posterDotIds"`
	Availability        Window            `json:"availability"`
	MatchingAssetInfo   AssetInfo         `json:"matchingAssetInfo"`
	TripLength          Mileage           `json:"tripLength"`
	OriginDeadhead      Mileage           `json:"originDeadhead"`
	OriginDeadheadMiles Mileage           `json:"originDeadheadMiles"`
	EstimatedRate       float64           `json:"estimatedRatePerMile"`
	LoadBoardRateInfo   LoadBoardRateInfo `json:"loadBoardRateInfo"`
	MaximumWeightPounds float64           `json:"maximumWeightPounds"`
	MaximumLengthFeet   float64           `json:"maximumLengthFeet"`
	IsBookable          bool              `json:"isBookable"`
	IsNegotiable        bool              `json:"isNegotiable"`
	IsFactorable        bool              `json:"isFactorable"`
	IsAssurable         bool              `json:"isAssurable"`

	// BrokerFleet is attached after ranking when the poster's DOT number
	// resolves; absence never drops the load.
	BrokerFleet *fleet.Info `json:"-" mapstructure:"-"`
}

func (l *Load) TripMiles() float64 {
	return l.TripLength.Miles
}

// DeadheadMiles tolerates both field spellings the API has used.
func (l *Load) DeadheadMiles() float64 {
	if l.OriginDeadheadMiles.Miles > 0 {
		return l.OriginDeadheadMiles.Miles
	}
	return l.OriginDeadhead.Miles
}

func (l *Load) TotalMiles() float64 {
	return l.TripMiles() + l.DeadheadMiles()
}

func (l *Load) OriginCity() string {
	return l.MatchingAssetInfo.Origin.City
}

func (l *Load) OriginState() string {
	return l.MatchingAssetInfo.Origin.StateProv
}

func (l *Load) DestinationCity() string {
	return l.MatchingAssetInfo.Destination.Place.City
}

// DestinationState returns the destination state, falling back to the first
// area state for open postings.
func (l *Load) DestinationState() string {
	if s := l.MatchingAssetInfo.Destination.Place.StateProv; s != "" {
		return s
	}
	if states := l.MatchingAssetInfo.Destination.Area.States; len(states) > 0 {
		return states[0]
	}
	return ""
}

func (l *Load) EquipmentType() string {
	return l.MatchingAssetInfo.EquipmentType
}

func (l *Load) FullPartial() string {
	return strings.ToUpper(strings.TrimSpace(l.MatchingAssetInfo.Capacity.Shipment.FullPartial))
}

func (l *Load) WeightPounds() float64 {
	if w := l.MatchingAssetInfo.Capacity.Shipment.MaximumWeightPounds; w > 0 {
		return w
	}
	return l.MaximumWeightPounds
}

func (l *Load) LengthFeet() float64 {
	if f := l.MatchingAssetInfo.Capacity.Shipment.MaximumLengthFeet; f > 0 {
		return f
	}
	return l.MaximumLengthFeet
}

func (l *Load) BrokerDOT() string {
	return l.PosterDotIDs.DOT()
}

// PostedRatePerMile extracts the best available per-mile rate from the
// posting. Preference order is the rate estimate, then the non-bookable board
// rate, then the bookable one; flat rates are spread over trip miles. The
// second return is false when the posting carries no usable rate.
func (l *Load) PostedRatePerMile() (float64, bool) {
	if l.EstimatedRate > 0 {
		return l.EstimatedRate, true
	}

	for _, rate := range []RateBasis{l.LoadBoardRateInfo.NonBookable, l.LoadBoardRateInfo.Bookable} {
		if rate.RateUsd <= 0 {
			continue
		}
		switch strings.ToUpper(rate.Basis) {
		case "PER_MILE":
			return rate.RateUsd, true
		case "FLAT":
			if miles := l.TripMiles(); miles > 0 {
				return rate.RateUsd / miles, true
			}
		}
	}

	return 0, false
}

type Loads struct {
	Items []*Load
}

func (l *Loads) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Items)
}
