package dat

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kayaan/driver-gtm/internal/fleet"
)

// Location is a city/state pair as it appears on a posting.
type Location struct {
	City      string `json:"city"`
	StateProv string `json:"stateProv"`
}

// DestinationRef is either a concrete place or an area of states; open
// destinations carry neither.
type DestinationRef struct {
	Place Location `json:"place"`
	Area  Area     `json:"area"`
}

type Area struct {
	States []string `json:"states"`
}

type Shipment struct {
	FullPartial         string  `json:"fullPartial"`
	MaximumWeightPounds float64 `json:"maximumWeightPounds"`
	MaximumLengthFeet   float64 `json:"maximumLengthFeet"`
}

type Capacity struct {
	Shipment Shipment `json:"shipment"`
}

type AssetInfo struct {
	EquipmentType       string         `json:"equipmentType"`
	Origin              Location       `json:"origin"`
	Destination         DestinationRef `json:"destination"`
	Capacity            Capacity       `json:"capacity"`
	Commodity           string         `json:"commodity"`
	ReferenceID         string         `json:"referenceId"`
	SpecialInstructions string         `json:"specialInstructions"`
}

type Contact struct {
	Phone       string `json:"phone"`
	PhoneNumber string `json:"phoneNumber"`
	Email       string `json:"email"`
}

// BestPhone prefers the long-form number; postings populate one or the other.
func (c Contact) BestPhone() string {
	if c.PhoneNumber != "" {
		return c.PhoneNumber
	}
	return c.Phone
}

type Credit struct {
	CreditScore int `json:"creditScore"`
	DaysToPay   int `json:"daysToPay"`
}

type PosterInfo struct {
	CompanyName            string  `json:"companyName"`
	CarrierHomeState       string  `json:"carrierHomeState"`
	PreferredContactMethod string  `json:"preferredContactMethod"`
	Contact                Contact `json:"contact"`
	Credit                 Credit  `json:"credit"`
}

// PosterDotIDs carries the poster's regulatory identifiers. The upstream API
// emits them as numbers or strings depending on the record, so they stay
// untyped until read through the accessors.
type PosterDotIDs struct {
	DotNumber       any `json:"dotNumber"`
	CarrierMcNumber any `json:"carrierMcNumber"`
	BrokerMcNumber  any `json:"brokerMcNumber"`
}

func (p PosterDotIDs) DOT() string {
	return idString(p.DotNumber)
}

func (p PosterDotIDs) MC() string {
	if mc := idString(p.BrokerMcNumber); mc != "" {
		return mc
	}
	return idString(p.CarrierMcNumber)
}

func idString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatInt(int64(t), 10)
	case int:
		if t == 0 {
			return ""
		}
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Window is a posting's availability interval. Timestamps are RFC 3339 in
// UTC on the wire; parsing is left to the consumer so missing and malformed
// values can be policy decisions there.
type Window struct {
	EarliestWhen string `json:"earliestWhen"`
	LatestWhen   string `json:"latestWhen"`
}

func (w Window) IsZero() bool {
	return strings.TrimSpace(w.EarliestWhen) == "" && strings.TrimSpace(w.LatestWhen) == ""
}

// ParseWhen parses a wire timestamp.
func ParseWhen(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, strings.TrimSpace(s))
}

type Mileage struct {
	Miles float64 `json:"miles"`
}

// Driver is a single capacity posting (a truck available for hire).
type Driver struct {
	MatchID               string       `json:"matchId"`
	PostingID             string       `json:"postingId"`
	PostingExpiresWhen    string       `json:"postingExpiresWhen"`
	Comments              string       `json:"comments"`
	PosterInfo            PosterInfo   `json:"posterInfo"`
	PosterDotIDs          PosterDotIDs `json:"posterDotIds"`
	Availability          Window       `json:"availability"`
	MatchingAssetInfo     AssetInfo    `json:"matchingAssetInfo"`
	AvailableLengthFeet   float64      `json:"availableLengthFeet"`
	AvailableWeightPounds float64      `json:"availableWeightPounds"`
	OriginDeadheadMiles   Mileage      `json:"originDeadheadMiles"`
	IsBookable            bool         `json:"isBookable"`
	IsNegotiable          bool         `json:"isNegotiable"`
	IsFactorable          bool         `json:"isFactorable"`
	IsAssurable           bool         `json:"isAssurable"`
	IsTrackable           bool         `json:"isTrackable"`

	// Fleet is attached by the small-carrier filter so every surfaced
	// driver carries its (possibly unverifiable) registry record.
	Fleet *fleet.Info `json:"-" mapstructure:"-"`
}

func (d *Driver) DOTNumber() string {
	return d.PosterDotIDs.DOT()
}

func (d *Driver) CompanyName() string {
	return d.PosterInfo.CompanyName
}

func (d *Driver) EquipmentType() string {
	return d.MatchingAssetInfo.EquipmentType
}

func (d *Driver) OriginCity() string {
	return d.MatchingAssetInfo.Origin.City
}

func (d *Driver) OriginState() string {
	return d.MatchingAssetInfo.Origin.StateProv
}

type Drivers struct {
	Items []*Driver
}

func (d *Drivers) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Items)
}
