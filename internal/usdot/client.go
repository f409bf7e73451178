// Package usdot is the client for the federal carrier registry. All coercion
// of the registry's string-typed numeric fields happens here; the rest of the
// codebase only ever sees validated fleet.Info records.
package usdot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kayaan/driver-gtm/internal/fleet"
	"github.com/kayaan/driver-gtm/internal/metrics"
)

const (
	apiURL = "https://data.transportation.gov/resource/az4n-8mr2.json"

	// Fleet lookups are a side channel of driver searches and must never
	// stall one; the request budget is short on purpose.
	lookupTimeout = 5 * time.Second
)

// LookupError reports a failed registry call. Callers are expected to degrade
// to an unverifiable fleet size rather than propagate it.
type LookupError struct {
	DOTNumber string
	Status    int
	Err       error
}

func (e *LookupError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("usdot lookup for DOT %s: status %d", e.DOTNumber, e.Status)
	}
	return fmt.Sprintf("usdot lookup for DOT %s: %v", e.DOTNumber, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }

type Client struct {
	logger     *zap.Logger
	appToken   string
	APIURL     string
	HTTPClient *http.Client
}

func New(logger *zap.Logger, appToken string) *Client {
	return &Client{
		logger:   logger,
		appToken: appToken,
		APIURL:   apiURL,
		HTTPClient: &http.Client{
			Timeout: lookupTimeout,
		},
	}
}

// record mirrors the registry row. Numeric-looking fields are strings on the
// wire.
type record struct {
	DOTNumber     string `json:"dot_number"`
	LegalName     string `json:"legal_name"`
	TruckUnits    string `json:"truck_units"`
	TotalDrivers  string `json:"total_drivers"`
	PhyCity       string `json:"phy_city"`
	PhyState      string `json:"phy_state"`
	Docket1Prefix string `json:"docket1prefix"`
	Docket1       string `json:"docket1"`
	EntityType    string `json:"entity_type"`
}

// LookupFleetSize fetches the registry record for a DOT number. A missing
// record, timeout, or bad response yields a LookupError; malformed individual
// fields degrade to unknown counts without failing the record.
func (c *Client) LookupFleetSize(ctx context.Context, dotNumber string) (*fleet.Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL, nil)
	if err != nil {
		return nil, &LookupError{DOTNumber: dotNumber, Err: err}
	}

	q := url.Values{}
	q.Set("dot_number", dotNumber)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	if c.appToken != "" {
		req.Header.Set("X-App-Token", c.appToken)
	}

	metrics.UpstreamCalls.WithLabelValues("usdot", "fleet_lookup").Inc()
	c.logger.Debug("usdot lookup", zap.String("dot_number", dotNumber))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &LookupError{DOTNumber: dotNumber, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &LookupError{DOTNumber: dotNumber, Status: resp.StatusCode}
	}

	var records []record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, &LookupError{DOTNumber: dotNumber, Err: fmt.Errorf("decoding response: %w", err)}
	}

	if len(records) == 0 {
		return nil, &LookupError{DOTNumber: dotNumber, Err: fmt.Errorf("no registry record")}
	}

	return c.parseRecord(dotNumber, records[0]), nil
}

func (c *Client) parseRecord(dotNumber string, rec record) *fleet.Info {
	info := &fleet.Info{
		DOTNumber:     dotNumber,
		LegalName:     rec.LegalName,
		PhysicalCity:  rec.PhyCity,
		PhysicalState: rec.PhyState,
		EntityType:    rec.EntityType,
		Resolution:    fleet.ResolutionKnown,
	}

	info.TruckUnits = c.parseCount(dotNumber, "truck_units", rec.TruckUnits)
	info.TotalDrivers = c.parseCount(dotNumber, "total_drivers", rec.TotalDrivers)

	if strings.EqualFold(strings.TrimSpace(rec.Docket1Prefix), "MC") {
		info.MCNumber = c.parseCount(dotNumber, "docket1", rec.Docket1)
	}

	return info
}

// parseCount coerces a registry string field to an integer. A field that
// fails to parse degrades to an unknown count for that field only.
func (c *Client) parseCount(dotNumber, field, raw string) fleet.Count {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fleet.Count{}
	}

	v, err := strconv.Atoi(trimmed)
	if err != nil {
		c.logger.Debug("unparseable registry field",
			zap.String("dot_number", dotNumber),
			zap.String("field", field),
			zap.String("value", raw),
		)
		return fleet.Count{}
	}

	return fleet.KnownCount(v)
}
