// Package dat is the gateway to the freight-matching API: token issuance,
// capacity/load search, and market count queries.
package dat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kayaan/driver-gtm/internal/metrics"
)

const (
	EnvStaging    = "staging"
	EnvProduction = "production"

	stagingAuthURL    = "https://identity.api.staging.dat.com/access/v1/token"
	productionAuthURL = "https://identity.api.dat.com/access/v1/token"

	stagingFreightURL    = "https://freight.api.staging.dat.com"
	productionFreightURL = "https://freight.api.prod.dat.com"

	// User tokens are valid for 15 minutes unless the response says otherwise.
	defaultTokenTTL = 15 * time.Minute
	// Refresh slightly before expiry so an in-flight search never carries a
	// token that dies mid-request.
	tokenSkew = 30 * time.Second

	contentType = "application/json"
)

// Credentials are the three-part DAT identity: organization username and
// password issue the org token, the user email issues the user token.
type Credentials struct {
	Username string
	Password string
	User     string
}

type Client struct {
	logger      *zap.Logger
	creds       Credentials
	environment string

	AuthURL    string
	FreightURL string
	HTTPClient *http.Client

	// Token refresh is serialized so concurrent callers in this process
	// never double-issue for the same environment.
	mu             sync.Mutex
	orgToken       string
	userToken      string
	tokenExpiresAt time.Time
	now            func() time.Time
}

func New(logger *zap.Logger, creds Credentials, environment string) *Client {
	authURL, freightURL := stagingAuthURL, stagingFreightURL
	if environment == EnvProduction {
		authURL, freightURL = productionAuthURL, productionFreightURL
	} else {
		environment = EnvStaging
	}

	return &Client{
		logger:      logger,
		creds:       creds,
		environment: environment,
		AuthURL:     authURL,
		FreightURL:  freightURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

func (c *Client) Environment() string { return c.environment }

// Authenticate ensures a valid user token, issuing the two-step org and user
// tokens as needed. Safe to call eagerly; a fresh cached token short-circuits.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.token(ctx)
	return err
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.userToken != "" && c.now().Before(c.tokenExpiresAt.Add(-tokenSkew)) {
		return c.userToken, nil
	}

	if c.orgToken == "" {
		org, err := c.issueToken(ctx, "organization", map[string]string{
			"username": c.creds.Username,
			"password": c.creds.Password,
		}, "")
		if err != nil {
			return "", err
		}
		c.orgToken = org.AccessToken
		c.logger.Debug("organization token obtained", zap.String("environment", c.environment))
	}

	user, err := c.issueToken(ctx, "user", map[string]string{
		"username": c.creds.User,
	}, c.orgToken)
	if err != nil {
		// The cached org token may itself be stale; drop it so the next
		// attempt starts the handshake from scratch.
		c.orgToken = ""
		return "", err
	}

	ttl := defaultTokenTTL
	if user.ExpiresIn > 0 {
		ttl = time.Duration(user.ExpiresIn) * time.Second
	}

	c.userToken = user.AccessToken
	c.tokenExpiresAt = c.now().Add(ttl)

	c.logger.Debug("user token obtained",
		zap.String("environment", c.environment),
		zap.Duration("valid_for", ttl),
	)

	return c.userToken, nil
}

func (c *Client) issueToken(ctx context.Context, stage string, payload map[string]string, bearer string) (*tokenResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &AuthError{Environment: c.environment, Stage: stage, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/%s", c.AuthURL, stage), bytes.NewReader(body))
	if err != nil {
		return nil, &AuthError{Environment: c.environment, Stage: stage, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	metrics.UpstreamCalls.WithLabelValues("dat", "auth_"+stage).Inc()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &AuthError{Environment: c.environment, Stage: stage, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthError{Environment: c.environment, Stage: stage, Status: resp.StatusCode}
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, &AuthError{Environment: c.environment, Stage: stage, Err: fmt.Errorf("decoding token response: %w", err)}
	}
	if token.AccessToken == "" {
		return nil, &AuthError{Environment: c.environment, Stage: stage, Err: fmt.Errorf("empty access token")}
	}

	return &token, nil
}

func (c *Client) postJSON(ctx context.Context, op, url string, payload any, out any) (int, error) {
	token, err := c.token(ctx)
	if err != nil {
		return 0, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return 0, &SearchError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, &SearchError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	metrics.UpstreamCalls.WithLabelValues("dat", op).Inc()
	c.logger.Debug("dat request", zap.String("op", op), zap.String("url", url))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, &SearchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return resp.StatusCode, &SearchError{Op: op, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, &SearchError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return resp.StatusCode, nil
}

func (c *Client) getJSON(ctx context.Context, op, rawURL string, q url.Values, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &SearchError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	metrics.UpstreamCalls.WithLabelValues("dat", op).Inc()
	c.logger.Debug("dat request", zap.String("op", op), zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return &SearchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &SearchError{Op: op, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &SearchError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return nil
}
