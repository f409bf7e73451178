package gtm

import (
	"sync"

	"go.uber.org/zap"

	"github.com/kayaan/driver-gtm/internal/cities"
	"github.com/kayaan/driver-gtm/internal/dat"
	"github.com/kayaan/driver-gtm/internal/fleet"
	"github.com/kayaan/driver-gtm/internal/scoring"
)

// Provider hands out per-environment pipeline services. The staging service
// is built once from the configured credentials; production services are
// built per call from caller-supplied credentials and never cached. Both
// share one fleet resolver so registry lookups are cached process-wide.
type Provider struct {
	logger       *zap.Logger
	cities       *cities.DB
	params       scoring.Params
	resolver     *fleet.Resolver
	stagingCreds dat.Credentials

	mu      sync.Mutex
	staging *Service
}

func NewProvider(logger *zap.Logger, db *cities.DB, params scoring.Params, resolver *fleet.Resolver, stagingCreds dat.Credentials) *Provider {
	return &Provider{
		logger:       logger,
		cities:       db,
		params:       params,
		resolver:     resolver,
		stagingCreds: stagingCreds,
	}
}

// Service returns the pipeline for an environment. Production requires
// complete credentials on every call.
func (p *Provider) Service(environment string, creds dat.Credentials) (*Service, error) {
	if environment == dat.EnvProduction {
		if creds.Username == "" || creds.Password == "" || creds.User == "" {
			return nil, &ValidationError{
				Field:  "credentials",
				Reason: "production requests require username, password and user",
			}
		}
		client := dat.New(p.logger, creds, dat.EnvProduction)
		return NewService(p.logger, client, p.resolver, p.cities, p.params), nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.staging == nil {
		client := dat.New(p.logger, p.stagingCreds, dat.EnvStaging)
		p.staging = NewService(p.logger, client, p.resolver, p.cities, p.params)
	}
	return p.staging, nil
}
