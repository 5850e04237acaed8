package calendar

import (
	"context"
	"fmt"

	"github.com/arcadia-labs/daysync/internal/connectors/google"
	"github.com/arcadia-labs/daysync/internal/core/domain"
	"github.com/arcadia-labs/daysync/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.CollectionClientFactory = (*Factory)(nil)

// Factory builds authorised calendar clients for sync targets.
// One shared rate limiter covers every client it creates, since Google
// quotas apply per application, not per target.
type Factory struct {
	refresher *google.CredentialRefresher
	limiter   *google.RateLimiter
	cfg       *Config
}

// NewFactory creates a client factory. cfg supplies listing defaults;
// the per-target calendar ID comes from the sync state at Create time.
func NewFactory(refresher *google.CredentialRefresher, cfg *Config) *Factory {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Factory{
		refresher: refresher,
		limiter:   google.NewRateLimiter(google.DefaultCalendarRateLimit),
		cfg:       cfg,
	}
}

// Create builds a CollectionClient for the target. The token source is
// validated eagerly, so an inactive or revoked credential fails here with
// the corresponding domain error.
func (f *Factory) Create(ctx context.Context, state domain.SyncState) (driven.CollectionClient, error) {
	ts, err := f.refresher.TokenSource(ctx, state.CredentialID)
	if err != nil {
		return nil, err
	}
	if _, err := ts.Token(); err != nil {
		return nil, err
	}

	svc, err := google.NewCalendarService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	cfg := *f.cfg
	if state.CalendarID != "" {
		cfg.CalendarID = state.CalendarID
	}
	return NewClient(svc, &cfg, state.TargetID, f.limiter), nil
}
