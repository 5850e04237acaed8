package calendar

import (
	"context"
	"fmt"
	"time"

	calapi "google.golang.org/api/calendar/v3"

	"github.com/arcadia-labs/daysync/internal/connectors/google"
	"github.com/arcadia-labs/daysync/internal/core/ports/driven"
	"github.com/arcadia-labs/daysync/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.CollectionClient = (*Client)(nil)

// Client lists event pages from one Google calendar.
type Client struct {
	svc      *calapi.Service
	cfg      *Config
	targetID string
	limiter  *google.RateLimiter
}

// NewClient creates a client for one sync target's calendar.
func NewClient(svc *calapi.Service, cfg *Config, targetID string, limiter *google.RateLimiter) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if limiter == nil {
		limiter = google.NewRateLimiter(google.DefaultCalendarRateLimit)
	}
	return &Client{
		svc:      svc,
		cfg:      cfg,
		targetID: targetID,
		limiter:  limiter,
	}
}

// ListPage fetches a single page of events.
// Cursor mode uses the API's syncToken; window mode bounds the listing with
// timeMin/timeMax. The API rejects a request carrying both.
func (c *Client) ListPage(ctx context.Context, req driven.PageRequest) (*driven.Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	call := c.svc.Events.List(c.cfg.CalendarID).
		ShowDeleted(c.cfg.ShowDeleted).
		SingleEvents(c.cfg.SingleEvents)

	if req.MaxResults > 0 {
		call = call.MaxResults(req.MaxResults)
	} else {
		call = call.MaxResults(c.cfg.MaxResults)
	}

	if req.Cursor != "" {
		call = call.SyncToken(req.Cursor)
	} else {
		if !req.TimeMin.IsZero() {
			call = call.TimeMin(req.TimeMin.Format(time.RFC3339))
		}
		if !req.TimeMax.IsZero() {
			call = call.TimeMax(req.TimeMax.Format(time.RFC3339))
		}
	}
	if req.PageToken != "" {
		call = call.PageToken(req.PageToken)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		if google.IsRateLimited(err) {
			c.limiter.RecordRateLimitError(0)
		}
		return nil, fmt.Errorf("list events: %w", google.WrapError(err))
	}

	page := &driven.Page{
		NextPageToken: resp.NextPageToken,
		NextCursor:    resp.NextSyncToken,
	}
	for _, item := range resp.Items {
		if !ShouldSyncEvent(item) {
			continue
		}
		page.Events = append(page.Events, *EventToDomain(item, c.targetID, c.cfg.CalendarID))
	}

	logger.Debug("calendar page: %d events, next_page=%t, cursor=%t",
		len(page.Events), page.NextPageToken != "", page.NextCursor != "")
	return page, nil
}
