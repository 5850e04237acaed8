package driven

import (
	"context"
	"time"

	"github.com/arcadia-labs/daysync/internal/core/domain"
)

// PageRequest selects one page of events from the remote collection.
// Exactly one of the two modes applies: cursor mode when Cursor is set,
// time-window mode otherwise. PageToken continues a paginated listing
// within either mode.
type PageRequest struct {
	// Cursor is the opaque incremental-sync token. When set, TimeMin and
	// TimeMax are ignored; the remote API decides what changed.
	Cursor string

	// TimeMin and TimeMax bound a full-sync window. Only consulted when
	// Cursor is empty.
	TimeMin time.Time
	TimeMax time.Time

	// PageToken is the continuation token from the previous page.
	// Empty for the first page.
	PageToken string

	// MaxResults is the page size. Zero means the client default.
	MaxResults int64
}

// Page is one page of a remote listing.
type Page struct {
	// Events are the fetched records, already mapped into domain form.
	Events []domain.Event

	// NextPageToken continues the listing. Empty on the final page.
	NextPageToken string

	// NextCursor is the fresh incremental-sync token. The remote API only
	// hands it back on the final page of a listing; an empty final page
	// still carries one and it must be persisted.
	NextCursor string
}

// CollectionClient lists pages of events from the remote calendar API.
// Implementations map transport failures onto the classifiable domain
// errors: domain.ErrRateLimited and domain.ErrCursorInvalid.
type CollectionClient interface {
	// ListPage fetches a single page. Pages must be requested in order;
	// each continuation token depends on the previous page.
	ListPage(ctx context.Context, req PageRequest) (*Page, error)
}
