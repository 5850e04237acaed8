package domain

import "time"

// Event is one calendar event fetched from the remote API, in the shape the
// local store persists. Upserts are keyed by (TargetID, ExternalID) so that
// re-processing the same event after a crash is idempotent.
type Event struct {
	// TargetID identifies the sync target that owns this event.
	TargetID string `json:"target_id"`

	// ExternalID is the remote API's event identifier.
	ExternalID string `json:"external_id"`

	// CalendarID is the remote calendar the event belongs to.
	CalendarID string `json:"calendar_id"`

	// Etag is the remote version marker for the event.
	Etag string `json:"etag,omitempty"`

	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`

	// Status is the remote event status (confirmed, tentative, cancelled).
	Status string `json:"status,omitempty"`

	// StartTime orders events for full-sync checkpointing.
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`

	// HTMLLink is the event's web URL at the provider.
	HTMLLink string `json:"html_link,omitempty"`

	// Updated is the remote last-modification time.
	Updated time.Time `json:"updated,omitempty"`
}

// IsCancelled returns true for events the remote has deleted. Incremental
// sync surfaces these so the local copy can be removed.
func (e *Event) IsCancelled() bool {
	return e.Status == "cancelled"
}
