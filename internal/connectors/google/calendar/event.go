package calendar

import (
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/arcadia-labs/daysync/internal/core/domain"
)

// dateOnly is the layout of all-day event boundaries.
const dateOnly = "2006-01-02"

// EventToDomain converts a Google Calendar event into the stored form.
func EventToDomain(event *calendar.Event, targetID, calendarID string) *domain.Event {
	start := parseEventTime(event.Start)
	end := parseEventTime(event.End)

	var updated time.Time
	if event.Updated != "" {
		if t, err := time.Parse(time.RFC3339, event.Updated); err == nil {
			updated = t
		}
	}

	return &domain.Event{
		TargetID:    targetID,
		ExternalID:  event.Id,
		CalendarID:  calendarID,
		Etag:        event.Etag,
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Status:      event.Status,
		StartTime:   start,
		EndTime:     end,
		HTMLLink:    event.HtmlLink,
		Updated:     updated,
	}
}

// parseEventTime extracts a timestamp from an event boundary.
// Timed events carry DateTime (RFC 3339); all-day events carry Date.
func parseEventTime(dt *calendar.EventDateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return t
		}
		return time.Time{}
	}
	if dt.Date != "" {
		if t, err := time.Parse(dateOnly, dt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ShouldSyncEvent checks if an event should be handed to the worker pool.
func ShouldSyncEvent(event *calendar.Event) bool {
	return event != nil && event.Id != ""
}
