package calendar

// Config holds Google Calendar client configuration.
type Config struct {
	// CalendarID is the calendar to sync. "primary" for the account default.
	CalendarID string
	// MaxResults is the page size for API requests.
	MaxResults int64
	// ShowDeleted includes cancelled events. Required for incremental sync
	// to detect deletions.
	ShowDeleted bool
	// SingleEvents expands recurring events into instances.
	SingleEvents bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		CalendarID:   "primary",
		MaxResults:   250,
		ShowDeleted:  true,
		SingleEvents: true,
	}
}
