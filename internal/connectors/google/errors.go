package google

import (
	"errors"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/arcadia-labs/daysync/internal/core/domain"
)

// Common Google API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("google: unauthorised (invalid credentials)")

	// ErrForbidden indicates insufficient permissions.
	ErrForbidden = errors.New("google: forbidden (insufficient permissions)")

	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("google: resource not found")
)

// invalidGrant is the OAuth error code for a permanently revoked or
// expired refresh token.
const invalidGrant = "invalid_grant"

// IsRateLimited returns true if the error indicates rate limiting.
// Google reports 429, and for some quota classes 403 with a quota reason.
func IsRateLimited(err error) bool {
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	if gerr.Code == http.StatusTooManyRequests {
		return true
	}
	if gerr.Code == http.StatusForbidden {
		for _, e := range gerr.Errors {
			if e.Reason == "rateLimitExceeded" || e.Reason == "userRateLimitExceeded" {
				return true
			}
		}
	}
	return false
}

// IsSyncTokenExpired returns true if the error indicates an expired sync
// token (410 GONE). The client must discard the cursor and perform a full
// resync.
func IsSyncTokenExpired(err error) bool {
	if errors.Is(err, domain.ErrCursorInvalid) {
		return true
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusGone
	}
	return false
}

// IsInvalidGrant returns true if the error chain contains an OAuth token
// endpoint response reporting invalid_grant. This means the refresh token
// has been revoked or expired and re-authentication is required.
func IsInvalidGrant(err error) bool {
	var rerr *oauth2.RetrieveError
	if !errors.As(err, &rerr) {
		return false
	}
	return rerr.ErrorCode == invalidGrant
}

// WrapError converts a Google API error into the domain error the sync
// engine classifies on. Errors that carry no classifiable signal are
// returned unchanged.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsInvalidGrant(err) {
		return domain.ErrCredentialRevoked
	}
	if IsRateLimited(err) {
		return domain.ErrRateLimited
	}
	if IsSyncTokenExpired(err) {
		return domain.ErrCursorInvalid
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	switch gerr.Code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return err
	}
}
