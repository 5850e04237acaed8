package services

import (
	"context"
	"errors"

	"github.com/arcadia-labs/daysync/internal/core/domain"
)

// recoveryAction is the recovery strategy a run error maps to.
// Each action leaves different state behind for the next scheduled run.
type recoveryAction int

const (
	// actionComplete: run finished normally.
	actionComplete recoveryAction = iota
	// actionRateLimited: preserve the checkpoint, stop; the scheduler
	// retries on its next trigger, never immediately.
	actionRateLimited
	// actionCursorInvalid: the stored cursor is too old; clear cursor and
	// checkpoint and rerun once in full mode within the same invocation.
	actionCursorInvalid
	// actionCredentialRevoked: disable the target until re-authentication.
	actionCredentialRevoked
	// actionCancelled: graceful shutdown; persist the checkpoint and leave
	// InProgress set so the next run resumes instead of restarting cold.
	actionCancelled
	// actionFailed: hard failure; preserve the best-known checkpoint.
	actionFailed
)

// classifyRunError maps a run error onto its recovery action.
// The run timeout surfaces as a cancellation, not a distinct kind.
func classifyRunError(err error) recoveryAction {
	switch {
	case err == nil:
		return actionComplete
	case errors.Is(err, domain.ErrCredentialRevoked),
		errors.Is(err, domain.ErrCredentialInactive):
		return actionCredentialRevoked
	case errors.Is(err, domain.ErrRateLimited):
		return actionRateLimited
	case errors.Is(err, domain.ErrCursorInvalid):
		return actionCursorInvalid
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return actionCancelled
	default:
		return actionFailed
	}
}
