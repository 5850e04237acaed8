package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Credential Errors.

	// ErrCredentialInactive indicates the credential has been disabled and
	// cannot be used until the user re-authenticates.
	ErrCredentialInactive = errors.New("credential inactive")

	// ErrCredentialRevoked indicates the provider permanently rejected the
	// refresh token (invalid_grant). The credential is flipped inactive and
	// the sync target is disabled until re-authentication.
	ErrCredentialRevoked = errors.New("credential permanently revoked")

	// ErrTokenRefreshFailed indicates a token refresh operation failed
	// for a reason other than revocation.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// Sync Errors.

	// ErrSyncInProgress indicates a sync is already running for the target.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrSyncInactive indicates the sync target has been disabled.
	ErrSyncInactive = errors.New("sync target inactive")

	// ErrRateLimited indicates the remote API rate limit was exceeded.
	// The run stops with its checkpoint preserved; the scheduler retries
	// on the next trigger.
	ErrRateLimited = errors.New("rate limited")

	// ErrCursorInvalid indicates the stored sync cursor is no longer
	// accepted by the remote API and a full sync is required.
	ErrCursorInvalid = errors.New("sync cursor invalidated")
)
