// Package google provides shared infrastructure for Google API access:
// OAuth token management with transparent refresh and rotation persistence,
// API error classification, and client-side rate limiting.
package google
