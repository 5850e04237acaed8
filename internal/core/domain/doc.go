// Package domain contains the core business entities for daysync.
// Domain types have no dependencies on infrastructure or external APIs.
package domain
