// Package services implements the core sync engine: the run orchestrator,
// its worker pool, run-error classification, the run registry, and the
// background scheduler. Services depend only on domain types and ports.
package services
