// Package memory provides in-memory implementations of the storage ports.
// Used by tests and for ephemeral development setups.
package memory
