// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - CollectionClient: Lists pages of events from the remote calendar API
//   - CredentialsStore: OAuth credential persistence
//   - SyncStateStore: Sync progress persistence
//   - EventStore: Local event persistence (idempotent upserts)
//   - SchedulerStore: Scheduled task persistence
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
