// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - LayerStore: Raw layer text persistence (SQLite or PostgreSQL)
//   - SearchIndex: Ranked search over compact definitions (SQLite FTS5)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LayerSource: Schema repository to ingest new layers from. Without it,
//     only layers already in the store are served.
//   - LayerWatcher: Push notifications for a LayerSource.
//   - SchedulerStore: Scheduler state. Without it, periodic ingestion is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
