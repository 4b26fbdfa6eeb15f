// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Registry and History engine are built once at startup and are
// read-only afterwards, so queries need no locking.
package services
