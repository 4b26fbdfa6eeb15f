// Package memory provides in-memory implementations of driven ports.
//
// The stores back the postgres driver's search index and scheduler state,
// config-less runs, and tests. Nothing survives a restart.
package memory
