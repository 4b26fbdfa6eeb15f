// Package connectors holds the driven.LayerSource implementations that
// supply raw layer text for ingestion. Each subpackage reads layers from
// one kind of origin (a GitHub repository, a local directory).
package connectors
