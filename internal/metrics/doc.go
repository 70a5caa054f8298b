// Package metrics registers and records the forum's Prometheus metrics.
package metrics
