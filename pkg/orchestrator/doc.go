// Package orchestrator wires the manifest loader, parser, generator and
// renderer stages behind a single entry point.
package orchestrator
