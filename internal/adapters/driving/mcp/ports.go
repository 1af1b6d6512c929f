package mcp

import (
	"github.com/campusware/advisor/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Assistant answers questions about the programme corpus.
	Assistant driving.Assistant

	// Search provides retrieval without generation.
	Search driving.ProgramSearch

	// Catalog exposes the loaded corpus for resources.
	Catalog driving.ProgramCatalog

	// CacheAdmin exposes response-cache counters and housekeeping.
	CacheAdmin driving.CacheAdmin
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	if p.Search == nil {
		return ErrMissingSearch
	}
	// Catalog and CacheAdmin are optional; the matching resources and
	// tools degrade when absent.
	return nil
}
