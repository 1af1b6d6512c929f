// Package mcp provides an MCP (Model Context Protocol) server adapter for the
// advisor. It lets AI assistants ask questions about the programme corpus and
// inspect the response cache.
package mcp

import "errors"

// ErrMissingAssistant is returned when the assistant service is not provided.
var ErrMissingAssistant = errors.New("mcp: assistant service is required")

// ErrMissingSearch is returned when the retrieval service is not provided.
var ErrMissingSearch = errors.New("mcp: search service is required")
