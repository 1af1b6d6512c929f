package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for advisor resources.
	uriScheme = "advisor://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing the programme corpus.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "programs",
		Name:        "programs",
		Description: "List of all degree programmes in the corpus",
		MIMEType:    "application/json",
	}, s.handleProgramsResource)

	// Template for a single programme record.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "programs/{code}",
		Name:        "program-record",
		Description: "Full record of a single degree programme",
		MIMEType:    "text/plain",
	}, s.handleProgramRecordResource)
}

// handleProgramsResource returns a summary of every indexed programme.
func (s *Server) handleProgramsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Catalog == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	programs := s.ports.Catalog.Programs()

	// Build simplified programme list.
	type programInfo struct {
		Code        string `json:"code"`
		Title       string `json:"title"`
		DegreeLevel string `json:"degree_level"`
		Language    string `json:"language"`
	}

	infos := make([]programInfo, len(programs))
	for i := range programs {
		infos[i] = programInfo{
			Code:        programs[i].Code,
			Title:       programs[i].Title,
			DegreeLevel: programs[i].DegreeLevel,
			Language:    programs[i].LanguageOfInstruction,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling programs: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleProgramRecordResource returns the rendered record of one programme.
func (s *Server) handleProgramRecordResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Catalog == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract code from URI: advisor://programs/{code}
	code := extractProgramCode(req.Params.URI)
	if code == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	program, err := s.ports.Catalog.ByCode(code)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     program.ContextString(),
		}},
	}, nil
}

// extractProgramCode extracts the programme code from a URI like
// advisor://programs/{code}.
func extractProgramCode(uri string) string {
	const prefix = uriScheme + "programs/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
