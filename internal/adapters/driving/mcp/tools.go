package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query    string `json:"query" jsonschema:"the question to answer"`
	Language string `json:"language,omitempty" jsonschema:"answer language code, en or de (default en)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string   `json:"answer"`
	Source    string   `json:"source"`
	Programs  []string `json:"programs,omitempty"`
	ElapsedMS int64    `json:"elapsed_ms"`
}

// SearchInput is the input schema for the search_programs tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find degree programmes"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// SearchOutput is the output schema for the search_programs tool.
type SearchOutput struct {
	Results []ProgramResult `json:"results"`
	Count   int             `json:"count"`
}

// ProgramResult represents a single programme match.
type ProgramResult struct {
	Code        string  `json:"code"`
	Title       string  `json:"title"`
	DegreeLevel string  `json:"degree_level"`
	Language    string  `json:"language"`
	Score       float64 `json:"score"`
}

// CacheStatsInput is the (empty) input schema for the cache_stats tool.
type CacheStatsInput struct{}

// CacheStatsOutput is the output schema for the cache_stats tool.
type CacheStatsOutput struct {
	TotalQueries     int     `json:"total_queries"`
	Hits             int     `json:"cache_hits"`
	Misses           int     `json:"cache_misses"`
	HitRate          float64 `json:"hit_rate"`
	Size             int     `json:"cache_size"`
	MaxSize          int     `json:"max_cache_size"`
	SemanticMatching bool    `json:"semantic_matching_enabled"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question about the university's degree programmes",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_programs",
		Description: "Find degree programmes relevant to a query, with similarity scores",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "cache_stats",
		Description: "Report response cache counters and hit rate",
	}, s.handleCacheStats)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	language := input.Language
	if language == "" {
		language = "en"
	}

	answer, err := s.ports.Assistant.Ask(ctx, input.Query, language)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:    answer.Text,
		Source:    string(answer.Source),
		ElapsedMS: answer.Elapsed.Milliseconds(),
	}
	for i := range answer.Programs {
		output.Programs = append(output.Programs, answer.Programs[i].Code)
	}

	return nil, output, nil
}

// handleSearch handles the search_programs tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 5
	}

	results, err := s.ports.Search.Search(ctx, input.Query, limit, 0)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]ProgramResult, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = ProgramResult{
			Code:        results[i].Program.Code,
			Title:       results[i].Program.Title,
			DegreeLevel: results[i].Program.DegreeLevel,
			Language:    results[i].Program.LanguageOfInstruction,
			Score:       results[i].Score,
		}
	}

	return nil, output, nil
}

// handleCacheStats handles the cache_stats tool invocation.
func (s *Server) handleCacheStats(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ CacheStatsInput,
) (*mcp.CallToolResult, CacheStatsOutput, error) {
	if s.ports.CacheAdmin == nil {
		return nil, CacheStatsOutput{}, errors.New("cache administration not configured")
	}

	stats := s.ports.CacheAdmin.Stats()
	output := CacheStatsOutput{
		TotalQueries:     stats.TotalQueries,
		Hits:             stats.Hits,
		Misses:           stats.Misses,
		HitRate:          stats.HitRate(),
		Size:             stats.Size,
		MaxSize:          stats.MaxSize,
		SemanticMatching: stats.SemanticMatching,
	}

	return nil, output, nil
}
