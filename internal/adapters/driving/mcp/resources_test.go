package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusware/advisor/internal/core/domain"
)

func newResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	}
}

func TestServer_handleProgramsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists the corpus as JSON", func(t *testing.T) {
		catalog := &mockCatalog{
			programs: []domain.Program{
				{Code: "bsc_ai", Title: "Artificial Intelligence (B.Sc.)", DegreeLevel: "bachelor", LanguageOfInstruction: "en"},
				{Code: "ba_bwl", Title: "Betriebswirtschaft (B.A.)", DegreeLevel: "bachelor", LanguageOfInstruction: "de"},
			},
		}

		ports := &Ports{Assistant: &mockAssistant{}, Search: &mockSearch{}, Catalog: catalog}
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleProgramsResource(ctx, newResourceRequest(uriScheme+"programs"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, `"bsc_ai"`)
		assert.Contains(t, result.Contents[0].Text, `"ba_bwl"`)
	})

	t.Run("empty list without a catalog", func(t *testing.T) {
		ports := &Ports{Assistant: &mockAssistant{}, Search: &mockSearch{}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		result, err := server.handleProgramsResource(ctx, newResourceRequest(uriScheme+"programs"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})
}

func TestServer_handleProgramRecordResource(t *testing.T) {
	ctx := context.Background()

	catalog := &mockCatalog{
		programs: []domain.Program{
			{Code: "bsc_ai", Title: "Artificial Intelligence (B.Sc.)", DegreeLevel: "bachelor", LanguageOfInstruction: "en"},
		},
	}

	ports := &Ports{Assistant: &mockAssistant{}, Search: &mockSearch{}, Catalog: catalog}
	server, err := NewServer(ports)
	require.NoError(t, err)

	t.Run("renders a known programme", func(t *testing.T) {
		result, err := server.handleProgramRecordResource(ctx, newResourceRequest(uriScheme+"programs/bsc_ai"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "Artificial Intelligence (B.Sc.)")
	})

	t.Run("unknown code is not found", func(t *testing.T) {
		_, err := server.handleProgramRecordResource(ctx, newResourceRequest(uriScheme+"programs/nope"))
		assert.Error(t, err)
	})
}

func TestExtractProgramCode(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{uriScheme + "programs/bsc_ai", "bsc_ai"},
		{uriScheme + "programs/", ""},
		{uriScheme + "sessions/abc", ""},
		{"http://example.com/programs/x", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractProgramCode(tt.uri), tt.uri)
	}
}
