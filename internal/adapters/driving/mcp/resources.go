package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/coursesearch/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for coursesearch resources.
	uriScheme = "coursesearch://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing facets.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "facets",
		Name:        "facets",
		Description: "Facet filters available for course search, custom fields included",
		MIMEType:    "application/json",
	}, s.handleFacetsResource)

	// Template for the candidates of one facet.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "facets/{facet}",
		Name:        "facet-candidates",
		Description: "Values a facet filter can take when nothing else is selected",
		MIMEType:    "application/json",
	}, s.handleFacetCandidatesResource)
}

// facetInfo describes one facet.
type facetInfo struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Shortname   string `json:"shortname,omitempty"`
	Description string `json:"description,omitempty"`
}

// handleFacetsResource returns every facet of a fresh session.
func (s *Server) handleFacetsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	search, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	defer search.Close()

	state := search.State()
	fields := make(map[int]domain.CustomField, len(state.CustomFields))
	for _, f := range state.CustomFields {
		fields[f.ID] = f
	}

	infos := make([]facetInfo, len(state.Dropdowns))
	for i, status := range state.Dropdowns {
		key := status.Facet.Key
		infos[i] = facetInfo{Key: key.String(), Title: status.Title}
		if f, ok := fields[key.FieldID]; ok && key.Kind == domain.FacetCustomField {
			infos[i].Shortname = f.Shortname
			infos[i].Description = f.Description
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// handleFacetCandidatesResource returns the candidates of one facet.
func (s *Server) handleFacetCandidatesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract the facet key from URI: coursesearch://facets/{facet}
	raw := extractFacetKey(req.Params.URI)
	if raw == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	key, err := domain.ParseFacetKey(raw)
	if err != nil || key.Kind == domain.FacetText {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	search, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	defer search.Close()

	status, err := candidates(ctx, search, key, "")
	if err != nil {
		return nil, fmt.Errorf("loading %s candidates: %w", key, err)
	}
	return jsonResource(req.Params.URI, facetOutput(status))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractFacetKey extracts the facet key from a URI like coursesearch://facets/{facet}.
func extractFacetKey(uri string) string {
	const prefix = uriScheme + "facets/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
