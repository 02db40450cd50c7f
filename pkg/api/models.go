package api

import (
	"bookworm/pkg/graph"
	"bookworm/pkg/query"
)

// BookJSON is one book in a response.
type BookJSON struct {
	ID          uint64 `json:"id"`
	AuthorID    uint64 `json:"author_id"`
	PublisherID uint64 `json:"publisher_id"`
	Index       uint32 `json:"index"`
}

// ResultResponse wraps the ordered books of a query.
type ResultResponse struct {
	Count int        `json:"count"`
	Books []BookJSON `json:"books"`
}

// PathRequest is the JSON body for POST /api/v1/path. Pointers let a zero id
// through the required check.
type PathRequest struct {
	From      *uint64  `json:"from" binding:"required"`
	To        *uint64  `json:"to" binding:"required"`
	Relations []string `json:"relations" binding:"omitempty,max=4,dive,oneof=author citation publisher all"`
}

// bookURI binds the :id path segment.
type bookURI struct {
	ID uint64 `uri:"id"`
}

// withinQuery binds ?k= for the k-distance route.
type withinQuery struct {
	K *uint16 `form:"k" binding:"required"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumBooks         int    `json:"num_books"`
	AuthorEdges      int    `json:"author_edges"`
	CitationEdges    int    `json:"citation_edges"`
	PublisherEdges   int    `json:"publisher_edges"`
	DuplicateIDs     int    `json:"duplicate_ids"`
	Components       int    `json:"components,omitempty"`
	LargestComponent int    `json:"largest_component,omitempty"`
	SearchStrategy   string `json:"search_strategy,omitempty"`
}

// NewStats fills a StatsResponse from build stats and optional components.
func NewStats(s *graph.Store, c *graph.Components, strategy string) StatsResponse {
	st := s.Stats()
	resp := StatsResponse{
		NumBooks:       st.NumBooks,
		AuthorEdges:    st.AuthorEdges,
		CitationEdges:  st.CitationEdges,
		PublisherEdges: st.PublisherEdges,
		DuplicateIDs:   st.DuplicateIDs,
		SearchStrategy: strategy,
	}
	if c != nil {
		resp.Components = c.Count()
		_, resp.LargestComponent = c.Largest()
	}
	return resp
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}

// NewResultResponse converts a query result to its JSON form.
func NewResultResponse(r *query.Result) ResultResponse {
	resp := ResultResponse{Count: r.Len(), Books: make([]BookJSON, r.Len())}
	for i, b := range r.Books {
		resp.Books[i] = BookJSON{
			ID:          b.ID,
			AuthorID:    b.AuthorID,
			PublisherID: b.PublisherID,
			Index:       uint32(b.Index),
		}
	}
	return resp
}
