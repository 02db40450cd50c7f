package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"bookworm/pkg/graph"
	"bookworm/pkg/query"
)

// Querier is the query surface the handlers need. *query.Engine implements it.
type Querier interface {
	FindBook(ctx context.Context, id uint64) *query.Result
	FindBooksByAuthor(ctx context.Context, authorID uint64) *query.Result
	FindBooksReprinted(ctx context.Context, publisherID uint64) *query.Result
	FindBooksKDistance(ctx context.Context, id uint64, k uint16) *query.Result
	FindShortestPath(ctx context.Context, a, b uint64, rel graph.Relation) *query.Result
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	q     Querier
	stats StatsResponse

	// Identical traversal requests in flight share one computation.
	flight singleflight.Group
}

// NewHandlers creates handlers backed by q.
func NewHandlers(q Querier, stats StatsResponse) *Handlers {
	return &Handlers{
		q:     q,
		stats: stats,
	}
}

// HandleBook handles GET /api/v1/books/:id.
func (h *Handlers) HandleBook(c *gin.Context) {
	var uri bookURI
	if err := c.ShouldBindUri(&uri); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "id")
		return
	}
	r := h.q.FindBook(c.Request.Context(), uri.ID)
	if r.Len() == 0 {
		writeError(c, http.StatusNotFound, "book_not_found", "id")
		return
	}
	c.JSON(http.StatusOK, NewResultResponse(r))
}

// HandleAuthorBooks handles GET /api/v1/authors/:id/books.
func (h *Handlers) HandleAuthorBooks(c *gin.Context) {
	var uri bookURI
	if err := c.ShouldBindUri(&uri); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "id")
		return
	}
	c.JSON(http.StatusOK, NewResultResponse(h.q.FindBooksByAuthor(c.Request.Context(), uri.ID)))
}

// HandleReprints handles GET /api/v1/publishers/:id/reprints.
func (h *Handlers) HandleReprints(c *gin.Context) {
	var uri bookURI
	if err := c.ShouldBindUri(&uri); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "id")
		return
	}
	c.JSON(http.StatusOK, NewResultResponse(h.q.FindBooksReprinted(c.Request.Context(), uri.ID)))
}

// HandleWithin handles GET /api/v1/books/:id/within?k=N.
func (h *Handlers) HandleWithin(c *gin.Context) {
	var uri bookURI
	if err := c.ShouldBindUri(&uri); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "id")
		return
	}
	var qry withinQuery
	if err := c.ShouldBindQuery(&qry); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_parameter", "k")
		return
	}

	ctx := c.Request.Context()
	key := fmt.Sprintf("within:%d:%d", uri.ID, *qry.K)
	v, _, _ := h.flight.Do(key, func() (any, error) {
		return h.q.FindBooksKDistance(ctx, uri.ID, *qry.K), nil
	})
	c.JSON(http.StatusOK, NewResultResponse(v.(*query.Result)))
}

// HandlePath handles POST /api/v1/path.
func (h *Handlers) HandlePath(c *gin.Context) {
	if c.ContentType() != "application/json" {
		writeError(c, http.StatusBadRequest, "invalid_request", "")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 1024)

	var req PathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", invalidField(err))
		return
	}
	rel, err := relationsOf(req.Relations)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", "relations")
		return
	}

	ctx := c.Request.Context()
	key := fmt.Sprintf("path:%d:%d:%d", *req.From, *req.To, rel)
	v, _, _ := h.flight.Do(key, func() (any, error) {
		return h.q.FindShortestPath(ctx, *req.From, *req.To, rel), nil
	})
	c.JSON(http.StatusOK, NewResultResponse(v.(*query.Result)))
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.stats)
}

// relationsOf unions relation names; none means all relations.
func relationsOf(names []string) (graph.Relation, error) {
	if len(names) == 0 {
		return graph.RelAll, nil
	}
	var rel graph.Relation
	for _, name := range names {
		r, err := graph.ParseRelation(name)
		if err != nil {
			return 0, err
		}
		rel |= r
	}
	return rel, nil
}

// invalidField names the first field that failed validation, if any.
func invalidField(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return strings.ToLower(verrs[0].Field())
	}
	return ""
}

func writeError(c *gin.Context, status int, code, field string) {
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "status", status, "error", code)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Field: field})
}
