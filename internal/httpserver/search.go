package httpserver

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/atelier-moda/fashion-shop/internal/logging"
	"github.com/atelier-moda/fashion-shop/internal/service/search"
	"github.com/atelier-moda/fashion-shop/internal/util"
)

type SearchHTTP struct {
	ES    *elasticsearch.Client
	Index string
}

// Search serves the storefront's fuzzy search. Falls back to 503 when the
// cluster is not wired.
func (h *SearchHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search")

	if h.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not available")
	}

	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := search.Search(ctx, h.ES, h.Index, query, offset, limit)
	if err != nil {
		l.Error("search_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, map[string]any{"data": items, "total": total})
}
