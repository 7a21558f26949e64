package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// SearchAllHandler handles GET /api/search/all/:query and returns the full
// ranked result set for the query, up to the configured maximum.
func (api *API) SearchAllHandler(c *gin.Context) {
	query := strings.TrimSpace(c.Param("query"))
	if query == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Search query is required")
		return
	}

	result, err := api.news.SearchAll(c.Request.Context(), query)
	if err != nil {
		SendError(c, http.StatusInternalServerError, ErrorCodeSearchFailed,
			"Search failed: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchHandler handles GET /api/search?q=...&limit=N.
func (api *API) SearchHandler(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Query parameter 'q' is required")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest,
				"Parameter 'limit' must be a non-negative integer")
			return
		}
		limit = parsed
	}

	result, err := api.news.Search(c.Request.Context(), query, limit)
	if err != nil {
		SendError(c, http.StatusInternalServerError, ErrorCodeSearchFailed,
			"Search failed: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}
