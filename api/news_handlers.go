package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/charisk/newswire/internal/errors"
	"github.com/charisk/newswire/model"
	"github.com/charisk/newswire/services"
)

// newsRequest is the mutation payload. The ID comes from the path on
// updates and from the store on creates.
type newsRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Credit      string `json:"credit"`
	Reporter    string `json:"reporter"`
	Language    string `json:"language"`
	Region      string `json:"region"`
	Category    string `json:"category"`
	MessageID   int64  `json:"message_id"`
}

func (r *newsRequest) toModel() model.News {
	return model.News{
		Title:       r.Title,
		Description: r.Description,
		ImageURL:    r.ImageURL,
		Credit:      r.Credit,
		Reporter:    r.Reporter,
		Language:    r.Language,
		Region:      model.ParseRegion(r.Region),
		Category:    r.Category,
		MessageID:   r.MessageID,
	}
}

// CreateNewsHandler handles POST /api/news.
func (api *API) CreateNewsHandler(c *gin.Context) {
	var req newsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	n := req.toModel()
	if err := api.news.Create(c.Request.Context(), &n); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicateNews):
			SendError(c, http.StatusConflict, ErrorCodeDuplicateNews, err.Error())
		case errors.Is(err, apperrors.ErrInvalidInput):
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, err.Error())
		default:
			SendInternalError(c, "Failed to create news: "+err.Error())
		}
		return
	}
	c.JSON(http.StatusCreated, n)
}

// GetNewsHandler handles GET /api/news/:id.
func (api *API) GetNewsHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	n, err := api.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNewsNotFound) {
			SendNewsNotFoundError(c, err.Error())
			return
		}
		SendInternalError(c, "Failed to fetch news: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, n)
}

// UpdateNewsHandler handles PUT /api/news/:id.
func (api *API) UpdateNewsHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req newsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "Invalid request body: "+err.Error())
		return
	}

	n := req.toModel()
	n.ID = id
	if err := api.news.Update(c.Request.Context(), n); err != nil {
		if errors.Is(err, apperrors.ErrNewsNotFound) {
			SendNewsNotFoundError(c, err.Error())
			return
		}
		SendInternalError(c, "Failed to update news: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, n)
}

// DeleteNewsHandler handles DELETE /api/news/:id.
func (api *API) DeleteNewsHandler(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := api.news.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, apperrors.ErrNewsNotFound) {
			SendNewsNotFoundError(c, err.Error())
			return
		}
		SendInternalError(c, "Failed to delete news: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "News item deleted", "id": id})
}

// RecentHandler handles GET /api/recent/:lang, returning the newest items
// for a language.
func (api *API) RecentHandler(c *gin.Context) {
	lang := c.Param("lang")

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest,
				"Parameter 'limit' must be a positive integer")
			return
		}
		limit = parsed
	}

	items, err := api.store.RecentByLanguage(c.Request.Context(), lang, limit)
	if err != nil {
		SendInternalError(c, "Failed to fetch recent news: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": items, "total": len(items)})
}

// FilterByLangHandler handles GET /api/filter-by-language/:lang.
func (api *API) FilterByLangHandler(c *gin.Context) {
	items, err := api.store.FilterByLanguage(c.Request.Context(), c.Param("lang"))
	if err != nil {
		SendInternalError(c, "Failed to filter news: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": items, "total": len(items)})
}

// FilterHandler handles GET /api/filter with combined field filters.
func (api *API) FilterHandler(c *gin.Context) {
	filter := services.NewsFilter{
		Topic:    c.Query("topic"),
		Nation:   c.Query("nation"),
		Author:   c.Query("author"),
		Language: c.Query("lang"),
		Category: c.Query("category"),
	}
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest,
				"Parameter 'limit' must be a positive integer")
			return
		}
		filter.Limit = parsed
	}

	items, err := api.store.Filter(c.Request.Context(), filter)
	if err != nil {
		SendInternalError(c, "Failed to filter news: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": items, "total": len(items)})
}

// GetByTitleHandler handles GET /api/get/:title, resolving the item whose
// title matches the given text most closely.
func (api *API) GetByTitleHandler(c *gin.Context) {
	title := strings.TrimSpace(c.Param("title"))
	if title == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest, "Title is required")
		return
	}

	candidates, err := api.store.SearchCandidates(c.Request.Context(), title)
	if err != nil {
		SendInternalError(c, "Failed to fetch news: "+err.Error())
		return
	}
	for _, n := range candidates {
		if strings.EqualFold(n.Title, title) {
			c.JSON(http.StatusOK, n)
			return
		}
	}
	if len(candidates) > 0 {
		c.JSON(http.StatusOK, candidates[0])
		return
	}
	SendNewsNotFoundError(c, "No news item matching title '"+title+"'")
}

func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidRequest,
			"Parameter 'id' must be a positive integer")
		return 0, false
	}
	return id, true
}
