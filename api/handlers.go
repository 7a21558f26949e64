package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charisk/newswire/internal/metrics"
	"github.com/charisk/newswire/internal/news"
	"github.com/charisk/newswire/services"
)

const maxRequestBodySize = 1 << 20 // 1 MiB

// API holds dependencies for API handlers, primarily the news service.
type API struct {
	news    *news.Service
	store   services.NewsStore
	metrics *metrics.Metrics
}

// NewAPI creates a new API handler structure.
func NewAPI(svc *news.Service, store services.NewsStore, m *metrics.Metrics) *API {
	return &API{
		news:    svc,
		store:   store,
		metrics: m,
	}
}

// SetupRoutes defines all the API routes for the news service.
func SetupRoutes(router *gin.Engine, svc *news.Service, store services.NewsStore, m *metrics.Metrics) {
	apiHandler := NewAPI(svc, store, m)

	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware())
	router.Use(MetricsMiddleware(m))
	router.Use(RequestSizeLimitMiddleware(maxRequestBodySize))

	// Health and observability routes
	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiRoutes := router.Group("/api")
	{
		// Search routes
		apiRoutes.GET("/search/all/:query", apiHandler.SearchAllHandler) // Ranked full search
		apiRoutes.GET("/search", apiHandler.SearchHandler)               // Ranked search with limit

		// Browse routes
		apiRoutes.GET("/recent/:lang", apiHandler.RecentHandler)                    // Latest items for a language
		apiRoutes.GET("/filter-by-language/:lang", apiHandler.FilterByLangHandler)  // All items for a language
		apiRoutes.GET("/filter", apiHandler.FilterHandler)                          // Combined field filters
		apiRoutes.GET("/get/:title", apiHandler.GetByTitleHandler)                  // Closest item by title
		apiRoutes.GET("/index/stats", apiHandler.GetIndexStatsHandler)              // Index size counters

		// Mutation routes
		newsRoutes := apiRoutes.Group("/news")
		{
			newsRoutes.POST("", apiHandler.CreateNewsHandler)       // Create a news item
			newsRoutes.GET("/:id", apiHandler.GetNewsHandler)       // Get a news item by ID
			newsRoutes.PUT("/:id", apiHandler.UpdateNewsHandler)    // Update a news item
			newsRoutes.DELETE("/:id", apiHandler.DeleteNewsHandler) // Delete a news item
		}
	}

	adminRoutes := router.Group("/admin")
	{
		adminRoutes.POST("/reindex", apiHandler.ReindexHandler) // Rebuild the index from the store
	}
}

// HealthCheckHandler reports liveness and whether the index is serving.
func (api *API) HealthCheckHandler(c *gin.Context) {
	status := "ok"
	if !api.news.Ready() {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      status,
		"index_ready": api.news.Ready(),
		"timestamp":   time.Now().UTC(),
	})
}

// GetIndexStatsHandler returns the index size counters.
func (api *API) GetIndexStatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.news.Stats())
}

// ReindexHandler rebuilds the index from the record store.
func (api *API) ReindexHandler(c *gin.Context) {
	if err := api.news.Rebuild(c.Request.Context()); err != nil {
		SendError(c, http.StatusInternalServerError, ErrorCodeReindexFailed,
			"Failed to rebuild index: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Index rebuilt successfully",
		"stats":   api.news.Stats(),
	})
}
