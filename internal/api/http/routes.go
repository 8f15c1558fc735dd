package http

import (
	"github.com/gin-gonic/gin"
)

// Register mounts every route on router.
func (h *Handlers) Register(router gin.IRoutes) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	// Share browsing
	router.GET("/api/folders", h.ListFolder)
	router.GET("/api/files/content", h.FileContent)
	router.GET("/api/files/text", h.FileText)
	router.GET("/api/files/metadata", h.FileMetadata)
	router.GET("/api/snapshots", h.ListSnapshots)
	router.GET("/api/search", h.Search)

	// Tool registry
	router.GET("/services", h.ListServices)
	router.GET("/services/discover", h.DiscoverServices)
	router.POST("/services/execute", h.ExecuteService)
}
