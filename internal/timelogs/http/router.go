package http

import "github.com/gin-gonic/gin"

// Register attaches time log routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/start", h.start)
	rg.POST("/stop", h.stop)
	rg.GET("/current", h.current)
	rg.GET("/stream", h.stream)
	rg.GET("/export", h.exportDownload)
	rg.POST("/export/archive", h.exportArchive)

	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}
