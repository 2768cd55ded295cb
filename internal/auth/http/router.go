package http

import "github.com/gin-gonic/gin"

// Register mounts the auth routes. requireAuth guards the profile route only.
func (h *Handler) Register(rg *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	rg.POST("/register", h.RegisterUser)
	rg.POST("/login", h.Login)
	rg.GET("/user", requireAuth, h.GetUser)
}
