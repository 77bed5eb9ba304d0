package leadimport

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the wizard; the group must already require staff.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	imports := r.Group("/leads/import")
	{
		imports.POST("/upload", h.Upload)
		imports.POST("/mapping", h.SubmitMapping)
		imports.GET("/history", h.History)
	}
}
