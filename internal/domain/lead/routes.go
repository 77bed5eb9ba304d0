package lead

import "github.com/gin-gonic/gin"

// RegisterRoutes registers lead routes under the authenticated group.
func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	leads := r.Group("/leads")
	{
		leads.GET("", handler.ListLeads)
		leads.POST("", handler.CreateLead)
		leads.GET("/:id", handler.GetLead)
		leads.PUT("/:id", handler.UpdateLead)
		leads.DELETE("/:id", handler.DeleteLead)
		leads.POST("/:id/comments", handler.AddComment)
		leads.GET("/:id/comments", handler.ListComments)
	}
}
