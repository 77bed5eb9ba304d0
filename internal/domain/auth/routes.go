package auth

import "github.com/gin-gonic/gin"

// RegisterPublicRoutes registers unauthenticated auth routes.
func RegisterPublicRoutes(r *gin.RouterGroup, h *Handler) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

// RegisterProtectedRoutes registers routes behind JWTAuth.
func RegisterProtectedRoutes(r *gin.RouterGroup, h *Handler) {
	users := r.Group("/users")
	{
		users.GET("/me", h.GetMe)
		users.GET("", h.ListUsers)
	}
}
