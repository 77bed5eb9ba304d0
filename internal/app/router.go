package app

import (
	"net/http"

	"leadcrm/internal/domain/auth"
	"leadcrm/internal/domain/lead"
	"leadcrm/internal/domain/leadimport"
	"leadcrm/internal/middleware"

	"github.com/gin-gonic/gin"
)

// Router builds the HTTP API.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = a.Config.Import.MaxUploadBytes
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.ErrorLogger(),
		middleware.CORS(a.Config.CORSAllowedOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandler := auth.NewHandler(a.Auth)
	leadHandler := lead.NewHandler(a.Lead)
	importHandler := leadimport.NewHandler(a.Import, a.Config.Import.MaxUploadBytes)

	v1 := r.Group("/api/v1")
	{
		auth.RegisterPublicRoutes(v1, authHandler)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(a.JWT))
		{
			auth.RegisterProtectedRoutes(protected, authHandler)
			lead.RegisterRoutes(protected, leadHandler)

			staff := protected.Group("")
			staff.Use(middleware.StaffOnly())
			leadimport.RegisterRoutes(staff, importHandler)
		}
	}

	return r
}
