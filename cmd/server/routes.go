package main

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tubeaccounts/backend/internal/middleware"
	"github.com/tubeaccounts/backend/pkg/logger"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(svc.cfg.CORS.Origins))

	r.MaxMultipartMemory = 8 << 20

	r.GET("/health", svc.healthHandler.CheckHealth)

	// Locally stored media is served by this process.
	if svc.cfg.Upload.Driver == "local" {
		r.Static(mediaRoute(svc.cfg.Upload.Local.PublicURL), svc.cfg.Upload.Local.Dir)
	}

	api := r.Group("/api/v1")
	{
		users := api.Group("/users")
		{
			users.POST("/register", svc.userHandler.Register)
			users.POST("/login", svc.userHandler.Login)
			users.POST("/refresh-token", svc.userHandler.RefreshToken)

			protected := users.Group("")
			protected.Use(middleware.AuthRequired(svc.tokens))
			{
				protected.POST("/logout", svc.userHandler.Logout)
				protected.POST("/change-password", svc.userHandler.ChangePassword)
				protected.GET("/current-user", svc.userHandler.GetCurrentUser)
				protected.PATCH("/update-account", svc.userHandler.UpdateAccount)
				protected.PATCH("/avatar", svc.userHandler.UpdateAvatar)
				protected.PATCH("/cover-image", svc.userHandler.UpdateCoverImage)
			}
		}
	}
}

// mediaRoute is the path component of the local media public URL.
func mediaRoute(publicURL string) string {
	path := "/media"
	if u, err := url.Parse(publicURL); err == nil && u.Path != "" && u.Path != "/" {
		path = u.Path
	}
	return "/" + strings.Trim(path, "/")
}
