package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/infinitewater/bucket/internal/middleware"
	"github.com/infinitewater/bucket/internal/plugin"
)

// NewRouter builds the host bridge router around a loaded plugin.
// Everything except /healthz sits behind the shared hook secret.
func NewRouter(p *plugin.Plugin, secret string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", GinHealthHandler())

	api := r.Group("/", middleware.GinHookSecretMiddleware(secret))
	api.POST("/hooks/item-use", GinItemUseHandler(p))
	api.GET("/status", GinStatusHandler(plugin.Name, p))
	api.POST("/config/reload", GinReloadHandler(p))

	perms := api.Group("/permissions")
	perms.GET("/:actor", GinListPermissionsHandler(p.Permissions()))
	perms.GET("/:actor/:permission", GinCheckPermissionHandler(p.Permissions()))
	perms.PUT("/:actor/:permission", GinGrantPermissionHandler(p.Permissions()))
	perms.DELETE("/:actor/:permission", GinRevokePermissionHandler(p.Permissions()))

	return r
}
