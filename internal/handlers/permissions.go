package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/infinitewater/bucket/pkg/permission"
)

// GrantedResponse lists an actor's permissions.
type GrantedResponse struct {
	Actor       string   `json:"actor"`
	Permissions []string `json:"permissions"`
}

// PermissionResponse reports one actor/permission pair.
type PermissionResponse struct {
	Actor      string `json:"actor"`
	Permission string `json:"permission"`
	Granted    bool   `json:"granted"`
}

// GinListPermissionsHandler lists the permissions granted to :actor.
func GinListPermissionsHandler(store permission.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.Param("actor")
		names, err := store.Granted(actor)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Permission store error"})
			return
		}
		c.JSON(http.StatusOK, GrantedResponse{Actor: actor, Permissions: names})
	}
}

// GinCheckPermissionHandler reports whether :actor holds :permission.
func GinCheckPermissionHandler(store permission.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, name := c.Param("actor"), c.Param("permission")
		has, err := store.HasPermission(actor, name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Permission store error"})
			return
		}
		c.JSON(http.StatusOK, PermissionResponse{Actor: actor, Permission: name, Granted: has})
	}
}

// GinGrantPermissionHandler grants :permission to :actor.
// Unregistered permissions yield 404.
func GinGrantPermissionHandler(store permission.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, name := c.Param("actor"), c.Param("permission")
		if err := store.Grant(actor, name); err != nil {
			if errors.Is(err, permission.ErrUnknownPermission) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Unknown permission", "permission": name})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Permission store error"})
			return
		}
		log.Printf("[PERMISSION] %s granted to %s", name, actor)
		c.JSON(http.StatusOK, PermissionResponse{Actor: actor, Permission: name, Granted: true})
	}
}

// GinRevokePermissionHandler revokes :permission from :actor.
func GinRevokePermissionHandler(store permission.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, name := c.Param("actor"), c.Param("permission")
		if err := store.Revoke(actor, name); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Permission store error"})
			return
		}
		log.Printf("[PERMISSION] %s revoked from %s", name, actor)
		c.JSON(http.StatusOK, PermissionResponse{Actor: actor, Permission: name, Granted: false})
	}
}
