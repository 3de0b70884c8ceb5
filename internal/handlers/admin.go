package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/infinitewater/bucket/internal/config"
	"github.com/infinitewater/bucket/pkg/permission"
)

// Reloader reloads the plugin configuration.
type Reloader interface {
	Reload() (config.PluginConfig, error)
}

// StatusSource exposes what the status endpoint reports.
type StatusSource interface {
	Version() string
	RefillableItems() []string
}

// Status describes the running plugin.
type Status struct {
	Plugin          string   `json:"plugin"`
	Version         string   `json:"version"`
	Permission      string   `json:"permission"`
	RefillableItems []string `json:"refillable_items"`
}

// GinReloadHandler re-reads the plugin configuration and returns the active document.
func GinReloadHandler(reloader Reloader) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := reloader.Reload()
		if err != nil {
			log.Printf("[CONFIG] reload failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Reload failed", "message": err.Error()})
			return
		}
		log.Printf("[CONFIG] reloaded (%d refillable items)", len(cfg.RefillableItems))
		c.JSON(http.StatusOK, cfg)
	}
}

// GinStatusHandler reports the plugin version and registry contents.
func GinStatusHandler(name string, src StatusSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, Status{
			Plugin:          name,
			Version:         src.Version(),
			Permission:      permission.Use,
			RefillableItems: src.RefillableItems(),
		})
	}
}

// GinHealthHandler answers liveness probes.
func GinHealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
