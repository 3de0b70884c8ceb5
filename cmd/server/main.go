package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/infinitewater/bucket/internal/config"
	"github.com/infinitewater/bucket/internal/handlers"
	"github.com/infinitewater/bucket/internal/plugin"
	"github.com/infinitewater/bucket/pkg/permission"
	"github.com/infinitewater/bucket/pkg/permission/memory"
	permissionredis "github.com/infinitewater/bucket/pkg/permission/redis"
	"github.com/infinitewater/bucket/pkg/permission/sqlite"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the server config")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Create permission store with config values
	var store permission.Store
	switch cfg.Permissions.Strategy {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = permissionredis.NewStore(permissionredis.Config{
			Client:    rdb,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		fmt.Printf("Using Redis permission store at %s\n", cfg.Redis.Addr)
	case "sqlite":
		db, err := sqlite.Open(cfg.Permissions.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open permission database: %v", err)
		}
		defer db.Close()
		store = db
		fmt.Printf("Using SQLite permission store at %s\n", cfg.Permissions.SQLitePath)
	default:
		store = memory.NewStore()
		fmt.Printf("Using in-memory permission store\n")
	}

	p := plugin.New(cfg.Plugin.Version, config.NewPluginStore(cfg.Plugin.ConfigPath), store)
	if err := p.Init(); err != nil {
		log.Fatalf("Failed to init plugin: %v", err)
	}
	defer p.Unload()

	if cfg.Server.HookSecret == "" {
		log.Printf("Warning: hook_secret is empty, the bridge accepts unauthenticated requests")
	}

	gin.SetMode(gin.ReleaseMode)
	r := handlers.NewRouter(p, cfg.Server.HookSecret)

	// Start server
	fmt.Printf("Server starting on %s (%s v%s, plugin config %s)\n",
		cfg.Server.Port, plugin.Name, p.Version(), cfg.Plugin.ConfigPath)
	if err := r.Run(cfg.Server.Port); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
