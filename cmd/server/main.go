package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	"shopledger_backend/internal/cache"
	"shopledger_backend/internal/database"
	router_pkg "shopledger_backend/internal/router"
	"shopledger_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Initialize Logger
	utils.InitLogger() // Initialize zerolog

	// .env is optional; real deployments configure via the environment.
	if err := godotenv.Load(); err != nil {
		utils.LogInfo("No .env file found, using process environment")
	}

	utils.SetJWTSecret(os.Getenv("JWT_SECRET"))

	// The tenant directory owns all per-shop stores plus the registry.
	dataDir := utils.Getenv("DATA_DIR", "./data")
	dir := database.NewTenantDirectory(dataDir)
	registry, err := dir.OpenRegistry()
	if err != nil {
		utils.LogError(err, "Failed to initialize platform registry")
		log.Fatalf("Failed to initialize platform registry: %v", err)
	}
	registry.Close()
	utils.LogInfo("Tenant directory initialized", map[string]interface{}{"data_dir": dataDir})

	// Snapshot cache: redis when configured, otherwise an in-process noop.
	var snapshots cache.SnapshotCache = cache.NoopSnapshotCache{}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisDB := utils.GetenvInt("REDIS_DB", 0)
		redisCache := cache.NewRedisSnapshotCache(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)
		if err := redisCache.Ping(context.Background()); err != nil {
			utils.LogError(err, "Redis unreachable, falling back to in-process noop cache")
		} else {
			snapshots = redisCache
			defer redisCache.Close()
			utils.LogInfo("Snapshot cache backed by redis", map[string]interface{}{"addr": redisAddr})
		}
	}

	router := gin.Default()

	// Add GinLogger middleware for request logging
	router.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"} // Default origins
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowCredentials = true
	router.Use(cors.New(config))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Setup all application routes
	router_pkg.Setup(router, dir, snapshots)

	// Server port configuration
	port := utils.Getenv("PORT", "8080") // Default to 8080 if not set
	utils.LogInfo("Server starting", map[string]interface{}{"port": port, "configured_from_env": true})

	if err := router.Run(":" + port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
