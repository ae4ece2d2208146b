package main

import (
	"log"
	"net/http"
	"os"

	"github.com/arnavshah/roster-resolver-go/pkg/auth"
	"github.com/arnavshah/roster-resolver-go/pkg/config"
	"github.com/arnavshah/roster-resolver-go/pkg/database"
	"github.com/arnavshah/roster-resolver-go/pkg/handlers"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db := database.InitDB()
	_ = auth.EnsureAdminExists(db)
	h := handlers.New(db)
	if err := h.Store.EnsureScoringDefaults(config.DefaultScoring()); err != nil {
		log.Printf("could not seed scoring defaults: %v", err)
	}

	r := gin.Default()

	// Admin interface - serve static files from embedded FS
	r.StaticFS("/static", h.GetStaticFS())

	// Routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Roster Resolver API",
			"version": "1.2.0",
		})
	})

	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
		admin.GET("/scoring", h.GetScoring)
		admin.PUT("/scoring", h.UpdateScoring)
	}

	// Resolver Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.POST("/resolve", h.ResolveJSON)
		api.POST("/resolve/csv", h.ResolveCSV)
		api.POST("/validate", h.ValidateInput)
		api.GET("/usage", h.GetMyUsage)

		api.PUT("/periods/:period/snapshot", h.PublishSnapshot)
		api.POST("/periods/:period/resolve", h.ResolvePeriod)
		api.GET("/periods/:period/run", h.GetRun)
		api.GET("/periods/:period/fragility", h.Fragility)
		api.GET("/periods/:period/seats/:shift/:seat/candidates", h.SeatCandidates)
		api.PUT("/periods/:period/locks/:shift/:seat", h.PutLock)
		api.DELETE("/periods/:period/locks/:shift/:seat", h.DeleteLock)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
