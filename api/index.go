package handler

import (
	"net/http"

	"github.com/arnavshah/roster-resolver-go/pkg/auth"
	"github.com/arnavshah/roster-resolver-go/pkg/config"
	"github.com/arnavshah/roster-resolver-go/pkg/database"
	"github.com/arnavshah/roster-resolver-go/pkg/handlers"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var r *gin.Engine

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	// Initialize DB
	db := database.InitDB()
	_ = auth.EnsureAdminExists(db)
	h := handlers.New(db)
	_ = h.Store.EnsureScoringDefaults(config.DefaultScoring())

	// Initialize Gin
	gin.SetMode(gin.ReleaseMode)
	r = gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Static files served from embedded FS
	r.StaticFS("/static", h.GetStaticFS())

	// Routes
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Roster Resolver API (Vercel)",
			"version": "1.2.0",
		})
	})

	r.GET("/admin", h.AdminInterface)
	r.POST("/admin/login", h.Login)

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
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
