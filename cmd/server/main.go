package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/scrollcampus/portal-api/internal/config"
	"github.com/scrollcampus/portal-api/internal/constants"
	"github.com/scrollcampus/portal-api/internal/database"
	"github.com/scrollcampus/portal-api/internal/handlers"
	"github.com/scrollcampus/portal-api/internal/middleware"
	"github.com/scrollcampus/portal-api/internal/models"
	"github.com/scrollcampus/portal-api/internal/repository"
	"github.com/scrollcampus/portal-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if cfg.DBDriver == "postgres" {
		if err := database.AddIndexes(database.GetDB()); err != nil {
			log.Fatalf("Failed to add indexes: %v", err)
		}
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	membershipStore := repository.NewMembershipStore(db)
	institutionRepo := repository.NewInstitutionRepository(db)

	authService := services.NewAuthService(userRepo)
	tenancyService := services.NewTenancyService(membershipStore, services.NewConsoleNotifier())
	sessionManager := services.NewSessionManager()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, tenancyService, sessionManager)
	tenancyHandler := handlers.NewTenancyHandler(tenancyService, sessionManager)
	institutionHandler := handlers.NewInstitutionHandler(institutionRepo)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Campus Portal API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Tenancy routes (protected)
		tenancy := api.Group("/tenancy")
		tenancy.Use(middleware.RequireAuth())
		{
			tenancy.GET("/context", tenancyHandler.GetContext)
			tenancy.POST("/switch", tenancyHandler.Switch)
		}

		// Institution administration (protected, admin and up)
		institutions := api.Group("/institutions")
		institutions.Use(middleware.RequireAuth())
		{
			institutions.GET("", middleware.RequireRole(sessionManager, tenancyService, models.RoleAdmin), institutionHandler.ListInstitutions)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
