package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatherings/internal/config"
	"gatherings/internal/database"
	"gatherings/internal/handlers"
	"gatherings/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set; identity tokens cannot be verified without it")
	}

	// Initialize database (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	auditService := service.NewAuditService(db)
	rsvpService := service.NewRSVPService(db, auditService)
	householdService := service.NewHouseholdService(db)
	publicService := service.NewPublicRSVPService(db, auditService, emailService)

	// Initialize handlers
	middleware := handlers.NewMiddleware(cfg.JWTSecret)
	rsvpHandler := handlers.NewRSVPHandler(rsvpService)
	householdHandler := handlers.NewHouseholdHandler(householdService)
	publicHandler := handlers.NewPublicHandler(publicService)

	// Setup routes
	mux := http.NewServeMux()

	// Authenticated family RSVP routes
	mux.HandleFunc("GET /api/events/{id}/rsvp", middleware.RequireAuth(rsvpHandler.GetFamilyRSVP))
	mux.HandleFunc("POST /api/events/{id}/rsvp", middleware.RequireAuth(rsvpHandler.SetFamilyRSVP))
	mux.HandleFunc("GET /api/events/{id}/summary", middleware.RequireAuth(rsvpHandler.GetEventSummary))
	mux.HandleFunc("GET /api/events/{id}/comments", middleware.RequireAdmin(rsvpHandler.GetEventComments))
	mux.HandleFunc("GET /api/events/{id}/rsvp/youth/{youthId}", middleware.RequireAdmin(rsvpHandler.GetFamilyRSVPByYouth))

	// Caregiver graph routes
	mux.HandleFunc("GET /api/adults/{id}/dependents", middleware.RequireAuth(householdHandler.GetDependents))
	mux.HandleFunc("GET /api/adults/{id}/co-caregivers", middleware.RequireAuth(householdHandler.GetCoCaregivers))
	mux.HandleFunc("GET /api/youths/{id}/caregivers", middleware.RequireAuth(householdHandler.GetCaregivers))
	mux.HandleFunc("POST /api/households/links", middleware.RequireAdmin(householdHandler.AddLink))
	mux.HandleFunc("DELETE /api/households/links", middleware.RequireAdmin(householdHandler.RemoveLink))

	// Public (token-identified) routes
	mux.HandleFunc("POST /api/public/events/{id}/rsvp", publicHandler.Create)
	mux.HandleFunc("PUT /api/public/rsvp", publicHandler.Update)
	mux.HandleFunc("DELETE /api/public/rsvp", publicHandler.Delete)
	mux.HandleFunc("GET /api/public/events/{id}/totals", publicHandler.GetTotals)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}
