package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/NBS282/themepark-api/internal/admission"
	"github.com/NBS282/themepark-api/internal/attractions"
	"github.com/NBS282/themepark-api/internal/auth"
	"github.com/NBS282/themepark-api/internal/config"
	"github.com/NBS282/themepark-api/internal/database"
	"github.com/NBS282/themepark-api/internal/handlers"
	"github.com/NBS282/themepark-api/internal/incidents"
	"github.com/NBS282/themepark-api/internal/notifier"
	"github.com/NBS282/themepark-api/internal/scoring"
	"github.com/NBS282/themepark-api/internal/scoring/luaplugin"
	"github.com/NBS282/themepark-api/internal/store"
	"github.com/NBS282/themepark-api/internal/tickets"
	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Build Logger
	zapConfig := zap.NewProductionConfig()
	if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zapConfig.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := zapConfig.Build()
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Connect to Database
	db := database.Connect(cfg)

	// Stores
	attractionStore := store.NewAttractionStore(db)
	userStore := store.NewUserStore(db)
	ticketStore := store.NewTicketStore(db)
	eventStore := store.NewEventStore(db)
	visitStore := store.NewVisitStore(db)
	incidentStore := store.NewIncidentStore(db)
	maintenanceStore := store.NewMaintenanceStore(db)
	strategyStore := store.NewStrategyStore(db)
	txRunner := store.NewTxRunner(db)

	// Incident notifications
	var incidentNotifier notifier.Notifier
	if cfg.DiscordBotToken != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			logger.Warn("discord notifier not initialized", zap.Error(err))
		} else {
			incidentNotifier = notifier.NewDiscordNotifier(session, cfg.DiscordIncidentsChannelID)
		}
	}

	// Scoring plugins
	plugins, err := luaplugin.LoadDir(cfg.PluginsDir, logger)
	if err != nil {
		log.Fatalf("Failed to load scoring plugins: %v", err)
	}

	// Services
	tracker := incidents.NewTracker(attractionStore, incidentStore, maintenanceStore, incidentNotifier, logger)
	resolver := tickets.NewResolver(ticketStore, userStore, eventStore)
	issuer := tickets.NewIssuer(ticketStore, userStore, eventStore, logger)
	engine := scoring.NewEngine(strategyStore, attractionStore, plugins, logger)
	registry := attractions.NewRegistry(attractionStore, tracker, logger)
	admissionService := admission.NewService(attractionStore, visitStore, userStore, resolver, tracker, engine, txRunner, logger)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db)
	admissionHandler := handlers.NewAdmissionHandler(admissionService)
	attractionHandler := handlers.NewAttractionHandler(registry, authHandler)
	incidentHandler := handlers.NewIncidentHandler(tracker, authHandler)
	strategyHandler := handlers.NewStrategyHandler(engine, plugins, authHandler)
	ticketHandler := handlers.NewTicketHandler(issuer, authHandler)
	apiKeyHandler := handlers.NewAPIKeyHandler(db, authHandler)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, authHandler, admissionHandler, attractionHandler, incidentHandler, strategyHandler, ticketHandler, apiKeyHandler)

	// Start Server
	logger.Info("starting server", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
