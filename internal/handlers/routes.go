package handlers

import (
	"net/http"

	"github.com/NBS282/themepark-api/internal/auth"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func RegisterRoutes(
	r *chi.Mux,
	authHandler *auth.AuthHandler,
	admissionHandler *AdmissionHandler,
	attractionHandler *AttractionHandler,
	incidentHandler *IncidentHandler,
	strategyHandler *StrategyHandler,
	ticketHandler *TicketHandler,
	apiKeyHandler *APIKeyHandler,
) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("Theme Park Operations API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
		"readerKey": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	huma.Post(api, "/auth/login", authHandler.HandleLogin)
	huma.Get(api, "/attractions", attractionHandler.HandleListAttractions)
	huma.Get(api, "/attractions/{name}", attractionHandler.HandleGetAttraction)

	// Protected routes: gate readers present an API key, staff a session
	// cookie. The huma adapter registers operations on the router it was
	// built with, so the group gets its own adapter sharing the OpenAPI
	// spec; the docs routes are already served by the public one.
	r.Group(func(g chi.Router) {
		g.Use(authHandler.AuthMiddleware)

		groupConfig := config
		groupConfig.OpenAPIPath = ""
		groupConfig.DocsPath = ""
		groupConfig.SchemasPath = ""
		gapi := humachi.New(g, groupConfig)

		huma.Get(gapi, "/me", authHandler.HandleMe, secured)

		// Gate operations
		huma.Post(gapi, "/attractions/{name}/access", admissionHandler.HandleRegisterAccess, gated)
		huma.Post(gapi, "/attractions/{name}/exit", admissionHandler.HandleRegisterExit, gated)
		huma.Get(gapi, "/attractions/{name}/capacity", admissionHandler.HandleGetCapacity, gated)
		huma.Get(gapi, "/reports/usage", admissionHandler.HandleUsageReport, secured)

		// Attraction registry
		huma.Post(gapi, "/attractions", attractionHandler.HandleCreateAttraction, secured)
		huma.Delete(gapi, "/attractions/{name}", attractionHandler.HandleDeleteAttraction, secured)

		// Ticket sales
		huma.Post(gapi, "/tickets", ticketHandler.HandleIssueTicket, secured)

		// Incidents and maintenance
		huma.Get(gapi, "/incidents", incidentHandler.HandleListIncidents, secured)
		huma.Post(gapi, "/attractions/{name}/incidents", incidentHandler.HandleCreateIncident, secured)
		huma.Post(gapi, "/attractions/{name}/incidents/{id}/resolve", incidentHandler.HandleResolveIncident, secured)
		huma.Post(gapi, "/attractions/{name}/maintenance", incidentHandler.HandleScheduleMaintenance, secured)
		huma.Delete(gapi, "/attractions/{name}/maintenance/{id}", incidentHandler.HandleCancelMaintenance, secured)

		// Scoring strategies and plugins
		huma.Get(gapi, "/strategies", strategyHandler.HandleListStrategies, secured)
		huma.Post(gapi, "/strategies", strategyHandler.HandleCreateStrategy, secured)
		huma.Patch(gapi, "/strategies/{name}", strategyHandler.HandleUpdateStrategy, secured)
		huma.Delete(gapi, "/strategies/{name}", strategyHandler.HandleDeleteStrategy, secured)
		huma.Post(gapi, "/strategies/{name}/toggle", strategyHandler.HandleToggleStrategy, secured)
		huma.Post(gapi, "/strategies/deactivate", strategyHandler.HandleDeactivateStrategy, secured)
		huma.Get(gapi, "/plugins", strategyHandler.HandleListPlugins, secured)

		// Reader key management
		huma.Post(gapi, "/api-keys", apiKeyHandler.HandleCreate, secured)
		huma.Get(gapi, "/api-keys", apiKeyHandler.HandleList, secured)
		huma.Delete(gapi, "/api-keys/{id}", apiKeyHandler.HandleDelete, secured)
	})
}

func secured(o *huma.Operation) {
	o.Security = []map[string][]string{{"cookieAuth": {}}}
}

func gated(o *huma.Operation) {
	o.Security = []map[string][]string{{"readerKey": {}}, {"cookieAuth": {}}}
}
