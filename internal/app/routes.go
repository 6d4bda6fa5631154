package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"webhook-guard/internal/middleware"
)

// SetupRoutes configures all HTTP routes for the application
func (app *App) SetupRoutes(router *mux.Router) {
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(app.Logger))

	// Health check
	router.HandleFunc("/health", app.Handlers.HealthCheck).Methods(http.MethodGet)

	// Token endpoints
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tokens", app.Handlers.IssueToken).Methods(http.MethodPost)
	api.HandleFunc("/tokens/verify", app.Handlers.VerifyToken).Methods(http.MethodPost)

	// Signed webhooks
	router.Handle(app.Config.WebhookPathPrefix+"{name:[A-Za-z0-9._-]+}",
		middleware.ToHTTP(app.WebhookHandler(), app.Logger),
	).Methods(http.MethodPost)
}

// WebhookHandler is the webhook chain: raw body capture, signature
// verification, optional replay protection, then acceptance.
func (app *App) WebhookHandler() middleware.Handler {
	mws := []middleware.Middleware{
		middleware.CaptureRawBodyMax(middleware.PathPrefix(app.Config.WebhookPathPrefix), app.Config.MaxBodyBytes()),
		app.Verifier.Middleware(),
	}
	if app.Guard != nil {
		mws = append(mws, app.Guard.Middleware())
	}
	return middleware.Chain(app.Handlers.AcceptWebhook(), mws...)
}
