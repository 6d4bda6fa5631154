package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"webhook-guard/internal/server"
)

// Router builds the HTTP handler with all routes configured
func (app *App) Router() http.Handler {
	router := mux.NewRouter()
	app.SetupRoutes(router)
	return router
}

// RunServer creates the HTTP server, with TLS when both files are configured
func (app *App) RunServer() *server.Server {
	return server.New(app.Router(), app.Config.Port, app.Config.TLSCert, app.Config.TLSKey)
}
