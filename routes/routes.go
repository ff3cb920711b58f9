package routes

import (
	"net/http"

	"platewise_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterRoutes sets up the service-level routes
func RegisterRoutes(r *mux.Router, database string, metrics http.Handler, socket http.Handler) {
	r.HandleFunc("/api/health", controllers.HealthCheckHandler(database)).Methods("GET")
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods("GET")
	}
	if socket != nil {
		r.PathPrefix("/socket.io/").Handler(socket)
	}
	r.NotFoundHandler = http.HandlerFunc(controllers.NotFoundHandler)
}
