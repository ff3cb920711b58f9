package routes

import (
	"platewise_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterUserPreferenceRoutes sets up routes for user and preference operations under /api/user
func RegisterUserPreferenceRoutes(r *mux.Router, controller *controllers.UserPreferenceController) {
	userRouter := r.PathPrefix("/api/user").Subrouter()

	// Static paths before {userId} so they are not captured as ids
	userRouter.HandleFunc("/create", controller.CreateUser).Methods("POST")
	userRouter.HandleFunc("/preferences/update", controller.UpdatePreferences).Methods("POST")
	userRouter.HandleFunc("/{userId}/summary", controller.GetUserSummary).Methods("GET")
	userRouter.HandleFunc("/{userId}/history", controller.GetMealHistory).Methods("GET")
	userRouter.HandleFunc("/{userId}", controller.GetUser).Methods("GET")
	userRouter.HandleFunc("/{userId}", controller.DeleteUser).Methods("DELETE")
}
