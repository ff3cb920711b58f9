package routes

import (
	"platewise_server/controllers"

	"github.com/gorilla/mux"
)

// RegisterMealPhotoRoutes sets up routes for meal photo uploads
func RegisterMealPhotoRoutes(r *mux.Router, controller *controllers.MealPhotoController) {
	r.HandleFunc("/api/uploads/meal-photo", controller.GeneratePresignedURL).Methods("POST")
	r.HandleFunc("/api/uploads/meal-photo/read", controller.GetPresignedReadURL).Methods("POST")
}
