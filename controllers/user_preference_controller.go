package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"platewise_server/logger"
	"platewise_server/models"
	"platewise_server/services"
	"platewise_server/utils"
)

// UserPreferenceController handles requests related to users and their food preferences
type UserPreferenceController struct {
	Service  *services.UserPreferenceService
	Validate *validator.Validate
	Log      *logger.Logger
}

// NewUserPreferenceController creates a new instance of UserPreferenceController
func NewUserPreferenceController(service *services.UserPreferenceService, log *logger.Logger) *UserPreferenceController {
	if log == nil {
		log = logger.NewNop()
	}
	return &UserPreferenceController{Service: service, Validate: NewValidator(), Log: log}
}

// CreateUser handles POST /api/user/create
func (c *UserPreferenceController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeAndValidate(w, r, c.Validate, &req); err != nil {
		writeServiceError(w, c.Log, err)
		return
	}

	profile, err := c.Service.CreateUser(r.Context(), req.UserID, req.UserName)
	if err != nil {
		writeServiceError(w, c.Log, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"user":    profile,
		"message": "User created successfully",
	})
}

// UpdatePreferences handles POST /api/user/preferences/update
func (c *UserPreferenceController) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePreferencesRequest
	if err := decodeAndValidate(w, r, c.Validate, &req); err != nil {
		writeServiceError(w, c.Log, err)
		return
	}

	profile, err := c.Service.UpdatePreferences(r.Context(), req.UserID, *req.WasteAnalysis)
	if err != nil {
		writeServiceError(w, c.Log, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    profile,
		"message": "Preferences updated successfully",
	})
}

// GetUser handles GET /api/user/{userId}
func (c *UserPreferenceController) GetUser(w http.ResponseWriter, r *http.Request) {
	profile, err := c.Service.GetUser(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    profile,
	})
}

// GetUserSummary handles GET /api/user/{userId}/summary
func (c *UserPreferenceController) GetUserSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := c.Service.GetSummary(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeServiceError(w, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"summary": summary,
	})
}

// GetMealHistory handles GET /api/user/{userId}/history?limit=N
func (c *UserPreferenceController) GetMealHistory(w http.ResponseWriter, r *http.Request) {
	limit := models.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	history, err := c.Service.GetHistory(r.Context(), mux.Vars(r)["userId"], limit)
	if err != nil {
		writeServiceError(w, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"history": history,
		"count":   len(history),
	})
}

// DeleteUser handles DELETE /api/user/{userId}
func (c *UserPreferenceController) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteUser(r.Context(), mux.Vars(r)["userId"]); err != nil {
		writeServiceError(w, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "User deleted successfully",
	})
}
