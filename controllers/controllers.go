package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"platewise_server/logger"
	"platewise_server/services"
	"platewise_server/utils"
)

const maxBodyBytes = 1 << 20

// HealthCheckHandler provides a basic health check
func HealthCheckHandler(database string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSONResponse(w, http.StatusOK, map[string]string{
			"status":   "healthy",
			"service":  "Food Preference API",
			"database": database,
		})
	}
}

// NotFoundHandler answers unknown routes with the JSON envelope
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONError(w, http.StatusNotFound, "Endpoint not found")
}

// decodeAndValidate reads a JSON body into dst and runs struct validation
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", services.ErrMalformedInput, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", services.ErrMalformedInput, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	if fe.Tag() == "required" {
		return fmt.Sprintf("%s is required", jsonName(fe))
	}
	return fmt.Sprintf("%s failed %s validation", jsonName(fe), fe.Tag())
}

// writeServiceError maps service errors onto status codes
func writeServiceError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrMalformedInput):
		utils.WriteJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.WriteJSONError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, services.ErrUserExists):
		utils.WriteJSONError(w, http.StatusConflict, "User already exists")
	default:
		log.Error("Request failed", "error", err)
		utils.WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}
