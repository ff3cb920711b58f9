package controllers

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"platewise_server/logger"
	"platewise_server/models"
	"platewise_server/services"
	"platewise_server/utils"
)

// MealPhotoController hands out presigned S3 URLs for plate photos
type MealPhotoController struct {
	Photos   *services.MealPhotoService
	Validate *validator.Validate
	Log      *logger.Logger
}

func NewMealPhotoController(photos *services.MealPhotoService, log *logger.Logger) *MealPhotoController {
	if log == nil {
		log = logger.NewNop()
	}
	return &MealPhotoController{Photos: photos, Validate: NewValidator(), Log: log}
}

// GeneratePresignedURL generates a presigned URL for a meal photo upload
func (c *MealPhotoController) GeneratePresignedURL(w http.ResponseWriter, r *http.Request) {
	var req models.MealPhotoUploadRequest
	if err := decodeAndValidate(w, r, c.Validate, &req); err != nil {
		writeServiceError(w, c.Log, err)
		return
	}

	url, key, err := c.Photos.GenerateUploadURL(r.Context(), req.UserID, req.FileName, req.FileType)
	if err != nil {
		writeServiceError(w, c.Log, err)
		return
	}
	c.Log.Debug("Generated meal photo upload URL", "user_id", req.UserID, "key", key)

	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"url":     url,
		"key":     key,
	})
}

// GetPresignedReadURL generates a presigned URL for reading a meal photo
func (c *MealPhotoController) GetPresignedReadURL(w http.ResponseWriter, r *http.Request) {
	var req models.MealPhotoReadRequest
	if err := decodeAndValidate(w, r, c.Validate, &req); err != nil {
		writeServiceError(w, c.Log, err)
		return
	}

	url, err := c.Photos.GenerateReadURL(r.Context(), req.Key)
	if err != nil {
		writeServiceError(w, c.Log, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"url":     url,
	})
}
