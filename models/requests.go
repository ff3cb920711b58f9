package models

// CreateUserRequest is the body of POST /api/user/create
type CreateUserRequest struct {
	UserID   string `json:"user_id" validate:"required,max=128"`
	UserName string `json:"user_name" validate:"max=256"`
}

// UpdatePreferencesRequest is the body of POST /api/user/preferences/update
type UpdatePreferencesRequest struct {
	UserID        string         `json:"user_id" validate:"required,max=128"`
	WasteAnalysis *WasteAnalysis `json:"waste_analysis" validate:"required"`
}

// MealPhotoUploadRequest asks for a presigned URL to upload a plate photo
type MealPhotoUploadRequest struct {
	UserID   string `json:"user_id" validate:"required,max=128"`
	FileName string `json:"file_name" validate:"required,max=256"`
	FileType string `json:"file_type" validate:"required"`
}

// MealPhotoReadRequest asks for a presigned URL to read a stored plate photo
type MealPhotoReadRequest struct {
	Key string `json:"key" validate:"required"`
}
