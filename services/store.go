package services

import (
	"context"

	"platewise_server/models"
)

// Store is the document store behind the preference service.
// Implementations wrap their own failures in *StoreError.
type Store interface {
	// GetProfile returns nil, nil when the user has no profile
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	PutProfile(ctx context.Context, profile models.UserProfile) error
	AppendHistory(ctx context.Context, record models.MealHistoryRecord) error
	// ListHistory returns at most limit records, most recent first
	ListHistory(ctx context.Context, userID string, limit int) ([]models.MealHistoryRecord, error)
	CountHistory(ctx context.Context, userID string) (int, error)
	// DeleteUser removes the profile and all its history, ErrNotFound if absent
	DeleteUser(ctx context.Context, userID string) error
}

// AtomicStore is implemented by stores that can write the profile and its
// history record in a single transaction.
type AtomicStore interface {
	SaveAnalysis(ctx context.Context, profile models.UserProfile, record models.MealHistoryRecord) error
}
