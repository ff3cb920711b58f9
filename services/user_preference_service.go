package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"platewise_server/logger"
	"platewise_server/models"
)

// ProfileNotifier is told about every profile that was successfully updated
type ProfileNotifier interface {
	NotifyProfileUpdated(profile models.UserProfile)
}

// UserPreferenceService owns the load, apply, persist cycle for user profiles
type UserPreferenceService struct {
	Store    Store
	Locker   UserLocker
	Notifier ProfileNotifier // optional
	Metrics  *Metrics
	Log      *logger.Logger
	Now      func() time.Time
	NewID    func() string
}

// NewUserPreferenceService wires a service with an in-process locker and
// unregistered metrics; callers replace fields as needed.
func NewUserPreferenceService(store Store, log *logger.Logger) *UserPreferenceService {
	if log == nil {
		log = logger.NewNop()
	}
	return &UserPreferenceService{
		Store:   store,
		Locker:  NewLocalLocker(),
		Metrics: NewMetrics(nil),
		Log:     log,
		Now:     func() time.Time { return time.Now().UTC() },
		NewID:   uuid.NewString,
	}
}

func (s *UserPreferenceService) lock(ctx context.Context, userID string) (func(), error) {
	unlock, err := s.Locker.Lock(ctx, userID)
	if err != nil {
		return nil, storeErr("lock user", err)
	}
	return unlock, nil
}

func cleanUserID(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", malformed("user_id is required")
	}
	return userID, nil
}

// CreateUser registers an empty profile
func (s *UserPreferenceService) CreateUser(ctx context.Context, userID, userName string) (*models.UserProfile, error) {
	userID, err := cleanUserID(userID)
	if err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	existing, err := s.Store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	at := s.Now()
	profile := models.UserProfile{
		UserID:        userID,
		UserName:      strings.TrimSpace(userName),
		LikedFoods:    []string{},
		DislikedFoods: []string{},
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	if err := s.Store.PutProfile(ctx, profile); err != nil {
		return nil, err
	}
	s.Log.Info("Created user", "user_id", userID)
	return &profile, nil
}

// GetUser returns the stored profile or ErrNotFound
func (s *UserPreferenceService) GetUser(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.Store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNotFound
	}
	return profile, nil
}

// UpdatePreferences folds one waste analysis into the user's profile.
// A user seen for the first time gets a fresh profile.
func (s *UserPreferenceService) UpdatePreferences(ctx context.Context, userID string, analysis models.WasteAnalysis) (profile *models.UserProfile, err error) {
	start := time.Now()
	defer func() {
		s.Metrics.UpdateDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			s.Metrics.AnalysesRejected.WithLabelValues(rejectReason(err)).Inc()
			return
		}
		s.Metrics.AnalysesApplied.Inc()
	}()

	userID, err = cleanUserID(userID)
	if err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, err := s.Store.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	next, record, err := ApplyWasteAnalysis(current, userID, analysis, s.Now())
	if err != nil {
		s.Log.Warn("Rejected waste analysis", "user_id", userID, "error", err)
		return nil, err
	}
	record.RecordID = s.NewID()

	if err := s.persist(ctx, current, next, record); err != nil {
		s.Log.Error("Failed to persist preferences", "user_id", userID, "error", err)
		return nil, err
	}

	s.Log.Info("Updated preferences",
		"user_id", userID,
		"meal_count", next.MealCount,
		"liked", len(next.LikedFoods),
		"disliked", len(next.DislikedFoods),
	)
	if s.Notifier != nil {
		s.Notifier.NotifyProfileUpdated(next)
	}
	return &next, nil
}

// persist writes both outputs of the engine. Without a transactional store the
// profile goes first, and a failed history append rolls the profile back so
// readers never see statistics that disagree with the history.
func (s *UserPreferenceService) persist(ctx context.Context, current *models.UserProfile, next models.UserProfile, record models.MealHistoryRecord) error {
	if atomic, ok := s.Store.(AtomicStore); ok {
		return atomic.SaveAnalysis(ctx, next, record)
	}

	if err := s.Store.PutProfile(ctx, next); err != nil {
		return err
	}
	appendErr := s.Store.AppendHistory(ctx, record)
	if appendErr == nil {
		return nil
	}

	var rollbackErr error
	if current != nil {
		rollbackErr = s.Store.PutProfile(ctx, *current)
	} else {
		rollbackErr = s.Store.DeleteUser(ctx, next.UserID)
	}
	if rollbackErr != nil {
		s.Log.Error("Profile rollback failed", "user_id", next.UserID, "error", rollbackErr)
	}
	return storeErr("append history", appendErr)
}

// GetSummary returns the profile plus a short view of recent meals
func (s *UserPreferenceService) GetSummary(ctx context.Context, userID string) (*models.UserSummary, error) {
	profile, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.Store.CountHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.Store.ListHistory(ctx, userID, models.RecentMealsLimit)
	if err != nil {
		return nil, err
	}

	meals := make([]models.RecentMeal, 0, len(recent))
	for _, r := range recent {
		name := r.OriginalMeal.Name
		if name == "" {
			name = "Unknown"
		}
		meals = append(meals, models.RecentMeal{
			MealName:        name,
			Timestamp:       r.Timestamp,
			WastePercentage: r.WasteSummary.TotalWastePercentage.String(),
		})
	}

	return &models.UserSummary{
		UserID:                 profile.UserID,
		UserName:               profile.UserName,
		LikedFoods:             profile.LikedFoods,
		DislikedFoods:          profile.DislikedFoods,
		TotalMealsAnalyzed:     profile.MealCount,
		AverageWastePercentage: math.Round(profile.TotalWastePercentage*100) / 100,
		HistoryCount:           count,
		RecentMeals:            meals,
		CreatedAt:              profile.CreatedAt,
		UpdatedAt:              profile.UpdatedAt,
	}, nil
}

// GetHistory lists the user's meals, newest first. limit <= 0 means the
// default page size; larger values are capped.
func (s *UserPreferenceService) GetHistory(ctx context.Context, userID string, limit int) ([]models.MealHistoryRecord, error) {
	switch {
	case limit <= 0:
		limit = models.DefaultHistoryLimit
	case limit > models.MaxHistoryLimit:
		limit = models.MaxHistoryLimit
	}
	records, err := s.Store.ListHistory(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.MealHistoryRecord{}
	}
	return records, nil
}

// DeleteUser removes the profile and its whole history
func (s *UserPreferenceService) DeleteUser(ctx context.Context, userID string) error {
	unlock, err := s.lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.Store.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.Log.Info("Deleted user", "user_id", userID)
	return nil
}
