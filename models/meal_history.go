package models

import "time"

// MealHistoryRecord is the immutable snapshot of one analysis folded into a profile
type MealHistoryRecord struct {
	RecordID        string          `dynamodbav:"record_id" json:"record_id"`
	UserID          string          `dynamodbav:"user_id" json:"user_id"`     // Assigned server-side
	Timestamp       time.Time       `dynamodbav:"timestamp" json:"timestamp"` // Assigned server-side
	OriginalMeal    OriginalMeal    `dynamodbav:"original_meal" json:"original_meal"`
	ThrownAway      []FoodPortion   `dynamodbav:"thrown_away" json:"thrown_away"`
	Eaten           []FoodPortion   `dynamodbav:"eaten" json:"eaten"`
	FoodPreferences FoodPreferences `dynamodbav:"food_preferences" json:"food_preferences"`
	WasteSummary    WasteSummary    `dynamodbav:"waste_summary" json:"waste_summary"`
}

// MealHistoryTable is the default DynamoDB table name for meal history
const MealHistoryTable = "FoodPreferenceMealHistory"

// Default and maximum page sizes for history listings
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
	RecentMealsLimit    = 5
)
