package models

import "time"

// UserProfile is the durable per-user aggregate of food preferences
type UserProfile struct {
	UserID               string    `dynamodbav:"user_id" json:"user_id"`                         // Partition Key
	UserName             string    `dynamodbav:"user_name,omitempty" json:"user_name,omitempty"` // Display only, never matched on
	LikedFoods           []string  `dynamodbav:"liked_foods" json:"liked_foods"`                 // Normalized, sorted
	DislikedFoods        []string  `dynamodbav:"disliked_foods" json:"disliked_foods"`           // Normalized, sorted
	MealCount            int       `dynamodbav:"meal_count" json:"meal_count"`
	TotalWastePercentage float64   `dynamodbav:"total_waste_percentage" json:"total_waste_percentage"` // Running mean
	CreatedAt            time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt            time.Time `dynamodbav:"updated_at" json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate without aliasing the sets
func (p UserProfile) Clone() UserProfile {
	out := p
	out.LikedFoods = append([]string{}, p.LikedFoods...)
	out.DislikedFoods = append([]string{}, p.DislikedFoods...)
	return out
}

// RecentMeal is the condensed history line shown in a summary
type RecentMeal struct {
	MealName        string    `json:"meal_name"`
	Timestamp       time.Time `json:"timestamp"`
	WastePercentage string    `json:"waste_percentage"`
}

// UserSummary is the read model returned by the summary endpoint
type UserSummary struct {
	UserID                 string       `json:"user_id"`
	UserName               string       `json:"user_name,omitempty"`
	LikedFoods             []string     `json:"liked_foods"`
	DislikedFoods          []string     `json:"disliked_foods"`
	TotalMealsAnalyzed     int          `json:"total_meals_analyzed"`
	AverageWastePercentage float64      `json:"average_waste_percentage"` // Rounded to 2 decimal places
	HistoryCount           int          `json:"history_count"`
	RecentMeals            []RecentMeal `json:"recent_meals"`
	CreatedAt              time.Time    `json:"created_at"`
	UpdatedAt              time.Time    `json:"updated_at"`
}

// UsersTable is the default DynamoDB table name for user profiles
const UsersTable = "FoodPreferenceUsers"
