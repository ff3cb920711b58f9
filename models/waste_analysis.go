package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexString accepts either a JSON string or a JSON number and keeps its text.
// The vision model is inconsistent about quoting quantities and percentages.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// OriginalMeal describes the plate before anything was eaten
type OriginalMeal struct {
	Name        string `dynamodbav:"name" json:"name"`
	Description string `dynamodbav:"description,omitempty" json:"description,omitempty"`
}

// FoodPortion is one line of the thrown_away / eaten breakdown
type FoodPortion struct {
	Item                 string     `dynamodbav:"item" json:"item"`
	Quantity             FlexString `dynamodbav:"quantity,omitempty" json:"quantity,omitempty"`
	PercentageOfOriginal FlexString `dynamodbav:"percentage_of_original,omitempty" json:"percentage_of_original,omitempty"`
}

// FoodPreferences is the model's guess at what the diner liked and disliked
type FoodPreferences struct {
	LikelyLikes    []string `dynamodbav:"likely_likes" json:"likely_likes"`
	LikelyDislikes []string `dynamodbav:"likely_dislikes" json:"likely_dislikes"`
	Insights       string   `dynamodbav:"insights,omitempty" json:"insights,omitempty"`
}

// WasteSummary carries the headline waste figure for the meal
type WasteSummary struct {
	TotalWastePercentage FlexString `dynamodbav:"total_waste_percentage" json:"total_waste_percentage"` // "35%", "35" or 35
	WasteValue           string     `dynamodbav:"waste_value,omitempty" json:"waste_value,omitempty"`   // low / medium / high
}

// WasteAnalysis is the document produced by the external vision step
type WasteAnalysis struct {
	OriginalMeal    OriginalMeal    `dynamodbav:"original_meal" json:"original_meal"`
	ThrownAway      []FoodPortion   `dynamodbav:"thrown_away" json:"thrown_away"`
	Eaten           []FoodPortion   `dynamodbav:"eaten" json:"eaten"`
	FoodPreferences FoodPreferences `dynamodbav:"food_preferences" json:"food_preferences"`
	WasteSummary    WasteSummary    `dynamodbav:"waste_summary" json:"waste_summary"`
}
