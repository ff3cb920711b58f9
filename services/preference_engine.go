package services

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"platewise_server/models"
	"platewise_server/utils"
)

// ApplyWasteAnalysis folds one analysis into a profile and returns the next
// profile together with the history record to persist. current may be nil for
// a user seen for the first time. current is never modified and nothing is
// returned on error.
//
// When a food shows up in both likely_likes and likely_dislikes of the same
// analysis, the like wins. Across calls the most recent signal wins.
//
// The running mean is kept in float64 and updated incrementally; for
// percentages with one meaningful decimal the accumulated error is far below
// display precision.
func ApplyWasteAnalysis(current *models.UserProfile, userID string, analysis models.WasteAnalysis, at time.Time) (models.UserProfile, models.MealHistoryRecord, error) {
	if strings.TrimSpace(analysis.OriginalMeal.Name) == "" {
		return models.UserProfile{}, models.MealHistoryRecord{}, malformed("original_meal.name is required")
	}
	waste, err := ParseWastePercentage(analysis.WasteSummary.TotalWastePercentage)
	if err != nil {
		return models.UserProfile{}, models.MealHistoryRecord{}, err
	}

	var next models.UserProfile
	if current == nil {
		next = models.UserProfile{
			UserID:        userID,
			LikedFoods:    []string{},
			DislikedFoods: []string{},
			CreatedAt:     at,
		}
	} else {
		next = current.Clone()
		if next.UserID == "" {
			next.UserID = userID
		}
	}

	likes := utils.NormalizeFoodNames(analysis.FoodPreferences.LikelyLikes)
	likeSet := make(map[string]struct{}, len(likes))
	for _, food := range likes {
		likeSet[food] = struct{}{}
	}
	var dislikes []string
	for _, food := range utils.NormalizeFoodNames(analysis.FoodPreferences.LikelyDislikes) {
		if _, liked := likeSet[food]; !liked {
			dislikes = append(dislikes, food)
		}
	}

	liked := toSet(next.LikedFoods)
	disliked := toSet(next.DislikedFoods)
	for _, food := range likes {
		liked[food] = struct{}{}
		delete(disliked, food)
	}
	for _, food := range dislikes {
		disliked[food] = struct{}{}
		delete(liked, food)
	}
	next.LikedFoods = sortedKeys(liked)
	next.DislikedFoods = sortedKeys(disliked)

	n := float64(next.MealCount)
	next.TotalWastePercentage = (next.TotalWastePercentage*n + waste) / (n + 1)
	next.MealCount++
	next.UpdatedAt = at

	record := models.MealHistoryRecord{
		UserID:       next.UserID,
		Timestamp:    at,
		OriginalMeal: analysis.OriginalMeal,
		ThrownAway:   append([]models.FoodPortion{}, analysis.ThrownAway...),
		Eaten:        append([]models.FoodPortion{}, analysis.Eaten...),
		FoodPreferences: models.FoodPreferences{
			LikelyLikes:    append([]string{}, analysis.FoodPreferences.LikelyLikes...),
			LikelyDislikes: append([]string{}, analysis.FoodPreferences.LikelyDislikes...),
			Insights:       analysis.FoodPreferences.Insights,
		},
		WasteSummary: analysis.WasteSummary,
	}

	return next, record, nil
}

// ParseWastePercentage accepts "35", "35%", " 35.5 % " and the like.
// Anything unparseable, non-finite or outside [0, 100] is malformed.
func ParseWastePercentage(raw models.FlexString) (float64, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return 0, malformed("waste_summary.total_waste_percentage is required")
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, malformed("waste_summary.total_waste_percentage %q is not a percentage", string(raw))
	}
	if v < 0 || v > 100 {
		return 0, malformed("waste_summary.total_waste_percentage %v is outside 0-100", v)
	}
	return v, nil
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
