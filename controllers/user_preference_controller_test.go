package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platewise_server/services"
)

const loadedFries = `{
	"original_meal": {"name": "Loaded Fries", "description": "Fries topped with cheese"},
	"thrown_away": [{"item": "toppings (cheese, jalapenos)", "quantity": "1/8 cup", "percentage_of_original": "40%"}],
	"eaten": [{"item": "fries", "quantity": "2/3 cup", "percentage_of_original": "70%"}],
	"food_preferences": {"likely_likes": ["fries"], "likely_dislikes": ["toppings"], "insights": "Prefers plain fries."},
	"waste_summary": {"total_waste_percentage": "35%", "waste_value": "medium"}
}`

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	svc := services.NewUserPreferenceService(services.NewMemoryStore(), nil)
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/health", HealthCheckHandler("memory")).Methods("GET")
	r.NotFoundHandler = http.HandlerFunc(NotFoundHandler)
	ctrl := NewUserPreferenceController(svc, nil)
	user := r.PathPrefix("/api/user").Subrouter()
	user.HandleFunc("/create", ctrl.CreateUser).Methods("POST")
	user.HandleFunc("/preferences/update", ctrl.UpdatePreferences).Methods("POST")
	user.HandleFunc("/{userId}/summary", ctrl.GetUserSummary).Methods("GET")
	user.HandleFunc("/{userId}/history", ctrl.GetMealHistory).Methods("GET")
	user.HandleFunc("/{userId}", ctrl.GetUser).Methods("GET")
	user.HandleFunc("/{userId}", ctrl.DeleteUser).Methods("DELETE")
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func updateBody(userID, analysis string) string {
	return `{"user_id": "` + userID + `", "waste_analysis": ` + analysis + `}`
}

func TestUserPreferenceController(t *testing.T) {
	t.Run("Should fold an analysis into a new profile", func(t *testing.T) {
		r := newTestRouter(t)
		rec, out := do(t, r, "POST", "/api/user/preferences/update", updateBody("user123", loadedFries))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, true, out["success"])
		user := out["user"].(map[string]interface{})
		assert.Equal(t, []interface{}{"fries"}, user["liked_foods"])
		assert.Equal(t, []interface{}{"toppings"}, user["disliked_foods"])
		assert.EqualValues(t, 1, user["meal_count"])
		assert.EqualValues(t, 35, user["total_waste_percentage"])
	})

	t.Run("Should map malformed analyses to 400 and keep the profile", func(t *testing.T) {
		r := newTestRouter(t)
		rec, _ := do(t, r, "POST", "/api/user/preferences/update", updateBody("user123", loadedFries))
		require.Equal(t, http.StatusOK, rec.Code)

		bad := strings.Replace(loadedFries, `"35%"`, `"not a number"`, 1)
		rec, out := do(t, r, "POST", "/api/user/preferences/update", updateBody("user123", bad))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, false, out["success"])
		assert.Contains(t, out["error"], "total_waste_percentage")

		rec, out = do(t, r, "GET", "/api/user/user123", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 1, out["user"].(map[string]interface{})["meal_count"])
	})

	t.Run("Should require user_id and waste_analysis", func(t *testing.T) {
		r := newTestRouter(t)
		rec, out := do(t, r, "POST", "/api/user/preferences/update", `{"waste_analysis": `+loadedFries+`}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, out["error"], "user_id is required")

		rec, out = do(t, r, "POST", "/api/user/preferences/update", `{"user_id": "u"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, out["error"], "waste_analysis is required")

		rec, _ = do(t, r, "POST", "/api/user/preferences/update", `not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should create users and reject duplicates", func(t *testing.T) {
		r := newTestRouter(t)
		rec, out := do(t, r, "POST", "/api/user/create", `{"user_id": "user123", "user_name": "John Doe"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "John Doe", out["user"].(map[string]interface{})["user_name"])

		rec, out = do(t, r, "POST", "/api/user/create", `{"user_id": "user123"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "User already exists", out["error"])
	})

	t.Run("Should return 404 for unknown users", func(t *testing.T) {
		r := newTestRouter(t)
		for _, tc := range []struct{ method, path string }{
			{"GET", "/api/user/ghost"},
			{"GET", "/api/user/ghost/summary"},
			{"DELETE", "/api/user/ghost"},
		} {
			rec, out := do(t, r, tc.method, tc.path, "")
			assert.Equal(t, http.StatusNotFound, rec.Code, tc.path)
			assert.Equal(t, "User not found", out["error"])
		}
	})

	t.Run("Should list history newest first and summarize", func(t *testing.T) {
		r := newTestRouter(t)
		second := strings.Replace(loadedFries, `"35%"`, `20`, 1)
		second = strings.Replace(second, `"likely_likes": ["fries"], "likely_dislikes": ["toppings"]`, `"likely_likes": ["Toppings"], "likely_dislikes": []`, 1)
		_, _ = do(t, r, "POST", "/api/user/preferences/update", updateBody("user123", loadedFries))
		rec, out := do(t, r, "POST", "/api/user/preferences/update", updateBody("user123", second))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		user := out["user"].(map[string]interface{})
		assert.Equal(t, []interface{}{"fries", "toppings"}, user["liked_foods"])
		assert.Equal(t, []interface{}{}, user["disliked_foods"])
		assert.EqualValues(t, 27.5, user["total_waste_percentage"])

		rec, out = do(t, r, "GET", "/api/user/user123/history?limit=1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 1, out["count"])
		history := out["history"].([]interface{})
		latest := history[0].(map[string]interface{})
		assert.Equal(t, "20", latest["waste_summary"].(map[string]interface{})["total_waste_percentage"])

		rec, out = do(t, r, "GET", "/api/user/user123/summary", "")
		require.Equal(t, http.StatusOK, rec.Code)
		summary := out["summary"].(map[string]interface{})
		assert.EqualValues(t, 2, summary["total_meals_analyzed"])
		assert.EqualValues(t, 27.5, summary["average_waste_percentage"])
		assert.Len(t, summary["recent_meals"], 2)
	})

	t.Run("Should delete a user", func(t *testing.T) {
		r := newTestRouter(t)
		_, _ = do(t, r, "POST", "/api/user/preferences/update", updateBody("user123", loadedFries))
		rec, out := do(t, r, "DELETE", "/api/user/user123", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "User deleted successfully", out["message"])

		rec, out = do(t, r, "GET", "/api/user/user123/history", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 0, out["count"])
	})

	t.Run("Should answer health and unknown routes with JSON", func(t *testing.T) {
		r := newTestRouter(t)
		rec, out := do(t, r, "GET", "/api/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "healthy", out["status"])
		assert.Equal(t, "memory", out["database"])

		rec, out = do(t, r, "GET", "/api/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Endpoint not found", out["error"])
	})
}
