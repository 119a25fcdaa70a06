package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSuggestionStoresMeal(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register(t, "meals@example.com", "mealsuser")

	w := api.do(t, http.MethodPost, "/api/v1/suggestions", `{
		"meal_kind": "breakfast",
		"query": "avocado toast"
	}`, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var suggestion struct {
		Name     string   `json:"name"`
		MealKind string   `json:"meal_kind"`
		Calories float64  `json:"calories"`
		Items    []string `json:"ingredients"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &suggestion))
	assert.Equal(t, "avocado toast", suggestion.Name)
	assert.Equal(t, "breakfast", suggestion.MealKind)
	assert.Equal(t, float64(350), suggestion.Calories)
	assert.Len(t, suggestion.Items, 2)

	list := api.do(t, http.MethodGet, "/api/v1/suggestions", "", token)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "avocado toast")
}

func TestGenerateThreadsDietaryProfile(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/auth/register", `{
		"name": "Diet User",
		"email": "diet@example.com",
		"password": "testpassword123",
		"username": "dietuser",
		"dietary_preferences": ["vegan"],
		"allergies": ["tree nuts"]
	}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	gen := api.do(t, http.MethodPost, "/api/v1/suggestions", `{"meal_kind": "dinner"}`, resp.Token)
	require.Equal(t, http.StatusCreated, gen.Code, gen.Body.String())

	assert.Equal(t, []string{"vegan"}, api.llm.lastPrefs)
	assert.Equal(t, []string{"tree nuts"}, api.llm.lastAllergens)
}

func TestGenerateRejectsUnknownMealKind(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register(t, "meals@example.com", "mealsuser")

	w := api.do(t, http.MethodPost, "/api/v1/suggestions", `{"meal_kind": "brunch"}`, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateReportsUnusableModelReply(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register(t, "meals@example.com", "mealsuser")
	api.llm.reply = "sorry, I cannot help with that"

	w := api.do(t, http.MethodPost, "/api/v1/suggestions", `{"meal_kind": "lunch"}`, token)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "unusable suggestion")
}

func TestListSuggestionsHonorsLimit(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register(t, "meals@example.com", "mealsuser")

	for _, query := range []string{"oatmeal", "granola", "omelette"} {
		w := api.do(t, http.MethodPost, "/api/v1/suggestions", `{"meal_kind": "breakfast", "query": "`+query+`"}`, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := api.do(t, http.MethodGet, "/api/v1/suggestions?limit=2", "", token)
	require.Equal(t, http.StatusOK, w.Code)

	var suggestions []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &suggestions))
	assert.Len(t, suggestions, 2)
}

func TestSimilarRequiresQuery(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register(t, "meals@example.com", "mealsuser")

	w := api.do(t, http.MethodGet, "/api/v1/suggestions/similar", "", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSimilarFindsKeywordMatches(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register(t, "meals@example.com", "mealsuser")

	for _, meal := range []struct{ kind, query string }{
		{"breakfast", "avocado toast"},
		{"dinner", "beef stew"},
	} {
		w := api.do(t, http.MethodPost, "/api/v1/suggestions", `{"meal_kind": "`+meal.kind+`", "query": "`+meal.query+`"}`, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := api.do(t, http.MethodGet, "/api/v1/suggestions/similar?q=avocado", "", token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var matches []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "avocado toast", matches[0].Name)
}

func TestSuggestionsRequireAuth(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/suggestions", `{"meal_kind": "lunch"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
