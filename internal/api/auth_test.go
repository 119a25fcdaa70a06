package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesAccount(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/auth/register", `{
		"name": "Ada Lovelace",
		"email": "ada@example.com",
		"password": "testpassword123",
		"username": "ada",
		"timezone": "Europe/London",
		"dietary_preferences": ["vegetarian"],
		"allergies": ["peanuts"]
	}`, "")

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])

	user, ok := resp["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.NotContains(t, w.Body.String(), "password_hash")
}

func TestRegisterRejectsUnknownTimezone(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/auth/register", `{
		"name": "Ada",
		"email": "ada@example.com",
		"password": "testpassword123",
		"username": "ada",
		"timezone": "Narnia/Wardrobe"
	}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown timezone")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "dup@example.com", "first")

	w := api.do(t, http.MethodPost, "/api/v1/auth/register", `{
		"name": "Second",
		"email": "dup@example.com",
		"password": "testpassword123",
		"username": "second"
	}`, "")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "email already registered")
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "first@example.com", "taken")

	w := api.do(t, http.MethodPost, "/api/v1/auth/register", `{
		"name": "Second",
		"email": "second@example.com",
		"password": "testpassword123",
		"username": "taken"
	}`, "")

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/auth/register", `{
		"name": "Ada",
		"email": "ada@example.com",
		"password": "short",
		"username": "ada"
	}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginReturnsWorkingToken(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "login@example.com", "loginuser")

	w := api.do(t, http.MethodPost, "/api/v1/auth/login", `{
		"email": "login@example.com",
		"password": "testpassword123"
	}`, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	// The issued token must open protected routes.
	profile := api.do(t, http.MethodGet, "/api/v1/profile", "", resp.Token)
	assert.Equal(t, http.StatusOK, profile.Code)
	assert.Contains(t, profile.Body.String(), "loginuser")
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "login@example.com", "loginuser")

	w := api.do(t, http.MethodPost, "/api/v1/auth/login", `{
		"email": "login@example.com",
		"password": "not-the-password"
	}`, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/v1/auth/login", `{
		"email": "nobody@example.com",
		"password": "testpassword123"
	}`, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
