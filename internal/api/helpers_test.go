package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plateful/backend/config"
	"github.com/plateful/backend/internal/service"
	"github.com/plateful/backend/internal/testhelpers"
)

// stubLLM answers every generation request with a well formed meal named
// after the query, which keeps handler tests deterministic and offline.
type stubLLM struct {
	err           error
	reply         string
	lastPrefs     []string
	lastAllergens []string
}

func (s *stubLLM) GenerateMeal(ctx context.Context, query, kind string, dietaryPrefs, allergens []string) (string, error) {
	s.lastPrefs = dietaryPrefs
	s.lastAllergens = allergens
	if s.err != nil {
		return "", s.err
	}
	if s.reply != "" {
		return s.reply, nil
	}
	name := query
	if name == "" {
		name = "house " + kind
	}
	return fmt.Sprintf(`{"name":%q,"description":"a simple %s","ingredients":["one","two"],"calories":350,"protein":20,"carbs":40,"fat":10}`, name, kind), nil
}

// stubStorage keeps avatar bytes in memory and applies the same content
// type allow-list as the S3 implementation.
type stubStorage struct {
	uploads map[string][]byte
}

func (s *stubStorage) UploadAvatar(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (string, error) {
	switch contentType {
	case "image/png", "image/jpeg", "image/webp":
	default:
		return "", service.ErrUnsupportedImageType
	}
	if s.uploads == nil {
		s.uploads = make(map[string][]byte)
	}
	url := "https://avatars.test/" + userID.String()
	s.uploads[url] = data
	return url, nil
}

func (s *stubStorage) DeleteAvatar(ctx context.Context, avatarURL string) error {
	delete(s.uploads, avatarURL)
	return nil
}

type testAPI struct {
	router  *gin.Engine
	db      *gorm.DB
	llm     *stubLLM
	storage *stubStorage
}

func newTestAPI(t *testing.T) *testAPI {
	return newTestAPIWithConfig(t, &config.Config{VAPIDPublicKey: "test-vapid-public-key"})
}

func newTestAPIWithConfig(t *testing.T, cfg *config.Config) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLite(t)
	llm := &stubLLM{}
	storage := &stubStorage{}
	profiles := service.NewProfileService(db)

	svcs := Services{
		Auth:        service.NewAuthService(db, "test-secret", "UTC"),
		Profiles:    profiles,
		Preferences: service.NewPreferenceService(db),
		Suggestions: service.NewSuggestionService(db, llm, service.NewEmbeddingService(), profiles, nil),
		Storage:     storage,
	}

	router := gin.New()
	RegisterRoutes(router, nil, svcs, nil, cfg)

	return &testAPI{router: router, db: db, llm: llm, storage: storage}
}

func (a *testAPI) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// register creates an account through the public endpoint and returns its
// id and bearer token.
func (a *testAPI) register(t *testing.T, email, username string) (uuid.UUID, string) {
	t.Helper()

	body := fmt.Sprintf(`{"name":"Test User","email":%q,"password":"testpassword123","username":%q,"timezone":"America/New_York"}`, email, username)
	w := a.do(t, http.MethodPost, "/api/v1/auth/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		User struct {
			ID uuid.UUID `json:"id"`
		} `json:"user"`
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEqual(t, uuid.Nil, resp.User.ID)
	require.NotEmpty(t, resp.Token)
	return resp.User.ID, resp.Token
}
