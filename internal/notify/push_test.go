package notify

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plateful/backend/config"
	"github.com/plateful/backend/internal/models"
)

// testDevice builds a device with a real P-256 subscription key pair so the
// payload encryption inside webpush succeeds.
func testDevice(t *testing.T, endpoint string) models.Device {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	pub := elliptic.Marshal(elliptic.P256(), key.PublicKey.X, key.PublicKey.Y)

	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	return models.Device{
		Endpoint:  endpoint,
		P256dhKey: base64.RawURLEncoding.EncodeToString(pub),
		AuthKey:   base64.RawURLEncoding.EncodeToString(auth),
	}
}

func newTestSender(t *testing.T) *WebPushSender {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return NewWebPushSender(&config.Config{
		VAPIDPublicKey:  pub,
		VAPIDPrivateKey: priv,
		VAPIDSubject:    "mailto:notifications@plateful.app",
	})
}

func TestWebPushSendDeliversEncryptedPayload(t *testing.T) {
	var (
		encoding string
		ttl      string
		auth     string
		bodyLen  int
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		encoding = r.Header.Get("Content-Encoding")
		ttl = r.Header.Get("TTL")
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		bodyLen = len(body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	sender := newTestSender(t)
	err := sender.Send(context.Background(), testDevice(t, server.URL), PushPayload{
		Title: "Lunch time",
		Body:  "Take a break and log your lunch.",
	})
	require.NoError(t, err)

	assert.Equal(t, "aes128gcm", encoding)
	assert.Equal(t, "86400", ttl)
	assert.True(t, strings.HasPrefix(auth, "vapid t="), "missing VAPID authorization, got %q", auth)
	assert.Greater(t, bodyLen, 0)
}

func TestWebPushSendMapsDeadEndpointsToErrExpired(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusGone} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		sender := newTestSender(t)
		err := sender.Send(context.Background(), testDevice(t, server.URL), PushPayload{Title: "x"})
		assert.ErrorIs(t, err, ErrExpired, "status %d", status)
		server.Close()
	}
}

func TestWebPushSendReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	sender := newTestSender(t)
	err := sender.Send(context.Background(), testDevice(t, server.URL), PushPayload{Title: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExpired)
	assert.Contains(t, err.Error(), "500")
}
