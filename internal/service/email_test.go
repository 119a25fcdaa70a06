package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plateful/backend/config"
	"github.com/plateful/backend/internal/models"
)

func TestSendEmailWithoutSMTPConfigured(t *testing.T) {
	svc := NewEmailService(&config.Config{FrontendURL: "http://localhost:5173"})

	// No SMTP host means the mail is logged, not an error.
	err := svc.SendEmail("user@example.com", "subject", "<p>body</p>")
	assert.NoError(t, err)
}

func TestReminderEmailBody(t *testing.T) {
	svc := NewEmailService(&config.Config{FrontendURL: "https://app.plateful.example"})
	user := &models.User{Name: "Sam", Email: "sam@example.com"}

	body := svc.buildReminderEmailBody(user, "Breakfast", "Time for breakfast! You planned it for 08:00.")
	assert.True(t, strings.Contains(body, "Sam"))
	assert.True(t, strings.Contains(body, "Time for breakfast!"))
	assert.True(t, strings.Contains(body, "https://app.plateful.example/settings"))
}

func TestSendReminderEmailTitlesSubject(t *testing.T) {
	svc := NewEmailService(&config.Config{})
	user := &models.User{Name: "Sam", Email: "sam@example.com"}

	// Unconfigured SMTP keeps this side effect free.
	err := svc.SendReminderEmail(user, "water", "Time to drink some water.")
	assert.NoError(t, err)
}
