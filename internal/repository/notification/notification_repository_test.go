package notification

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAlert(t *testing.T) {
	var got payloadSendEmail
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3.1/send", r.URL.Path)
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := NewMailjetRepository(MailjetConfig{
		MailjetBaseURL:           srv.URL,
		MailjetBasicAuthUsername: "key",
		MailjetBasicAuthPassword: "secret",
		MailjetSenderEmail:       "noreply@quixell.test",
		MailjetSenderName:        "Quixell",
		AlertRecipientEmail:      "ops@quixell.test",
		AlertRecipientName:       "Ops",
	})

	err := repo.SendAlert(context.Background(), "Data inconsistency", "product 7 missing")
	require.NoError(t, err)

	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("key:secret")), auth)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "Data inconsistency", got.Messages[0].Subject)
	assert.Equal(t, "ops@quixell.test", got.Messages[0].To[0].Email)
	assert.Equal(t, "noreply@quixell.test", got.Messages[0].From.Email)
}

func TestSendAlertNegativeResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	repo := NewMailjetRepository(MailjetConfig{MailjetBaseURL: srv.URL, AlertRecipientEmail: "ops@quixell.test"})

	err := repo.SendAlert(context.Background(), "s", "m")
	assert.EqualError(t, err, "mailer service return negative response 401")
}

func TestSendAlertDisabled(t *testing.T) {
	repo := NewMailjetRepository(MailjetConfig{})

	assert.False(t, repo.Enabled())
	assert.NoError(t, repo.SendAlert(context.Background(), "s", "m"))
}
