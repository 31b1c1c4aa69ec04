package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctordash/models"
)

func TestFormatPhoneNumber(t *testing.T) {
	assert.Equal(t, "919876543210", formatPhoneNumber("+91 98765 43210"))
	assert.Equal(t, "919876543210", formatPhoneNumber("91-9876-543210"))
	assert.Equal(t, "", formatPhoneNumber(""))
	assert.Equal(t, "", formatPhoneNumber("000000000"), "placeholder numbers are rejected")
	assert.Equal(t, "", formatPhoneNumber("not a phone"))
}

func TestWhatsAppSend(t *testing.T) {
	var got whatsAppTextRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pn-123/messages", r.URL.Path)
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch := &WhatsAppChannel{
		httpClient:    &http.Client{Timeout: time.Second},
		apiURL:        srv.URL,
		phoneNumberID: "pn-123",
		accessToken:   "token-abc",
	}

	err := ch.Send(context.Background(),
		models.Recipient{UserID: "user-a", Phone: "+91 98765 43210"},
		models.Message{Body: "hello"})
	require.NoError(t, err)

	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "919876543210", got.To)
	assert.Equal(t, "hello", got.Text.Body)
}

func TestWhatsAppSendRejectsMissingPhone(t *testing.T) {
	ch := &WhatsAppChannel{httpClient: &http.Client{Timeout: time.Second}}
	err := ch.Send(context.Background(), models.Recipient{UserID: "user-a"}, models.Message{Body: "hi"})
	assert.Error(t, err)
}

func TestWhatsAppSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	ch := &WhatsAppChannel{
		httpClient: &http.Client{Timeout: time.Second},
		apiURL:     srv.URL,
	}
	err := ch.Send(context.Background(),
		models.Recipient{UserID: "user-a", Phone: "911234567890"},
		models.Message{Body: "hi"})
	assert.ErrorContains(t, err, "status 401")
}

func TestRegistryGet(t *testing.T) {
	email := NewEmailChannel()
	reg := NewRegistry(email)

	got, err := reg.Get(models.ChannelEmail)
	require.NoError(t, err)
	assert.Equal(t, models.ChannelEmail, got.Kind())

	_, err = reg.Get(models.ChannelPush)
	assert.Error(t, err)
}
