package alerts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

func webhookNotification() AlertNotification {
	return AlertNotification{
		Alert:     storedAlert("a_1"),
		Rule:      fanoutRule(models.AlertChannelWebhook),
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Source:    "estoque-mestre",
	}
}

func TestWebhookSendIsolatesPerURLFailures(t *testing.T) {
	var received webhookPayload
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sink on fire", http.StatusInternalServerError)
	}))
	defer bad.Close()

	s := NewWebhookSender(WebhookSenderOptions{
		URLs:   []string{bad.URL, good.URL},
		Logger: testLogger(),
	})

	err := s.Send(context.Background(), webhookNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad.URL)
	assert.Contains(t, err.Error(), "sink on fire")
	assert.NotContains(t, err.Error(), good.URL)

	assert.Equal(t, "a_1", received.Alert.ID, "healthy sink still receives the payload")
	assert.Equal(t, "low_stock", received.Rule.ID)
	assert.Equal(t, "estoque-mestre", received.Source)
}

func TestWebhookSendAllSinksSucceed(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	s := NewWebhookSender(WebhookSenderOptions{
		URLs:   []string{srv.URL, srv.URL},
		Logger: testLogger(),
	})

	require.NoError(t, s.Send(context.Background(), webhookNotification()))
	assert.Equal(t, 2, calls)
}

func TestWebhookSendNoURLsLogsOnly(t *testing.T) {
	s := NewWebhookSender(WebhookSenderOptions{Logger: testLogger()})
	assert.NoError(t, s.Send(context.Background(), webhookNotification()))
}

func TestWebhookSendUnreachableSink(t *testing.T) {
	s := NewWebhookSender(WebhookSenderOptions{
		URLs:    []string{"http://127.0.0.1:1/hook"},
		Timeout: time.Second,
		Logger:  testLogger(),
	})
	assert.Error(t, s.Send(context.Background(), webhookNotification()))
}
