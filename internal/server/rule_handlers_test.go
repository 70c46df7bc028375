package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinDsousa/estoque-mestre-sub001/internal/alerts"
	"github.com/kevinDsousa/estoque-mestre-sub001/internal/config"
	"github.com/kevinDsousa/estoque-mestre-sub001/internal/metrics"
	"github.com/kevinDsousa/estoque-mestre-sub001/internal/rules"
	"github.com/kevinDsousa/estoque-mestre-sub001/internal/sqlite"
	"github.com/kevinDsousa/estoque-mestre-sub001/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := sqlite.New(sqlite.Options{
		Logger: testLogger(),
		Config: config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "rules.db")},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return New(Options{
		Config:   config.Default(),
		Logger:   testLogger(),
		Rules:    rules.NewStore(),
		DB:       db,
		Engine:   alerts.NewEngine(),
		Registry: metrics.NewRegistry(),
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func createRulePayload(id string) models.CreateRuleRequest {
	return models.CreateRuleRequest{
		ID:              id,
		Name:            "Low stock",
		Metric:          "stock_level",
		Condition:       models.ConditionLessThan,
		Threshold:       10,
		Severity:        models.AlertSeverityHigh,
		CooldownMinutes: 15,
		Channels:        []models.AlertChannelType{models.AlertChannelEmail},
	}
}

func TestCreateAndGetRule(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/api/v1/rules", createRulePayload("low_stock"))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	rule, ok := s.rules.Get("low_stock")
	require.True(t, ok)
	assert.Equal(t, 10.0, rule.Threshold)

	persisted, err := s.db.ListRules(context.Background())
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, "low_stock", persisted[0].ID)
}

func TestCreateDuplicateRuleConflict(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/api/v1/rules", createRulePayload("low_stock"))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, s, http.MethodPost, "/api/v1/rules", createRulePayload("low_stock"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Len(t, s.rules.List(), 1)
}

func TestUpdateRollsBackOnPersistFailure(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/api/v1/rules", createRulePayload("low_stock"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// A closed database makes every persistence call fail.
	require.NoError(t, s.db.Close())

	threshold := 99.0
	resp = doJSON(t, s, http.MethodPut, "/api/v1/rules/low_stock", models.UpdateRuleRequest{Threshold: &threshold})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	rule, ok := s.rules.Get("low_stock")
	require.True(t, ok)
	assert.Equal(t, 10.0, rule.Threshold, "failed persistence must not leave the merge in memory")
}

func TestDeleteRestoresRuleOnPersistFailure(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/api/v1/rules", createRulePayload("low_stock"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.NoError(t, s.db.Close())

	resp = doJSON(t, s, http.MethodDelete, "/api/v1/rules/low_stock", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	_, ok := s.rules.Get("low_stock")
	assert.True(t, ok, "failed persistence must not drop the rule from memory")
}

func TestUpdateUnknownRuleReturnsSuccess(t *testing.T) {
	s := newTestServer(t)

	threshold := 5.0
	resp := doJSON(t, s, http.MethodPut, "/api/v1/rules/ghost", models.UpdateRuleRequest{Threshold: &threshold})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeleteUnknownRuleReturnsSuccess(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodDelete, "/api/v1/rules/ghost", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
