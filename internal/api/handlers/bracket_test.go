package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelist/stockduel/internal/contracts"
	"github.com/duelist/stockduel/pkg/logger"
)

func newRouter(env *testEnv) *mux.Router {
	log := logger.NewNop()
	h := NewBracketHandler(env.service, log)
	p := NewPersonalityHandler(env.registry)

	r := mux.NewRouter()
	r.HandleFunc("/api/brackets", h.Create).Methods("POST")
	r.HandleFunc("/api/brackets/{id}", h.Get).Methods("GET")
	r.HandleFunc("/api/brackets/{id}/refresh", h.Refresh).Methods("POST")
	r.HandleFunc("/api/users/{userId}/brackets", h.ListByUser).Methods("GET")
	r.HandleFunc("/api/personalities", p.List).Methods("GET")
	return r
}

func TestCreateBracketEndpoint(t *testing.T) {
	env := newTestEnv(t)
	router := newRouter(env)

	body := `{
		"user_id": "alice",
		"timeframe": "daily",
		"size": 3,
		"user_entries": [
			{"symbol": "AAPL", "direction": "bullish"},
			{"symbol": "MSFT", "direction": "bullish"},
			{"symbol": "GOOGL", "direction": "bearish"}
		]
	}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/brackets", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var got contracts.Bracket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, contracts.StatusPending, got.Status)
	assert.Len(t, got.UserEntries, 3)
	assert.Len(t, got.AIEntries, 3)
}

func TestCreateBracketEndpointRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	router := newRouter(env)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"bad size", `{"user_id":"alice","timeframe":"daily","size":4,"user_entries":[]}`},
		{"missing user", `{"timeframe":"daily","size":3,"user_entries":[]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/brackets", bytes.NewBufferString(tc.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateBracketEndpointUnknownPersonality(t *testing.T) {
	env := newTestEnv(t)
	router := newRouter(env)

	body := `{
		"user_id": "alice",
		"timeframe": "daily",
		"size": 3,
		"personality_id": "day_trader",
		"user_entries": [
			{"symbol": "AAPL", "direction": "bullish"},
			{"symbol": "MSFT", "direction": "bullish"},
			{"symbol": "GOOGL", "direction": "bearish"}
		]
	}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/brackets", bytes.NewBufferString(body)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetBracketEndpoint(t *testing.T) {
	env := newTestEnv(t)
	router := newRouter(env)
	b := env.createBracket(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/brackets/"+b.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got contracts.Bracket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, b.ID, got.ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/brackets/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshBracketEndpoint(t *testing.T) {
	env := newTestEnv(t)
	router := newRouter(env)
	b := env.createBracket(t)

	env.setNow(b.StartDate.Add(time.Hour))
	env.market.setPrice("AAPL", 110)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", fmt.Sprintf("/api/brackets/%s/refresh", b.ID), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got contracts.Bracket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, contracts.StatusActive, got.Status)
	require.NotNil(t, got.UserEntries[0].PercentChange)
	assert.InDelta(t, 10.0, *got.UserEntries[0].PercentChange, 1e-9)
}

func TestListUserBracketsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	router := newRouter(env)
	env.createBracket(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/users/alice/brackets", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []contracts.Bracket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 1)

	// Unknown users get an empty list, not null
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/users/bob/brackets", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestListPersonalitiesEndpoint(t *testing.T) {
	env := newTestEnv(t)
	router := newRouter(env)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/personalities", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []contracts.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 6)
}
