package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/faceauthsvc/domain"
)

func testSession() *domain.CaptureSession {
	return &domain.CaptureSession{
		Frames:          []string{"ZnJhbWUx", "ZnJhbWUy"},
		ChallengeKind:   domain.ChallengeBlink,
		ChallengePassed: true,
		SourceAddress:   "203.0.113.9",
	}
}

func TestClient_Identify_MatchedVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/faces/identify", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "BLINK", req["challenge_type"])
		assert.Equal(t, true, req["challenge_passed"])

		json.NewEncoder(w).Encode(map[string]any{
			"success":        true,
			"external_id":    "user-42",
			"type":           "USER",
			"is_live":        true,
			"liveness_score": 0.91,
			"similarity":     0.80,
			"distance":       0.20,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	verdict, err := client.Identify(context.Background(), testSession())

	require.NoError(t, err)
	assert.True(t, verdict.Matched)
	assert.Equal(t, "user-42", verdict.ExternalID)
	assert.Equal(t, domain.AccountKindUser, verdict.Kind)
	assert.True(t, verdict.IsLive)
	assert.InDelta(t, 0.91, verdict.LivenessScore, 1e-9)
	require.NotNil(t, verdict.Distance)
	assert.InDelta(t, 0.20, *verdict.Distance, 1e-9)
}

func TestClient_Identify_NoMatchIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success":        false,
			"is_live":        true,
			"liveness_score": 0.85,
			"similarity":     0.41,
			"distance":       0.59,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	verdict, err := client.Identify(context.Background(), testSession())

	require.NoError(t, err)
	assert.False(t, verdict.Matched)
	assert.Empty(t, verdict.ExternalID)
	assert.True(t, verdict.IsLive)
}

func TestClient_Identify_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	_, err := client.Identify(context.Background(), testSession())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOracleUnavailable))
}

func TestClient_Identify_TransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := NewClient(srv.URL, time.Second, nil)
	_, err := client.Identify(context.Background(), testSession())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOracleUnavailable))
}

func TestClient_Identify_TimeoutIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "is_live": true})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Identify(ctx, testSession())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOracleUnavailable))
}

func TestClient_Enroll_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/faces/register", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "admin-7", req["external_id"])
		assert.Equal(t, "ADMIN", req["type"])

		json.NewEncoder(w).Encode(map[string]any{
			"success":     true,
			"face_id":     "f-1",
			"external_id": "admin-7",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	err := client.Enroll(context.Background(), domain.AccountKindAdmin, "admin-7", []string{"ZnJhbWU="})

	require.NoError(t, err)
}

func TestClient_Enroll_ClientErrorCarriesReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "No face detected in registration frames"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	err := client.Enroll(context.Background(), domain.AccountKindUser, "user-1", []string{"ZnJhbWU="})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEnrollmentFailed))
	assert.Contains(t, err.Error(), "No face detected")
}

func TestClient_Enroll_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, nil)
	err := client.Enroll(context.Background(), domain.AccountKindUser, "user-1", []string{"ZnJhbWU="})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrOracleUnavailable))
}
