package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/you/faceauthsvc/domain"
)

// Client implements domain.OracleClient against the external face service.
// Any transport failure, timeout or 5xx surfaces as
// domain.ErrOracleUnavailable; a clean "no such face" verdict does not.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an oracle client with a bounded request timeout. The
// per-call context deadline set by the engine still applies on top of it.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type enrollRequest struct {
	ExternalID string   `json:"external_id"`
	Type       string   `json:"type"`
	Frames     []string `json:"frames"`
}

type enrollResponse struct {
	Success    bool   `json:"success"`
	FaceID     string `json:"face_id"`
	ExternalID string `json:"external_id"`
}

type identifyRequest struct {
	Frames          []string `json:"frames"`
	ChallengeType   string   `json:"challenge_type"`
	ChallengePassed bool     `json:"challenge_passed"`
}

type identifyResponse struct {
	Success       bool     `json:"success"`
	ExternalID    string   `json:"external_id"`
	Type          string   `json:"type"`
	IsLive        bool     `json:"is_live"`
	LivenessScore float64  `json:"liveness_score"`
	Similarity    *float64 `json:"similarity"`
	Distance      *float64 `json:"distance"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Enroll registers a biometric template keyed by the external identifier.
// Re-registration overwrites the prior template; the oracle owns that
// semantic.
func (c *Client) Enroll(ctx context.Context, kind domain.AccountKind, externalID string, frames []string) error {
	body, err := json.Marshal(enrollRequest{
		ExternalID: externalID,
		Type:       string(kind),
		Frames:     frames,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal enroll request: %w", err)
	}

	resp, err := c.post(ctx, "/faces/register", body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var er enrollResponse
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			return fmt.Errorf("%w: failed to decode enroll response: %v", domain.ErrOracleUnavailable, err)
		}
		if !er.Success {
			return fmt.Errorf("%w: oracle rejected enrollment", domain.ErrEnrollmentFailed)
		}
		c.logger.Info("face template enrolled", "external_id", externalID, "kind", kind)
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: %s", domain.ErrEnrollmentFailed, readDetail(resp.Body))
	default:
		return fmt.Errorf("%w: oracle returned status %d", domain.ErrOracleUnavailable, resp.StatusCode)
	}
}

// Identify submits a capture session for matching against all enrolled
// templates plus liveness evaluation, in one round trip.
func (c *Client) Identify(ctx context.Context, session *domain.CaptureSession) (*domain.OracleVerdict, error) {
	body, err := json.Marshal(identifyRequest{
		Frames:          session.Frames,
		ChallengeType:   string(session.ChallengeKind),
		ChallengePassed: session.ChallengePassed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal identify request: %w", err)
	}

	resp, err := c.post(ctx, "/faces/identify", body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: oracle returned status %d: %s",
			domain.ErrOracleUnavailable, resp.StatusCode, readDetail(resp.Body))
	}

	var ir identifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return nil, fmt.Errorf("%w: failed to decode identify response: %v", domain.ErrOracleUnavailable, err)
	}

	verdict := &domain.OracleVerdict{
		Matched:       ir.Success,
		ExternalID:    ir.ExternalID,
		Kind:          domain.AccountKind(ir.Type),
		IsLive:        ir.IsLive,
		LivenessScore: ir.LivenessScore,
		Similarity:    ir.Similarity,
		Distance:      ir.Distance,
	}

	c.logger.Info("oracle identify completed",
		"matched", verdict.Matched,
		"is_live", verdict.IsLive,
		"liveness_score", verdict.LivenessScore,
	)

	return verdict, nil
}

// HealthCheck verifies the oracle is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check returned status %d", domain.ErrOracleUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

func readDetail(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, 4096))
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Detail != "" {
		return er.Detail
	}
	return string(raw)
}
