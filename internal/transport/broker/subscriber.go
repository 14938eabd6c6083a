package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/you/faceauthsvc/domain"
)

// Request subjects served by the face authentication broker edge.
const (
	SubjectFaceLogin    = "auth.face.login"
	SubjectFaceRegister = "auth.face.register"
	SubjectStepUpVerify = "auth.face.stepup.verify"
)

const requestTimeout = 10 * time.Second

// Subscriber answers face authentication requests over NATS request-reply.
// Payloads mirror the HTTP wire format so internal services and the public
// edge speak the same shapes.
type Subscriber struct {
	nc          *nats.Conn
	faceAuthSvc domain.FaceAuthService
	logger      *slog.Logger

	subs []*nats.Subscription
}

// LoginRequest is the broker payload for a face login attempt.
type LoginRequest struct {
	Frames          []string `json:"frames"`
	ChallengeKind   string   `json:"challengeKind"`
	ChallengePassed bool     `json:"challengePassed"`
	DeviceID        string   `json:"deviceId"`
	SourceAddress   string   `json:"sourceAddress"`
}

// RegisterRequest is the broker payload for a face enrollment.
type RegisterRequest struct {
	Kind      string   `json:"kind"`
	AccountID string   `json:"accountId"`
	Frames    []string `json:"frames"`
}

// StepUpVerifyRequest is the broker payload for completing a step-up challenge.
type StepUpVerifyRequest struct {
	StepUpToken string `json:"stepUpToken"`
	Code        string `json:"code"`
}

type errorReply struct {
	Error string `json:"error"`
}

// NewSubscriber creates a broker subscriber bound to a NATS connection.
func NewSubscriber(nc *nats.Conn, faceAuthSvc domain.FaceAuthService, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{nc: nc, faceAuthSvc: faceAuthSvc, logger: logger}
}

// Start subscribes to all face authentication subjects.
func (s *Subscriber) Start() error {
	handlers := map[string]func(context.Context, []byte) []byte{
		SubjectFaceLogin:    s.HandleLogin,
		SubjectFaceRegister: s.HandleRegister,
		SubjectStepUpVerify: s.HandleStepUpVerify,
	}

	for subject, handler := range handlers {
		handler := handler
		sub, err := s.nc.Subscribe(subject, func(msg *nats.Msg) {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()

			if err := msg.Respond(handler(ctx, msg.Data)); err != nil {
				s.logger.Error("failed to respond to broker request",
					slog.String("subject", msg.Subject), slog.String("error", err.Error()))
			}
		})
		if err != nil {
			s.Close()
			return err
		}
		s.subs = append(s.subs, sub)
	}

	return nil
}

// Close drains all subscriptions.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Drain()
	}
	s.subs = nil
}

// HandleLogin answers a face login request.
func (s *Subscriber) HandleLogin(ctx context.Context, data []byte) []byte {
	var req LoginRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return s.marshal(errorReply{Error: "invalid request payload"})
	}
	if len(req.Frames) == 0 {
		return s.marshal(errorReply{Error: "frames are required"})
	}

	session := &domain.CaptureSession{
		Frames:          req.Frames,
		ChallengeKind:   domain.ChallengeKind(req.ChallengeKind),
		ChallengePassed: req.ChallengePassed,
		DeviceID:        req.DeviceID,
		SourceAddress:   req.SourceAddress,
	}

	result, err := s.faceAuthSvc.Identify(ctx, session)
	if err != nil {
		s.logger.Error("broker face login failed", slog.String("error", err.Error()))
		return s.marshal(&domain.FaceLoginResult{
			Decision: domain.DecisionDeny,
			Message:  "Face login failed",
		})
	}

	return s.marshal(result)
}

// HandleRegister answers a face enrollment request. Broker callers are
// internal services, so no ownership check applies here.
func (s *Subscriber) HandleRegister(ctx context.Context, data []byte) []byte {
	var req RegisterRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return s.marshal(errorReply{Error: "invalid request payload"})
	}

	kind := domain.AccountKind(req.Kind)
	if req.Kind == "" {
		kind = domain.AccountKindUser
	}
	if !kind.Valid() || req.AccountID == "" || len(req.Frames) == 0 {
		return s.marshal(errorReply{Error: "kind, accountId and frames are required"})
	}

	result, err := s.faceAuthSvc.RegisterTemplate(ctx, kind, req.AccountID, req.Frames)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			return s.marshal(errorReply{Error: "account not found"})
		case errors.Is(err, domain.ErrEnrollmentFailed):
			return s.marshal(errorReply{Error: "face enrollment failed"})
		default:
			return s.marshal(errorReply{Error: "face service unavailable"})
		}
	}

	return s.marshal(result)
}

// HandleStepUpVerify answers a step-up completion request.
func (s *Subscriber) HandleStepUpVerify(ctx context.Context, data []byte) []byte {
	var req StepUpVerifyRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return s.marshal(errorReply{Error: "invalid request payload"})
	}
	if req.StepUpToken == "" || req.Code == "" {
		return s.marshal(errorReply{Error: "stepUpToken and code are required"})
	}

	result, err := s.faceAuthSvc.CompleteStepUp(ctx, req.StepUpToken, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStepUpNotFound), errors.Is(err, domain.ErrStepUpExpired):
			return s.marshal(errorReply{Error: "verification challenge not found or expired"})
		case errors.Is(err, domain.ErrStepUpInvalidCode):
			return s.marshal(errorReply{Error: "invalid verification code"})
		case errors.Is(err, domain.ErrStepUpMaxAttempts):
			return s.marshal(errorReply{Error: "maximum attempts exceeded"})
		default:
			return s.marshal(errorReply{Error: "step-up verification failed"})
		}
	}

	return s.marshal(result)
}

func (s *Subscriber) marshal(v interface{}) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to marshal broker reply", slog.String("error", err.Error()))
		return []byte(`{"error":"internal error"}`)
	}
	return data
}
