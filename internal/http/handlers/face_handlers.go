package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/faceauthsvc/domain"
)

// FaceHandlers handles face authentication HTTP requests
type FaceHandlers struct {
	faceAuthSvc domain.FaceAuthService
	sessionRepo domain.SessionRepository
}

// NewFaceHandlers creates new face handlers
func NewFaceHandlers(faceAuthSvc domain.FaceAuthService, sessionRepo domain.SessionRepository) *FaceHandlers {
	return &FaceHandlers{
		faceAuthSvc: faceAuthSvc,
		sessionRepo: sessionRepo,
	}
}

// FaceLoginRequest represents a face login capture submission
type FaceLoginRequest struct {
	Frames          []string `json:"frames" binding:"required,min=1"`
	ChallengeKind   string   `json:"challengeKind" binding:"required"`
	ChallengePassed bool     `json:"challengePassed"`
	DeviceID        string   `json:"deviceId"`
}

// RegisterFaceRequest represents a face enrollment submission
type RegisterFaceRequest struct {
	Frames    []string `json:"frames" binding:"required,min=1"`
	AccountID string   `json:"accountId"`
	Kind      string   `json:"kind"`
}

// StepUpVerifyRequest represents a step-up code verification
type StepUpVerifyRequest struct {
	StepUpToken string `json:"stepUpToken" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

// FaceLogin handles face-based login
func (h *FaceHandlers) FaceLogin(c *gin.Context) {
	var req FaceLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := &domain.CaptureSession{
		Frames:          req.Frames,
		ChallengeKind:   domain.ChallengeKind(req.ChallengeKind),
		ChallengePassed: req.ChallengePassed,
		DeviceID:        req.DeviceID,
		SourceAddress:   c.ClientIP(),
	}

	result, err := h.faceAuthSvc.Identify(c.Request.Context(), session)
	if err != nil {
		// The decision flow handles its own failures; anything surfacing
		// here is unexpected and still answers with a deny, never a 5xx
		// that would leak service state to an unauthenticated caller.
		c.JSON(http.StatusOK, &domain.FaceLoginResult{
			Decision: domain.DecisionDeny,
			Message:  "Face login failed",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RegisterFace handles face template enrollment (requires authentication)
func (h *FaceHandlers) RegisterFace(c *gin.Context) {
	var req RegisterFaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subjectID, exists := c.Get("subject_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Subject ID not found in context"})
		return
	}
	role, _ := c.Get("subject_role")

	kind := domain.AccountKind(req.Kind)
	if req.Kind == "" {
		kind = domain.AccountKindUser
	}
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid account kind"})
		return
	}

	accountID := req.AccountID
	if accountID == "" {
		accountID = subjectID.(string)
	}

	// Only admins may enroll a template for another account.
	if role != "admin" && (accountID != subjectID.(string) || kind != domain.AccountKindUser) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot enroll a face for another account"})
		return
	}

	result, err := h.faceAuthSvc.RegisterTemplate(c.Request.Context(), kind, accountID, req.Frames)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		case errors.Is(err, domain.ErrEnrollmentFailed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Face enrollment failed"})
		case errors.Is(err, domain.ErrOracleUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Face service unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register face"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message":           "Face registered successfully",
			"accountId":         result.AccountID,
			"hasFaceRegistered": result.HasEnrolledTemplate,
		},
	})
}

// StepUpVerify completes a face login that required additional verification
func (h *FaceHandlers) StepUpVerify(c *gin.Context) {
	var req StepUpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.faceAuthSvc.CompleteStepUp(c.Request.Context(), req.StepUpToken, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStepUpNotFound), errors.Is(err, domain.ErrStepUpExpired):
			c.JSON(http.StatusNotFound, gin.H{"error": "Verification challenge not found or expired"})
		case errors.Is(err, domain.ErrStepUpInvalidCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid verification code"})
		case errors.Is(err, domain.ErrStepUpMaxAttempts):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Maximum attempts exceeded"})
		case errors.Is(err, domain.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Step-up verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Logout revokes the authenticated session (requires authentication)
func (h *FaceHandlers) Logout(c *gin.Context) {
	sessionID, exists := c.Get("session_id")
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID not found"})
		return
	}

	if err := h.sessionRepo.Delete(c.Request.Context(), sessionID.(string)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Logout failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message": "Logged out successfully",
		},
	})
}
