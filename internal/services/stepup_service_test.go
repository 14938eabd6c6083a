package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/you/faceauthsvc/domain"
	"github.com/you/faceauthsvc/internal/mocks"
)

var codePattern = regexp.MustCompile(`\d{6}`)

func setupStepUp(t *testing.T) (domain.StepUpService, *mocks.MockNotificationService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	notifications := mocks.NewMockNotificationService()

	svc := NewStepUpService(notifications, client, StepUpConfig{
		CodeLength:   6,
		TTL:          5 * time.Minute,
		MaxAttempts:  3,
		ResendWindow: time.Minute,
	})
	return svc, notifications, mr
}

func stepUpAccount() *domain.Account {
	return &domain.Account{
		ID:    "acc-1",
		Kind:  domain.AccountKindUser,
		Phone: "+15550002222",
	}
}

func sentCode(t *testing.T, notifications *mocks.MockNotificationService) string {
	t.Helper()
	if len(notifications.SentMessages) == 0 {
		t.Fatal("no SMS was sent")
	}
	code := codePattern.FindString(notifications.SentMessages[len(notifications.SentMessages)-1])
	if code == "" {
		t.Fatalf("no code in message %q", notifications.SentMessages[len(notifications.SentMessages)-1])
	}
	return code
}

func TestStepUpService_OpenAndVerify(t *testing.T) {
	svc, notifications, _ := setupStepUp(t)

	token, err := svc.Open(context.Background(), stepUpAccount())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a challenge token")
	}

	claim, err := svc.Verify(context.Background(), token, sentCode(t, notifications))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claim.AccountID != "acc-1" || claim.Kind != domain.AccountKindUser {
		t.Errorf("unexpected claim: %+v", claim)
	}

	// Challenge is single-use.
	_, err = svc.Verify(context.Background(), token, sentCode(t, notifications))
	if !errors.Is(err, domain.ErrStepUpNotFound) {
		t.Errorf("expected ErrStepUpNotFound after consumption, got %v", err)
	}
}

func TestStepUpService_WrongCode(t *testing.T) {
	svc, notifications, _ := setupStepUp(t)

	token, err := svc.Open(context.Background(), stepUpAccount())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Verify(context.Background(), token, "000000")
	if !errors.Is(err, domain.ErrStepUpInvalidCode) {
		t.Fatalf("expected ErrStepUpInvalidCode, got %v", err)
	}

	// Correct code still works after a single miss.
	if _, err := svc.Verify(context.Background(), token, sentCode(t, notifications)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStepUpService_Expiry(t *testing.T) {
	svc, notifications, mr := setupStepUp(t)

	token, err := svc.Open(context.Background(), stepUpAccount())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mr.FastForward(6 * time.Minute)

	_, err = svc.Verify(context.Background(), token, sentCode(t, notifications))
	if !errors.Is(err, domain.ErrStepUpNotFound) {
		t.Errorf("expected ErrStepUpNotFound after expiry, got %v", err)
	}
}

func TestStepUpService_MaxAttempts(t *testing.T) {
	svc, notifications, _ := setupStepUp(t)

	token, err := svc.Open(context.Background(), stepUpAccount())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Verify(context.Background(), token, "000000"); !errors.Is(err, domain.ErrStepUpInvalidCode) {
			t.Fatalf("attempt %d: expected ErrStepUpInvalidCode, got %v", i+1, err)
		}
	}

	// The fourth attempt burns the challenge even with the right code.
	_, err = svc.Verify(context.Background(), token, sentCode(t, notifications))
	if !errors.Is(err, domain.ErrStepUpMaxAttempts) {
		t.Errorf("expected ErrStepUpMaxAttempts, got %v", err)
	}
}

func TestStepUpService_ResendThrottle(t *testing.T) {
	svc, _, mr := setupStepUp(t)

	if _, err := svc.Open(context.Background(), stepUpAccount()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Open(context.Background(), stepUpAccount())
	if !errors.Is(err, domain.ErrStepUpThrottled) {
		t.Fatalf("expected ErrStepUpThrottled, got %v", err)
	}

	mr.FastForward(61 * time.Second)

	if _, err := svc.Open(context.Background(), stepUpAccount()); err != nil {
		t.Errorf("expected reopen after window, got %v", err)
	}
}

func TestStepUpService_SMSFailureCleansUp(t *testing.T) {
	svc, notifications, mr := setupStepUp(t)
	notifications.SendSMSFunc = func(to, message string) error {
		return errors.New("carrier rejected message")
	}

	_, err := svc.Open(context.Background(), stepUpAccount())
	if err == nil {
		t.Fatal("expected error when SMS delivery fails")
	}
	if len(mr.Keys()) != 0 {
		t.Errorf("expected all challenge keys cleaned up, got %v", mr.Keys())
	}
}
