package app

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	natsgo "github.com/nats-io/nats.go"

	"github.com/you/faceauthsvc/internal/config"
	httpx "github.com/you/faceauthsvc/internal/http"
	"github.com/you/faceauthsvc/internal/http/handlers"
	"github.com/you/faceauthsvc/internal/http/middleware"
	"github.com/you/faceauthsvc/internal/infrastructure/auth"
	"github.com/you/faceauthsvc/internal/infrastructure/database"
	"github.com/you/faceauthsvc/internal/infrastructure/directory"
	"github.com/you/faceauthsvc/internal/infrastructure/ledger"
	"github.com/you/faceauthsvc/internal/infrastructure/notifications"
	"github.com/you/faceauthsvc/internal/infrastructure/oracle"
	"github.com/you/faceauthsvc/internal/infrastructure/repositories"
	"github.com/you/faceauthsvc/internal/services"
	"github.com/you/faceauthsvc/internal/transport/broker"
)

func Run(cfg *config.Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	gdb, err := database.Open(cfg.DSN); if err != nil { return err }
	if err := database.AutoMigrate(gdb); err != nil { return err }
	cas, err := auth.NewCasbinService(gdb, cfg.CasbinModelPath); if err != nil { return err }
	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rdb.Ping(context.Background()); err != nil { return err }

	// Initialize infrastructure services
	oracleClient := oracle.NewClient(cfg.OracleBaseURL, cfg.OracleTimeout, logger)
	tokenSvc := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTTL)
	notificationSvc := notifications.NewTwilioService(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, logger)

	accountDir := directory.NewGormDirectory(gdb)
	attemptLedger := ledger.NewGormLedger(gdb)
	sessionRepo := repositories.NewSessionRepository(rdb.Client, cfg.SessionTTL)

	// Initialize services
	stepUpSvc := services.NewStepUpService(notificationSvc, rdb.Client, services.StepUpConfig{
		CodeLength:   cfg.StepUpCodeLength,
		TTL:          cfg.StepUpTTL,
		MaxAttempts:  cfg.StepUpMaxAttempts,
		ResendWindow: cfg.StepUpResendWindow,
	})

	policy := services.NewDecisionPolicy(cfg.SamePersonThreshold, cfg.StepUpThreshold)

	faceAuthSvc := services.NewFaceAuthService(
		oracleClient, accountDir, attemptLedger, sessionRepo, tokenSvc, stepUpSvc,
		policy, services.FaceAuthConfig{
			OracleTimeout: cfg.OracleTimeout,
			SessionTTL:    cfg.SessionTTL,
		}, logger,
	)

	// Initialize handlers and middleware
	faceH := handlers.NewFaceHandlers(faceAuthSvc, sessionRepo)
	jwtMW := middleware.NewAuthMW(tokenSvc, sessionRepo)
	casbinMW := middleware.NewCasbinMW(cas.E)

	r := httpx.BuildRouter(faceH, jwtMW, casbinMW)

	policies, _ := cas.E.GetPolicy()
	if len(policies) == 0 {
		cas.E.AddPolicy("role_admin", "/auth/face/*", "(GET|POST)")
		cas.E.AddPolicy("role_admin", "/auth/logout", "POST")
		cas.E.AddPolicy("role_user", "/auth/face/register", "POST")
		cas.E.AddPolicy("role_user", "/auth/logout", "POST")
		_ = cas.E.SavePolicy()
		log.Println("casbin: seeded default policies")
	}

	// Serve internal callers over NATS when a broker is configured.
	if cfg.NatsURL != "" {
		nc, err := natsgo.Connect(cfg.NatsURL)
		if err != nil {
			return err
		}
		defer nc.Close()

		sub := broker.NewSubscriber(nc, faceAuthSvc, logger)
		if err := sub.Start(); err != nil {
			return err
		}
		defer sub.Close()
		log.Printf("broker: serving face auth subjects on %s", cfg.NatsURL)
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, r)
}
