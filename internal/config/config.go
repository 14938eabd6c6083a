package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	AccessTTL  string `yaml:"access_ttl"`
	SessionTTL string `yaml:"session_ttl"`
}

type OracleConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type ThresholdConfig struct {
	SamePerson float64 `yaml:"same_person"`
	StepUp     float64 `yaml:"step_up"`
}

type StepUpConfig struct {
	TTL          string `yaml:"ttl"`
	CodeLength   int    `yaml:"code_length"`
	MaxAttempts  int    `yaml:"max_attempts"`
	ResendWindow string `yaml:"resend_window"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type NatsConfig struct {
	URL string `yaml:"url"`
}

type ConfigFile struct {
	App        AppConfig       `yaml:"app"`
	Database   DatabaseConfig  `yaml:"database"`
	Redis      RedisConfig     `yaml:"redis"`
	JWT        JWTConfig       `yaml:"jwt"`
	Oracle     OracleConfig    `yaml:"oracle"`
	Thresholds ThresholdConfig `yaml:"thresholds"`
	StepUp     StepUpConfig    `yaml:"stepup"`
	Twilio     TwilioConfig    `yaml:"twilio"`
	Casbin     CasbinConfig    `yaml:"casbin"`
	Nats       NatsConfig      `yaml:"nats"`
}

type Config struct {
	Port    string
	GinMode string

	DSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	JWTIssuer  string
	AccessTTL  time.Duration
	SessionTTL time.Duration

	OracleBaseURL string
	OracleTimeout time.Duration

	SamePersonThreshold float64
	StepUpThreshold     float64

	StepUpTTL          time.Duration
	StepUpCodeLength   int
	StepUpMaxAttempts  int
	StepUpResendWindow time.Duration

	TwilioSID   string
	TwilioToken string
	TwilioFrom  string

	CasbinModelPath string

	NatsURL string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() (*Config, error) {
	return LoadFrom(env("CONFIG_PATH", "config/config.yml"))
}

func LoadFrom(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accTTL, err := time.ParseDuration(configFile.JWT.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}

	sessTTL, err := time.ParseDuration(configFile.JWT.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid session TTL: %w", err)
	}

	stepUpTTL, err := time.ParseDuration(configFile.StepUp.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid step-up TTL: %w", err)
	}

	resWnd, err := time.ParseDuration(configFile.StepUp.ResendWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid step-up resend window: %w", err)
	}

	cfg := &Config{
		Port:    strconv.Itoa(configFile.App.Port),
		GinMode: configFile.App.GinMode,

		DSN: env("DATABASE_DSN", configFile.Database.DSN),

		RedisAddr:     env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword: env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:       configFile.Redis.DB,

		JWTSecret:  env("JWT_SECRET", configFile.JWT.Secret),
		JWTIssuer:  configFile.JWT.Issuer,
		AccessTTL:  accTTL,
		SessionTTL: sessTTL,

		OracleBaseURL: env("ORACLE_BASE_URL", configFile.Oracle.BaseURL),
		OracleTimeout: time.Duration(configFile.Oracle.TimeoutMs) * time.Millisecond,

		SamePersonThreshold: configFile.Thresholds.SamePerson,
		StepUpThreshold:     configFile.Thresholds.StepUp,

		StepUpTTL:          stepUpTTL,
		StepUpCodeLength:   configFile.StepUp.CodeLength,
		StepUpMaxAttempts:  configFile.StepUp.MaxAttempts,
		StepUpResendWindow: resWnd,

		TwilioSID:   env("TWILIO_ACCOUNT_SID", configFile.Twilio.AccountSID),
		TwilioToken: env("TWILIO_AUTH_TOKEN", configFile.Twilio.AuthToken),
		TwilioFrom:  env("TWILIO_FROM_NUMBER", configFile.Twilio.FromNumber),

		CasbinModelPath: configFile.Casbin.ModelPath,

		NatsURL: env("NATS_URL", configFile.Nats.URL),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.OracleBaseURL == "" {
		return fmt.Errorf("oracle base URL is required")
	}
	if c.OracleTimeout <= 0 {
		return fmt.Errorf("oracle timeout must be positive, got %v", c.OracleTimeout)
	}
	if c.SamePersonThreshold <= 0 {
		return fmt.Errorf("same-person threshold must be positive, got %v", c.SamePersonThreshold)
	}
	if c.SamePersonThreshold >= c.StepUpThreshold {
		return fmt.Errorf("same-person threshold %v must be below step-up threshold %v",
			c.SamePersonThreshold, c.StepUpThreshold)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	return nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cf ConfigFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cf, nil
}
