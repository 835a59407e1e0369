package server

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration, parsed from DS_*-prefixed
// environment variables. Unit tests construct it directly.
type Config struct {
	Addr    string `env:"DS_ADDR" envDefault:":8080"`
	BaseURL string `env:"DS_BASE_URL" envDefault:"http://localhost:8080"`

	DatabaseURL string `env:"DATABASE_URL"`

	// JWTSecret signs bearer tokens. Required.
	JWTSecret string `env:"DS_JWT_SECRET"`
	// TokenTTL bounds the lifetime of issued bearer tokens.
	TokenTTL time.Duration `env:"DS_TOKEN_TTL" envDefault:"1h"`

	// LinkKeyHex is the AES-256 key for download-link wrappers, hex
	// encoded (64 chars). Loaded from config rather than generated per
	// process so outstanding links survive restarts. Required.
	LinkKeyHex string `env:"DS_LINK_KEY"`

	UploadDir      string `env:"DS_UPLOAD_DIR" envDefault:"uploads"`
	MaxUploadBytes int64  `env:"DS_MAX_UPLOAD_BYTES" envDefault:"16777216"` // 16 MiB

	// SMTP settings for verification mail. When Host is empty, mail is
	// logged instead of sent.
	SMTPHost string `env:"DS_SMTP_HOST"`
	SMTPPort int    `env:"DS_SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"DS_SMTP_USER"`
	SMTPPass string `env:"DS_SMTP_PASSWORD"`
	MailFrom string `env:"DS_MAIL_FROM"`

	// Optional S3-compatible blob backend. When Endpoint is set the
	// server stores bytes in the named bucket instead of UploadDir.
	S3Endpoint  string `env:"DS_S3_ENDPOINT"`
	S3AccessKey string `env:"DS_S3_ACCESS_KEY"`
	S3SecretKey string `env:"DS_S3_SECRET_KEY"`
	S3Bucket    string `env:"DS_S3_BUCKET"`

	Version string `env:"DS_VERSION" envDefault:"dev"`
}

// LoadConfig parses the environment and validates required secrets.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants main refuses to start without.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is empty")
	}
	if c.JWTSecret == "" {
		return errors.New("DS_JWT_SECRET is empty")
	}
	if _, err := c.LinkKey(); err != nil {
		return err
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("DS_MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// LinkKey decodes the wrapper encryption key. Must be 32 bytes.
func (c Config) LinkKey() ([]byte, error) {
	key, err := hex.DecodeString(c.LinkKeyHex)
	if err != nil {
		return nil, errors.New("DS_LINK_KEY is not valid hex")
	}
	if len(key) != 32 {
		return nil, errors.New("DS_LINK_KEY must decode to 32 bytes")
	}
	return key, nil
}
