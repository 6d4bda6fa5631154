// Package config provides configuration management for the webhook guard service.
// It loads configuration from environment variables with sensible defaults and
// validates it so the service refuses to start with an unusable verifier.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//   - LOG_FORMAT: "console" or "json" (default: console)
//   - LOG_FILE: Log file path (default: stdout)
//   - TLS_CERT, TLS_KEY: Serve HTTPS when both are set
//
// Webhook Verification:
//   - WEBHOOK_PATH_PREFIX: Path prefix of webhook endpoints (default: /webhooks/)
//   - WEBHOOK_SECRET: Shared HMAC secret
//   - WEBHOOK_SECRET_ENCRYPTED: Shared secret sealed with CONFIG_ENCRYPTION_KEY
//   - CONFIG_ENCRYPTION_KEY: Key used to open WEBHOOK_SECRET_ENCRYPTED
//   - WEBHOOK_ALGORITHM: HmacSHA1, HmacSHA256, HmacSHA384 or HmacSHA512 (default: HmacSHA256)
//   - WEBHOOK_SIGNATURE_HEADER: Header carrying the signature (default: X-Signature)
//   - WEBHOOK_SIGNATURE_PREFIX: Prefix stripped from the header value, e.g. "sha256="
//   - WEBHOOK_SIGNATURE_ENCODING: "hex" (lowercase digest, default) or "HEX"
//   - WEBHOOK_SIGNATURE_CONSTANT_TIME: Compare signatures in constant time (default: false)
//   - WEBHOOK_MAX_BODY_BYTES: Largest accepted webhook body (default: 26214400)
//
// Tokens:
//   - JWS_ALGORITHM: HS256, HS384 or HS512 (default: HS256)
//   - JWS_SECRET: Token signing secret (token endpoints are disabled when empty)
//
// Replay Protection:
//   - DELIVERY_ID_HEADER: Header carrying a unique delivery ID (disabled when empty)
//   - REPLAY_TTL: How long a delivery ID is remembered (default: 24h)
//   - REPLAY_SWEEP_SCHEDULE: Cron schedule purging expired IDs from the in-memory store (default: @every 1m)
//   - REDIS_ADDRESS: Redis server address; an in-memory store is used when empty
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//
// Example usage:
//
//	cfg := config.Load()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
package config

import (
	"os"
	"strconv"
	"time"

	"webhook-guard/internal/common/errors"
	"webhook-guard/internal/common/validation"
	"webhook-guard/internal/jws"
	"webhook-guard/internal/signature"
)

// Config holds all configuration values for the service. The env tag names
// the variable each field is loaded from; validate holds the rules checked
// regardless of which features are enabled.
type Config struct {
	// Application settings
	Port      string `env:"PORT" validate:"tcp_port"`
	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`
	LogFile   string `env:"LOG_FILE"`
	TLSCert   string `env:"TLS_CERT" validate:"required_with=TLSKey"`
	TLSKey    string `env:"TLS_KEY" validate:"required_with=TLSCert"`

	// Webhook verification
	WebhookPathPrefix      string `env:"WEBHOOK_PATH_PREFIX" validate:"path_prefix"`
	WebhookSecret          string `env:"WEBHOOK_SECRET"`
	WebhookSecretEncrypted string `env:"WEBHOOK_SECRET_ENCRYPTED"`
	EncryptionKey          string `env:"CONFIG_ENCRYPTION_KEY"`
	WebhookAlgorithm       string `env:"WEBHOOK_ALGORITHM" validate:"mac_algorithm"`
	SignatureHeader        string `env:"WEBHOOK_SIGNATURE_HEADER" validate:"notblank"`
	SignaturePrefix        string `env:"WEBHOOK_SIGNATURE_PREFIX"`
	SignatureEncoding      string `env:"WEBHOOK_SIGNATURE_ENCODING" validate:"omitempty,oneof=hex HEX"`
	SignatureConstantTime  string `env:"WEBHOOK_SIGNATURE_CONSTANT_TIME" validate:"omitempty,boolean"`
	WebhookMaxBodyBytes    string `env:"WEBHOOK_MAX_BODY_BYTES" validate:"positive_int"`

	// Token endpoints
	JWSAlgorithm string `env:"JWS_ALGORITHM"`
	JWSSecret    string `env:"JWS_SECRET"`

	// Replay protection
	DeliveryIDHeader string `env:"DELIVERY_ID_HEADER"`
	ReplayTTL        string `env:"REPLAY_TTL" validate:"omitempty,positive_duration"`
	ReplaySweep      string `env:"REPLAY_SWEEP_SCHEDULE" validate:"omitempty,cron_schedule"`
	RedisAddress     string `env:"REDIS_ADDRESS"`
	RedisPassword    string `env:"REDIS_PASSWORD"`
	RedisDB          string `env:"REDIS_DB"`
	RedisPoolSize    string `env:"REDIS_POOL_SIZE"`
}

// DefaultMaxBodyBytes bounds webhook bodies when WEBHOOK_MAX_BODY_BYTES is
// unset. GitHub caps payloads at 25 MB.
const DefaultMaxBodyBytes = 25 << 20

var configValidator = newConfigValidator()

func newConfigValidator() *validation.Validator {
	v := validation.New()
	_ = v.Register("mac_algorithm", func(s string) bool {
		_, err := signature.ParseAlgorithm(s)
		return err == nil
	})
	return v
}

// Load creates a Config from environment variables. It does not validate.
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
		LogFile:   getEnv("LOG_FILE", ""),
		TLSCert:   getEnv("TLS_CERT", ""),
		TLSKey:    getEnv("TLS_KEY", ""),

		WebhookPathPrefix:      getEnv("WEBHOOK_PATH_PREFIX", "/webhooks/"),
		WebhookSecret:          getEnv("WEBHOOK_SECRET", ""),
		WebhookSecretEncrypted: getEnv("WEBHOOK_SECRET_ENCRYPTED", ""),
		EncryptionKey:          getEnv("CONFIG_ENCRYPTION_KEY", ""),
		WebhookAlgorithm:       getEnv("WEBHOOK_ALGORITHM", string(signature.DefaultAlgorithm)),
		SignatureHeader:        getEnv("WEBHOOK_SIGNATURE_HEADER", "X-Signature"),
		SignaturePrefix:        getEnv("WEBHOOK_SIGNATURE_PREFIX", ""),
		SignatureEncoding:      getEnv("WEBHOOK_SIGNATURE_ENCODING", "hex"),
		SignatureConstantTime:  getEnv("WEBHOOK_SIGNATURE_CONSTANT_TIME", "false"),
		WebhookMaxBodyBytes:    getEnv("WEBHOOK_MAX_BODY_BYTES", strconv.Itoa(DefaultMaxBodyBytes)),

		JWSAlgorithm: getEnv("JWS_ALGORITHM", string(jws.HS256)),
		JWSSecret:    getEnv("JWS_SECRET", ""),

		DeliveryIDHeader: getEnv("DELIVERY_ID_HEADER", ""),
		ReplayTTL:        getEnv("REPLAY_TTL", "24h"),
		ReplaySweep:      getEnv("REPLAY_SWEEP_SCHEDULE", "@every 1m"),
		RedisAddress:     getEnv("REDIS_ADDRESS", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnv("REDIS_DB", "0"),
		RedisPoolSize:    getEnv("REDIS_POOL_SIZE", "10"),
	}
}

// getEnv retrieves an environment variable value or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate checks that the service can start with this configuration.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	switch {
	case c.WebhookSecret == "" && c.WebhookSecretEncrypted == "":
		return errors.ConfigError("WEBHOOK_SECRET or WEBHOOK_SECRET_ENCRYPTED is required")
	case c.WebhookSecret != "" && c.WebhookSecretEncrypted != "":
		return errors.ConfigError("set only one of WEBHOOK_SECRET and WEBHOOK_SECRET_ENCRYPTED")
	case c.WebhookSecretEncrypted != "" && c.EncryptionKey == "":
		return errors.ConfigError("CONFIG_ENCRYPTION_KEY is required with WEBHOOK_SECRET_ENCRYPTED")
	}

	if c.JWSSecret != "" {
		if _, err := jws.ParseAlgorithm(c.JWSAlgorithm); err != nil {
			return errors.ConfigErrorf("JWS_ALGORITHM: unsupported value %q", c.JWSAlgorithm)
		}
	}

	if c.DeliveryIDHeader != "" && c.ReplayTTL == "" {
		return errors.ConfigError("REPLAY_TTL is required with DELIVERY_ID_HEADER")
	}

	if c.RedisAddress != "" {
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			return errors.ConfigError("REDIS_DB must be a number between 0 and 15")
		}
		if poolSize, err := strconv.Atoi(c.RedisPoolSize); err != nil || poolSize < 1 {
			return errors.ConfigError("REDIS_POOL_SIZE must be a positive number")
		}
	}

	return nil
}

// SignatureOptions translates the webhook settings into verifier options.
// secret is the resolved plaintext secret.
func (c *Config) SignatureOptions(secret string) (signature.Options, error) {
	constantTime, _ := strconv.ParseBool(c.SignatureConstantTime)
	return signature.FileConfig{
		Algorithm:       c.WebhookAlgorithm,
		Secret:          secret,
		SignatureHeader: c.SignatureHeader,
		SignaturePrefix: c.SignaturePrefix,
		Encoding:        c.SignatureEncoding,
		ConstantTime:    constantTime,
	}.Options()
}

// MaxBodyBytes returns the parsed WEBHOOK_MAX_BODY_BYTES. Call after Validate.
func (c *Config) MaxBodyBytes() int64 {
	n, err := strconv.ParseInt(c.WebhookMaxBodyBytes, 10, 64)
	if err != nil || n <= 0 {
		return DefaultMaxBodyBytes
	}
	return n
}

// ReplayWindow returns the parsed REPLAY_TTL. Call after Validate.
func (c *Config) ReplayWindow() time.Duration {
	ttl, err := time.ParseDuration(c.ReplayTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return ttl
}

// ReplayEnabled reports whether delivery IDs are tracked.
func (c *Config) ReplayEnabled() bool {
	return c.DeliveryIDHeader != ""
}

// TokensEnabled reports whether the token endpoints are served.
func (c *Config) TokensEnabled() bool {
	return c.JWSSecret != ""
}

// TLSEnabled reports whether the server should listen with TLS.
func (c *Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}
