package app

import (
	"webhook-guard/internal/circuitbreaker"
	"webhook-guard/internal/common/logging"
	"webhook-guard/internal/config"
	"webhook-guard/internal/crypto"
	"webhook-guard/internal/handlers"
	"webhook-guard/internal/jws"
	"webhook-guard/internal/redis"
	"webhook-guard/internal/replay"
	"webhook-guard/internal/signature"
)

// App holds all the application dependencies
type App struct {
	Config      *config.Config
	Verifier    *signature.Verifier
	Producer    *jws.Producer
	Reader      *jws.Reader
	Guard       *replay.Guard
	MemoryStore *replay.MemoryStore
	RedisClient *redis.Client
	Breaker     *circuitbreaker.Breaker
	Handlers    *handlers.Handlers
	Logger      logging.Logger
}

// New creates a new application instance with all dependencies. Every
// configuration problem surfaces here, before the server starts.
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.Field{Key: "component", Value: "app"}),
	}

	if err := app.initializeVerifier(); err != nil {
		return nil, err
	}

	if err := app.initializeTokens(); err != nil {
		return nil, err
	}

	if err := app.initializeReplay(); err != nil {
		app.Cleanup()
		return nil, err
	}

	app.Handlers = handlers.New(handlers.Options{
		PathPrefix: cfg.WebhookPathPrefix,
		Producer:   app.Producer,
		Reader:     app.Reader,
		JWSSecret:  cfg.JWSSecret,
		Checks:     app.healthChecks(),
		Logger:     app.Logger,
	})

	return app, nil
}

func (app *App) initializeVerifier() error {
	secret, err := crypto.ResolveSecret(app.Config.WebhookSecret, app.Config.WebhookSecretEncrypted, app.Config.EncryptionKey)
	if err != nil {
		return err
	}

	opts, err := app.Config.SignatureOptions(secret)
	if err != nil {
		return err
	}
	opts.Logger = app.Logger

	verifier, err := signature.NewVerifier(opts)
	if err != nil {
		return err
	}
	app.Verifier = verifier

	app.Logger.Info("Signature verification: Enabled",
		logging.Field{Key: "algorithm", Value: string(opts.Algorithm)},
		logging.Field{Key: "header", Value: opts.SignatureHeader},
		logging.Field{Key: "prefix", Value: app.Config.SignaturePrefix},
		logging.Field{Key: "sealed_secret", Value: app.Config.WebhookSecretEncrypted != ""},
	)
	return nil
}

func (app *App) initializeTokens() error {
	app.Reader = jws.NewReader(nil)

	if !app.Config.TokensEnabled() {
		app.Logger.Info("Token endpoints: Not configured (JWS_SECRET is empty)")
		return nil
	}

	alg, err := jws.ParseAlgorithm(app.Config.JWSAlgorithm)
	if err != nil {
		return err
	}
	producer, err := jws.NewProducer(nil, alg, app.Config.JWSSecret)
	if err != nil {
		return err
	}
	app.Producer = producer

	app.Logger.Info("Token endpoints: Enabled", logging.Field{Key: "algorithm", Value: string(alg)})
	return nil
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	if app.MemoryStore != nil {
		app.MemoryStore.Stop()
	}
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
