package app

import (
	"context"
	"fmt"

	"webhook-guard/internal/circuitbreaker"
	"webhook-guard/internal/common/logging"
	"webhook-guard/internal/handlers"
	"webhook-guard/internal/redis"
	"webhook-guard/internal/replay"
)

func (app *App) initializeReplay() error {
	if !app.Config.ReplayEnabled() {
		app.Logger.Info("Replay protection: Not configured (DELIVERY_ID_HEADER is empty)")
		return nil
	}

	store, err := app.replayStore()
	if err != nil {
		return err
	}

	guard, err := replay.NewGuard(replay.Options{
		Header: app.Config.DeliveryIDHeader,
		TTL:    app.Config.ReplayWindow(),
		Store:  store,
		Logger: app.Logger,
	})
	if err != nil {
		return err
	}
	app.Guard = guard

	app.Logger.Info("Replay protection: Enabled",
		logging.Field{Key: "header", Value: app.Config.DeliveryIDHeader},
		logging.Field{Key: "ttl", Value: app.Config.ReplayWindow().String()},
	)
	return nil
}

// replayStore picks Redis when an address is configured, so that deliveries
// are deduplicated across instances, and a process-local store otherwise.
func (app *App) replayStore() (replay.Store, error) {
	if app.Config.RedisAddress == "" {
		store, err := replay.NewMemoryStore(app.Config.ReplaySweep, app.Logger)
		if err != nil {
			return nil, err
		}
		app.MemoryStore = store
		app.Logger.Info("Replay store: In memory (not shared between instances)",
			logging.Field{Key: "sweep", Value: app.Config.ReplaySweep})
		return store, nil
	}

	client, err := redis.NewClient(redis.ConfigFromEnv(
		app.Config.RedisAddress,
		app.Config.RedisPassword,
		app.Config.RedisDB,
		app.Config.RedisPoolSize,
	))
	if err != nil {
		return nil, err
	}
	app.RedisClient = client
	app.Breaker = circuitbreaker.New("redis-replay-store", circuitbreaker.DefaultConfig(), app.Logger)
	app.Logger.Info("Replay store: Redis", logging.Field{Key: "address", Value: app.Config.RedisAddress})
	return replay.WithBreaker(client, app.Breaker), nil
}

func (app *App) healthChecks() map[string]handlers.HealthCheck {
	checks := map[string]handlers.HealthCheck{}
	if app.RedisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return app.RedisClient.Health(ctx)
		}
	}
	if app.Breaker != nil {
		checks["replay_breaker"] = func(context.Context) error {
			if state := app.Breaker.State(); state == circuitbreaker.StateOpen {
				return fmt.Errorf("circuit breaker '%s' is %s", app.Breaker.Name(), state)
			}
			return nil
		}
	}
	return checks
}
