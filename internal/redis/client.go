package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// DeliveryKeyPrefix namespaces delivery IDs in the keyspace.
const DeliveryKeyPrefix = "webhook-guard:delivery:"

// Client records delivery IDs in Redis so that replay protection holds
// across every instance sharing the same server.
type Client struct {
	rdb    *redis.Client
	config *Config
}

type Config struct {
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

// ConfigFromEnv converts the string settings of the service config. Invalid
// numbers fall back to the defaults; Validate has already rejected them.
func ConfigFromEnv(address, password, db, poolSize string) *Config {
	cfg := &Config{Address: address, Password: password}
	if n, err := strconv.Atoi(db); err == nil {
		cfg.DB = n
	}
	if n, err := strconv.Atoi(poolSize); err == nil {
		cfg.PoolSize = n
	}
	return cfg
}

func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("redis config is required")
	}

	if config.Address == "" {
		config.Address = "localhost:6379"
	}
	if config.PoolSize == 0 {
		config.PoolSize = 10
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{
		rdb:    rdb,
		config: config,
	}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

// Remember stores id for ttl with SETNX. It reports false, without touching
// the existing expiry, when id was already stored.
func (c *Client) Remember(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	stored, err := c.rdb.SetNX(ctx, DeliveryKeyPrefix+id, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record delivery: %w", err)
	}
	return stored, nil
}

// Forget removes id so that it may be delivered again.
func (c *Client) Forget(ctx context.Context, id string) error {
	if err := c.rdb.Del(ctx, DeliveryKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to forget delivery: %w", err)
	}
	return nil
}
