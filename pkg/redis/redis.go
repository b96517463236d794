package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

type Config struct {
	Host     string
	Port     uint16
	Password string
	DB       int
}

type Redis interface {
	Client() *goredis.Client
	Ping(ctx context.Context) error
	Close() error
}

type redis struct {
	client *goredis.Client
}

func New(cfg *Config) (Redis, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port))),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &redis{client: client}, nil
}

// FromClient wraps an existing client.
func FromClient(client *goredis.Client) Redis {
	return &redis{client: client}
}

func (r *redis) Client() *goredis.Client {
	return r.client
}

func (r *redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redis) Close() error {
	return r.client.Close()
}
