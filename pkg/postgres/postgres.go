package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // pgx5:// driver
	_ "github.com/golang-migrate/migrate/v4/source/file"     // file:// source
	"github.com/jackc/pgx/v5/pgxpool"
)

const connectTimeout = 10 * time.Second

type Config struct {
	Host      string
	Port      uint16
	User      string
	Password  string
	Name      string
	SSLMode   string
	MaxConns  int32
	MinConns  int32
	Migration Migration
}

type Migration struct {
	Path      string
	AutoApply bool
}

type Postgres interface {
	Pool() *pgxpool.Pool
	Ping(ctx context.Context) error
	Close()
}

type postgres struct {
	pool *pgxpool.Pool
}

func New(cfg *Config) (Postgres, error) {
	if cfg.Migration.AutoApply {
		if err := Migrate(cfg); err != nil {
			return nil, err
		}
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN("postgres"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &postgres{pool: pool}, nil
}

// FromPool wraps an already opened pool, used by tests and tools.
func FromPool(pool *pgxpool.Pool) Postgres {
	return &postgres{pool: pool}
}

func (p *postgres) Pool() *pgxpool.Pool {
	return p.pool
}

func (p *postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *postgres) Close() {
	p.pool.Close()
}

// DSN builds a connection URL with the given scheme ("postgres" for pgx,
// "pgx5" for golang-migrate).
func (c *Config) DSN(scheme string) string {
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port))),
		Path:   "/" + c.Name,
	}

	if c.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", c.SSLMode)
		u.RawQuery = q.Encode()
	}

	return u.String()
}

func Migrate(cfg *Config) error {
	return MigrateURL(cfg.Migration.Path, cfg.DSN("pgx5"))
}

func MigrateURL(path, databaseURL string) error {
	m, err := migrate.New("file://"+path, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}

	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
