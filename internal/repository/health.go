package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type HealthRepository struct {
	db *pgxpool.Pool
}

func NewHealthRepository(db *pgxpool.Pool) *HealthRepository {
	return &HealthRepository{
		db: db,
	}
}

func (r *HealthRepository) Ping(ctx context.Context) error {
	var one int
	if err := r.db.QueryRow(ctx, `SELECT 1;`).Scan(&one); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
