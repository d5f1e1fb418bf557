package guest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/wedding-gallery/internal/domain"
	"github.com/orgball2608/wedding-gallery/internal/repositories"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
)

type PgxRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPgxRepository(pool *pgxpool.Pool, logger logger.Logger) *PgxRepository {
	return &PgxRepository{
		pool:   pool,
		logger: logger.WithComponent("GuestRepo"),
	}
}

var _ Repository = (*PgxRepository)(nil)

func (r *PgxRepository) Upsert(ctx context.Context, name, email string) (*domain.Guest, error) {
	query, args, err := repositories.SqBuilder.
		Insert("emails").
		Columns("id", "email", "name", "created_at").
		Values(uuid.NewString(), email, name, time.Now().UTC()).
		Suffix("ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name RETURNING id, email, name, created_at").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	var g domain.Guest
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&g.ID, &g.Email, &g.Name, &g.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to upsert guest %s: %w", email, err)
	}

	return &g, nil
}
