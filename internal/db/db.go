package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/orgball2608/wedding-gallery/internal/migrations"
	"github.com/pressly/goose/v3"
)

// Migrator applies the embedded goose migrations over a database/sql handle.
type Migrator struct {
	db *sql.DB
}

func NewMigrator(ctx context.Context, dsn string) (*Migrator, error) {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Migrator{db: conn}, nil
}

func (m *Migrator) Up(ctx context.Context) error {
	return goose.UpContext(ctx, m.db, ".")
}

func (m *Migrator) Down(ctx context.Context) error {
	return goose.DownContext(ctx, m.db, ".")
}

func (m *Migrator) Reset(ctx context.Context) error {
	return goose.ResetContext(ctx, m.db, ".")
}

func (m *Migrator) Status(ctx context.Context) error {
	return goose.StatusContext(ctx, m.db, ".")
}

func (m *Migrator) Version(ctx context.Context) (int64, error) {
	return goose.GetDBVersionContext(ctx, m.db)
}

func (m *Migrator) Close() error {
	return m.db.Close()
}

// CreateMigration writes a new timestamped SQL migration into dir on disk.
func CreateMigration(dir, name string) error {
	return goose.Create(nil, dir, name, "sql")
}
