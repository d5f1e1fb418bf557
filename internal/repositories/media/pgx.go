package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orgball2608/wedding-gallery/internal/domain"
	"github.com/orgball2608/wedding-gallery/internal/repositories"
	"github.com/orgball2608/wedding-gallery/pkg/logger"
)

const table = "media"

var columns = []string{"id", "url", "name", "kind", "file_type", "thumbnail", "size", "duration", "likes", "created_at"}

// orderings break ties by id so equal timestamps or like counts list stably.
var orderings = map[domain.SortOption][]string{
	domain.SortRecent: {"created_at DESC", "id ASC"},
	domain.SortOldest: {"created_at ASC", "id ASC"},
	domain.SortLikes:  {"likes DESC", "id ASC"},
}

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("MediaRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

func (p *Pgx) List(ctx context.Context, sort domain.SortOption, filter domain.TypeFilter) ([]domain.Media, error) {
	order, ok := orderings[sort]
	if !ok {
		order = orderings[domain.SortRecent]
	}

	builder := repositories.SqBuilder.
		Select(columns...).
		From(table).
		OrderBy(order...)

	if kind, ok := filter.Kind(); ok {
		builder = builder.Where(sq.Eq{"kind": string(kind)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Media, 0)
	for rows.Next() {
		item, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media rows: %w", err)
	}

	return items, nil
}

func (p *Pgx) GetByID(ctx context.Context, id string) (*domain.Media, error) {
	query, args, err := repositories.SqBuilder.
		Select(columns...).
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	item, err := scanMedia(p.pg.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get media by id: %w", err)
	}

	return &item, nil
}

func (p *Pgx) Create(ctx context.Context, media domain.Media) (*domain.Media, error) {
	media.ID = uuid.NewString()
	media.Likes = 0
	media.CreatedAt = time.Now().UTC()

	query, args, err := repositories.SqBuilder.
		Insert(table).
		Columns(columns...).
		Values(
			media.ID,
			media.URL,
			media.Name,
			string(media.Kind),
			media.FileType,
			nullString(media.Thumbnail),
			media.Size,
			nullFloat(media.Duration),
			media.Likes,
			media.CreatedAt,
		).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	if _, err := p.pg.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("failed to create media: %w", err)
	}

	return &media, nil
}

// IncrementLike relies on a single UPDATE ... RETURNING so concurrent likes
// are serialised by postgres row locking.
func (p *Pgx) IncrementLike(ctx context.Context, id string) (int, error) {
	query, args, err := repositories.SqBuilder.
		Update(table).
		Set("likes", sq.Expr("likes + 1")).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING likes").
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	var likes int
	if err := p.pg.QueryRow(ctx, query, args...).Scan(&likes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("failed to increment likes: %w", err)
	}

	return likes, nil
}

func (p *Pgx) ListRefs(ctx context.Context) ([]domain.MediaRef, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "url", "kind").
		From(table).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query media refs: %w", err)
	}
	defer rows.Close()

	var refs []domain.MediaRef
	for rows.Next() {
		var ref domain.MediaRef
		var kind string
		if err := rows.Scan(&ref.ID, &ref.URL, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan media ref: %w", err)
		}
		ref.Kind = domain.MediaKind(kind)
		refs = append(refs, ref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating media refs: %w", err)
	}

	return refs, nil
}

func (p *Pgx) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := repositories.SqBuilder.
		Delete(table).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return 0, repositories.ErrBadQuery
	}

	result, err := p.pg.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete media: %w", err)
	}

	return result.RowsAffected(), nil
}

func scanMedia(row pgx.Row) (domain.Media, error) {
	var (
		item      domain.Media
		kind      string
		thumbnail *string
		duration  *float64
	)

	err := row.Scan(
		&item.ID,
		&item.URL,
		&item.Name,
		&kind,
		&item.FileType,
		&thumbnail,
		&item.Size,
		&duration,
		&item.Likes,
		&item.CreatedAt,
	)
	if err != nil {
		return domain.Media{}, err
	}

	item.Kind = domain.MediaKind(kind)
	if thumbnail != nil {
		item.Thumbnail = *thumbnail
	}
	if duration != nil {
		item.Duration = *duration
	}

	return item, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullFloat(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}
