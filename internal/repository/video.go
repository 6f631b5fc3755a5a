package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/safebox/gallery/internal/domain"
)

// catalogLockID keys the advisory lock serializing catalog writers. Any
// transaction mutating ranks takes it first, so two writers never compute
// rank deltas from the same pre-mutation snapshot.
const catalogLockID = int64(0x766964) // "vid"

// PgVideoRepository implements VideoRepository using pgx.
type PgVideoRepository struct{}

// NewPgVideoRepository creates a new PgVideoRepository.
func NewPgVideoRepository() *PgVideoRepository {
	return &PgVideoRepository{}
}

const videoColumns = `id, title, description, video_link, youtube_id, next_video_id, order_index, created_at, updated_at`

// LockCatalog acquires the catalog-wide advisory lock. Released automatically
// at transaction end.
func (r *PgVideoRepository) LockCatalog(ctx context.Context, db DBTX) error {
	_, err := db.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, catalogLockID)
	return err
}

// FindByID returns a video by id, or nil if not found.
func (r *PgVideoRepository) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Video, error) {
	row := db.QueryRow(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)

	v, err := scanVideo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Insert creates a new video row.
func (r *PgVideoRepository) Insert(ctx context.Context, db DBTX, video *domain.Video) error {
	_, err := db.Exec(ctx,
		`INSERT INTO videos (id, title, description, video_link, youtube_id, next_video_id, order_index)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		video.ID, video.Title, video.Description, video.VideoLink,
		video.YouTubeID, video.NextVideoID, video.OrderIndex)
	return err
}

// Update mutates content fields in place. order_index is deliberately
// excluded: rank only ever changes through insert/delete compaction.
func (r *PgVideoRepository) Update(ctx context.Context, db DBTX, video *domain.Video) error {
	tag, err := db.Exec(ctx,
		`UPDATE videos SET
		 title = $2, description = $3, video_link = $4, youtube_id = $5,
		 next_video_id = $6, updated_at = now()
		 WHERE id = $1`,
		video.ID, video.Title, video.Description, video.VideoLink,
		video.YouTubeID, video.NextVideoID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("video", video.ID.String())
	}
	return nil
}

// Delete removes the video row.
func (r *PgVideoRepository) Delete(ctx context.Context, db DBTX, id uuid.UUID) error {
	tag, err := db.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("video", id.String())
	}
	return nil
}

// CompactRanks closes the gap left by a deleted rank.
func (r *PgVideoRepository) CompactRanks(ctx context.Context, db DBTX, deletedRank int) error {
	_, err := db.Exec(ctx,
		`UPDATE videos SET order_index = order_index - 1 WHERE order_index > $1`,
		deletedRank)
	return err
}

// ClearNextReferences nullifies every next pointer referencing id.
func (r *PgVideoRepository) ClearNextReferences(ctx context.Context, db DBTX, id uuid.UUID) error {
	_, err := db.Exec(ctx,
		`UPDATE videos SET next_video_id = NULL WHERE next_video_id = $1`, id)
	return err
}

// MaxRank returns the highest rank, or -1 for an empty catalog.
func (r *PgVideoRepository) MaxRank(ctx context.Context, db DBTX) (int, error) {
	var max int
	err := db.QueryRow(ctx, `SELECT COALESCE(MAX(order_index), -1) FROM videos`).Scan(&max)
	return max, err
}

// Count returns the number of videos.
func (r *PgVideoRepository) Count(ctx context.Context, db DBTX) (int, error) {
	var n int
	err := db.QueryRow(ctx, `SELECT COUNT(*) FROM videos`).Scan(&n)
	return n, err
}

// List returns videos ordered by ascending rank, paginated.
func (r *PgVideoRepository) List(ctx context.Context, db DBTX, offset, limit int) ([]domain.Video, error) {
	rows, err := db.Query(ctx,
		`SELECT `+videoColumns+` FROM videos ORDER BY order_index ASC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVideos(rows)
}

// ListAll returns every video ordered by ascending rank.
func (r *PgVideoRepository) ListAll(ctx context.Context, db DBTX) ([]domain.Video, error) {
	rows, err := db.Query(ctx,
		`SELECT `+videoColumns+` FROM videos ORDER BY order_index ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVideos(rows)
}

func scanVideo(row pgx.Row) (*domain.Video, error) {
	v := &domain.Video{}
	err := row.Scan(&v.ID, &v.Title, &v.Description, &v.VideoLink,
		&v.YouTubeID, &v.NextVideoID, &v.OrderIndex, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func collectVideos(rows pgx.Rows) ([]domain.Video, error) {
	videos := []domain.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}
	return videos, rows.Err()
}
