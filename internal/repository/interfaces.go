package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/safebox/gallery/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// AdminRepository provides access to the admins table (the credential store).
type AdminRepository interface {
	// FindByEmail returns an admin by email (case-sensitive), or nil if absent.
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.Admin, error)

	// FindByID returns an admin by id, or nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Admin, error)

	// Create inserts a new admin.
	Create(ctx context.Context, db DBTX, admin *domain.Admin) error

	// UpdateProfile updates display name and/or profile image; nil fields are
	// left unchanged.
	UpdateProfile(ctx context.Context, db DBTX, id uuid.UUID, displayName, profileImageURL *string) error

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, db DBTX, id uuid.UUID, hash string) error
}

// VideoRepository provides access to the videos table (the ordered catalog
// store). Mutating operations are primitives: the service composes them
// inside a single transaction so rank contiguity holds at every commit.
type VideoRepository interface {
	// LockCatalog serializes catalog writers for the duration of the current
	// transaction. Must be called on a pgx.Tx, never on the pool.
	LockCatalog(ctx context.Context, db DBTX) error

	// FindByID returns a video by id, or nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Video, error)

	// Insert creates a new video row with its assigned rank.
	Insert(ctx context.Context, db DBTX, video *domain.Video) error

	// Update mutates content fields in place. Rank is never touched.
	Update(ctx context.Context, db DBTX, video *domain.Video) error

	// Delete removes the row only; compaction is a separate primitive.
	Delete(ctx context.Context, db DBTX, id uuid.UUID) error

	// CompactRanks decrements the rank of every video ranked above the
	// deleted rank, restoring 0..N-2 contiguity.
	CompactRanks(ctx context.Context, db DBTX, deletedRank int) error

	// ClearNextReferences nullifies every next pointer referencing id.
	ClearNextReferences(ctx context.Context, db DBTX, id uuid.UUID) error

	// MaxRank returns the highest rank, or -1 for an empty catalog.
	MaxRank(ctx context.Context, db DBTX) (int, error)

	// Count returns the number of videos.
	Count(ctx context.Context, db DBTX) (int, error)

	// List returns videos ordered by ascending rank, paginated.
	List(ctx context.Context, db DBTX, offset, limit int) ([]domain.Video, error)

	// ListAll returns every video ordered by ascending rank.
	ListAll(ctx context.Context, db DBTX) ([]domain.Video, error)
}
