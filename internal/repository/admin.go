package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/safebox/gallery/internal/domain"
)

// PgAdminRepository implements AdminRepository using pgx.
type PgAdminRepository struct{}

// NewPgAdminRepository creates a new PgAdminRepository.
func NewPgAdminRepository() *PgAdminRepository {
	return &PgAdminRepository{}
}

const adminColumns = `id, email, password_hash, display_name, profile_image_url, created_at, updated_at`

// FindByEmail returns an admin by email, or nil if not found.
func (r *PgAdminRepository) FindByEmail(ctx context.Context, db DBTX, email string) (*domain.Admin, error) {
	row := db.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE email = $1`, email)
	return scanAdmin(row)
}

// FindByID returns an admin by id, or nil if not found.
func (r *PgAdminRepository) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Admin, error) {
	row := db.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = $1`, id)
	return scanAdmin(row)
}

// Create inserts a new admin.
func (r *PgAdminRepository) Create(ctx context.Context, db DBTX, admin *domain.Admin) error {
	_, err := db.Exec(ctx,
		`INSERT INTO admins (id, email, password_hash, display_name, profile_image_url)
		 VALUES ($1, $2, $3, $4, $5)`,
		admin.ID, admin.Email, admin.PasswordHash, admin.DisplayName, admin.ProfileImageURL)
	return err
}

// UpdateProfile updates display name and/or profile image URL.
func (r *PgAdminRepository) UpdateProfile(ctx context.Context, db DBTX, id uuid.UUID, displayName, profileImageURL *string) error {
	tag, err := db.Exec(ctx,
		`UPDATE admins SET
		 display_name = COALESCE($2, display_name),
		 profile_image_url = COALESCE($3, profile_image_url),
		 updated_at = now()
		 WHERE id = $1`,
		id, displayName, profileImageURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("admin", id.String())
	}
	return nil
}

// UpdatePasswordHash replaces the stored password hash.
func (r *PgAdminRepository) UpdatePasswordHash(ctx context.Context, db DBTX, id uuid.UUID, hash string) error {
	tag, err := db.Exec(ctx,
		`UPDATE admins SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound("admin", id.String())
	}
	return nil
}

func scanAdmin(row pgx.Row) (*domain.Admin, error) {
	a := &domain.Admin{}
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName,
		&a.ProfileImageURL, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
