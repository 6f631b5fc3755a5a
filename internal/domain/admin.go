package domain

import (
	"time"

	"github.com/google/uuid"
)

// Admin represents an admins row. There is a single admin role; the default
// account is created at bootstrap and never deleted in normal operation.
type Admin struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	DisplayName     string    `json:"display_name"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
