package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/safebox/gallery/internal/auth"
	"github.com/safebox/gallery/internal/domain"
	"github.com/safebox/gallery/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the email does not resolve, so the
// absent-admin and wrong-password paths cost the same. Timing must not
// reveal whether an email exists.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

// AuthService issues admin sessions and manages the credential store.
type AuthService struct {
	db       repository.DBTX
	admins   repository.AdminRepository
	sessions *auth.SessionManager
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(db repository.DBTX, admins repository.AdminRepository, sessions *auth.SessionManager, logger *slog.Logger) *AuthService {
	return &AuthService{db: db, admins: admins, sessions: sessions, logger: logger}
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token string
	Admin *domain.Admin
}

// Login verifies credentials and issues a session token. Absent admin and
// wrong password are indistinguishable to the caller, and there is no
// lockout: each failed attempt is independent.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	admin, err := s.admins.FindByEmail(ctx, s.db, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find admin", err)
	}
	if admin == nil {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(input.Password))
		return nil, domain.ErrInvalidCredentials()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)); err != nil {
		return nil, domain.ErrInvalidCredentials()
	}

	token, err := s.sessions.IssueToken(admin.Email, admin.DisplayName)
	if err != nil {
		return nil, domain.ErrInternal("issue session token", err)
	}

	return &LoginResult{Token: token, Admin: admin}, nil
}

// ResolveIdentity resolves a verified token subject against the credential
// store. Implements auth.IdentityResolver.
func (s *AuthService) ResolveIdentity(ctx context.Context, email string) (*domain.Admin, error) {
	admin, err := s.admins.FindByEmail(ctx, s.db, email)
	if err != nil {
		return nil, domain.ErrInternal("resolve admin", err)
	}
	if admin == nil {
		return nil, domain.ErrIdentityNotFound()
	}
	return admin, nil
}

// ProfileUpdateInput holds the profile update fields. Nil fields are left
// unchanged.
type ProfileUpdateInput struct {
	DisplayName     *string `json:"display_name"`
	ProfileImageURL *string `json:"profile_image_url"`
}

// UpdateProfile updates the admin's display name and/or profile image.
func (s *AuthService) UpdateProfile(ctx context.Context, adminID uuid.UUID, input ProfileUpdateInput) (*domain.Admin, error) {
	if input.DisplayName == nil && input.ProfileImageURL == nil {
		return nil, domain.ErrValidation("no fields to update")
	}
	if input.DisplayName != nil && *input.DisplayName == "" {
		return nil, domain.ErrValidation("display name must not be empty")
	}

	if err := s.admins.UpdateProfile(ctx, s.db, adminID, input.DisplayName, input.ProfileImageURL); err != nil {
		if appErr, ok := err.(*domain.AppError); ok {
			return nil, appErr
		}
		return nil, domain.ErrInternal("update profile", err)
	}

	admin, err := s.admins.FindByID(ctx, s.db, adminID)
	if err != nil || admin == nil {
		return nil, domain.ErrInternal("reload admin", err)
	}
	return admin, nil
}

// PasswordChangeInput holds the password change fields.
type PasswordChangeInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ChangePassword verifies the current password and stores a new hash.
// Previously issued session tokens stay valid until their natural expiry.
func (s *AuthService) ChangePassword(ctx context.Context, adminID uuid.UUID, input PasswordChangeInput) error {
	if input.NewPassword != input.ConfirmPassword {
		return domain.ErrValidation("new passwords do not match")
	}
	if len(input.NewPassword) < 6 {
		return domain.ErrValidation("new password must be at least 6 characters")
	}

	admin, err := s.admins.FindByID(ctx, s.db, adminID)
	if err != nil {
		return domain.ErrInternal("find admin", err)
	}
	if admin == nil {
		return domain.ErrIdentityNotFound()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return domain.ErrValidation("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.ErrInternal("hash password", err)
	}

	if err := s.admins.UpdatePasswordHash(ctx, s.db, adminID, string(hash)); err != nil {
		return domain.ErrInternal("store password hash", err)
	}
	return nil
}

// EnsureDefaultAdmin creates the configured default admin if no admin with
// that email exists. Idempotent; called once at startup.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, email, password, name string) error {
	if err := domain.ValidateEmail(email); err != nil {
		return domain.ErrValidation(err.Error())
	}

	existing, err := s.admins.FindByEmail(ctx, s.db, email)
	if err != nil {
		return domain.ErrInternal("find default admin", err)
	}
	if existing != nil {
		s.logger.Info("default admin already exists", "email", email)
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.ErrInternal("hash default password", err)
	}

	admin := &domain.Admin{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  name,
	}
	if err := s.admins.Create(ctx, s.db, admin); err != nil {
		return domain.ErrInternal("create default admin", err)
	}

	s.logger.Info("default admin created", "email", email)
	return nil
}
