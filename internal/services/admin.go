package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cbthost/voter-registry/internal/metrics"
	"github.com/cbthost/voter-registry/internal/store"
	"github.com/cbthost/voter-registry/types"
)

// AdminRepository defines persistence operations for administrators.
type AdminRepository interface {
	GetByID(ctx context.Context, id string) (types.Admin, error)
	GetByUsername(ctx context.Context, username string) (types.Admin, error)
	List(ctx context.Context) ([]types.Admin, error)
	Create(ctx context.Context, admin types.Admin) (types.Admin, error)
	Update(ctx context.Context, admin types.Admin) (types.Admin, error)
	Delete(ctx context.Context, id string) error
}

// PasswordHasher hashes and verifies password secrets.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// TokenIssuer signs bearer tokens for authenticated administrators.
type TokenIssuer interface {
	Issue(adminID, username string) (string, error)
}

// NewAdmin is the input for creating an administrator.
type NewAdmin struct {
	Username string
	Email    string
	Password string
	Role     types.Role
}

// ProfileUpdate changes an administrator's profile. Nil fields are left as is;
// an empty Email clears the address.
type ProfileUpdate struct {
	Username *string
	Email    *string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string
	Admin types.Admin
}

// adminWrite is a pending write of an administrator record. The password is
// hashed only when passwordModified is set, so a stored hash is never
// hashed again.
type adminWrite struct {
	admin            types.Admin
	password         string
	passwordModified bool
}

// AdminService encapsulates administrator use-cases.
type AdminService struct {
	repo    AdminRepository
	hasher  PasswordHasher
	tokens  TokenIssuer
	logger  *slog.Logger
	metrics *metrics.Metrics

	dummyOnce sync.Once
	dummyHash string
}

func NewAdminService(
	repo AdminRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	logger *slog.Logger,
	m *metrics.Metrics,
) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{
		repo:    repo,
		hasher:  hasher,
		tokens:  tokens,
		logger:  logger,
		metrics: m,
	}
}

func (s *AdminService) GetByID(ctx context.Context, id string) (types.Admin, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AdminService) List(ctx context.Context) ([]types.Admin, error) {
	return s.repo.List(ctx)
}

// Login checks the credentials and issues a token. Unknown usernames and wrong
// passwords both yield ErrInvalidCredentials.
func (s *AdminService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.metrics.LoginOutcome(metrics.OutcomeInvalid)
		return LoginResult{}, ErrInvalidCredentials
	}

	admin, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a comparison so unknown usernames cost the same as bad passwords.
			s.hasher.Verify(password, s.placeholderHash())
			s.metrics.LoginOutcome(metrics.OutcomeInvalid)
			return LoginResult{}, ErrInvalidCredentials
		}
		s.metrics.LoginOutcome(metrics.OutcomeError)
		return LoginResult{}, fmt.Errorf("lookup admin: %w", err)
	}

	if !s.hasher.Verify(password, admin.PasswordHash) {
		s.metrics.LoginOutcome(metrics.OutcomeInvalid)
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(admin.ID, admin.Username)
	if err != nil {
		s.metrics.LoginOutcome(metrics.OutcomeError)
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.LoginOutcome(metrics.OutcomeSuccess)
	s.logger.InfoContext(ctx, "admin logged in", "admin_id", admin.ID)
	return LoginResult{Token: token, Admin: admin}, nil
}

// Create validates input and stores a new administrator with a hashed password.
func (s *AdminService) Create(ctx context.Context, input NewAdmin) (types.Admin, error) {
	username, err := validateUsername(input.Username)
	if err != nil {
		return types.Admin{}, err
	}
	if err := validatePassword("password", input.Password); err != nil {
		return types.Admin{}, err
	}
	email, err := validateAdminEmail(input.Email)
	if err != nil {
		return types.Admin{}, err
	}
	role := input.Role
	if role == "" {
		role = types.RoleAdmin
	}
	if !role.Valid() {
		return types.Admin{}, invalid("role", "Role must be admin or superadmin")
	}

	created, err := s.save(ctx, adminWrite{
		admin: types.Admin{
			Username: username,
			Email:    email,
			Role:     role,
		},
		password:         input.Password,
		passwordModified: true,
	})
	if err != nil {
		return types.Admin{}, err
	}
	s.logger.InfoContext(ctx, "admin created", "admin_id", created.ID, "role", created.Role)
	return created, nil
}

// UpdateProfile changes username and/or email. The password hash is carried
// over untouched.
func (s *AdminService) UpdateProfile(ctx context.Context, adminID string, update ProfileUpdate) (types.Admin, error) {
	admin, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		return types.Admin{}, err
	}

	if update.Username != nil {
		username, err := validateUsername(*update.Username)
		if err != nil {
			return types.Admin{}, err
		}
		admin.Username = username
	}
	if update.Email != nil {
		email, err := validateAdminEmail(*update.Email)
		if err != nil {
			return types.Admin{}, err
		}
		admin.Email = email
	}

	return s.save(ctx, adminWrite{admin: admin})
}

// ChangePassword replaces the password after verifying the current one.
func (s *AdminService) ChangePassword(ctx context.Context, adminID, currentPassword, newPassword string) error {
	admin, err := s.repo.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(currentPassword, admin.PasswordHash) {
		return ErrInvalidCredentials
	}
	if err := validatePassword("newPassword", newPassword); err != nil {
		return err
	}

	_, err = s.save(ctx, adminWrite{
		admin:            admin,
		password:         newPassword,
		passwordModified: true,
	})
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "admin password changed", "admin_id", admin.ID)
	return nil
}

// Delete removes targetID on behalf of callerID. Administrators cannot
// delete themselves.
func (s *AdminService) Delete(ctx context.Context, callerID, targetID string) error {
	if strings.TrimSpace(targetID) == callerID {
		return ErrSelfDeletion
	}
	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "admin deleted", "admin_id", targetID, "deleted_by", callerID)
	return nil
}

func (s *AdminService) save(ctx context.Context, w adminWrite) (types.Admin, error) {
	admin := w.admin
	if w.passwordModified {
		hash, err := s.hasher.Hash(w.password)
		if err != nil {
			return types.Admin{}, fmt.Errorf("hash password: %w", err)
		}
		admin.PasswordHash = hash
	}

	if admin.ID == "" {
		return s.repo.Create(ctx, admin)
	}
	return s.repo.Update(ctx, admin)
}

func (s *AdminService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("placeholder-password")
		if err != nil {
			s.logger.Error("failed to prepare placeholder hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
