// Package services contains the server-side business logic: the
// authenticator behind signup/login/refresh and the photo upload lifecycle.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/hynorvixx/backend/internal/common"
	"github.com/hynorvixx/backend/internal/cryptox"
	"github.com/hynorvixx/backend/internal/dbx"
	"github.com/hynorvixx/backend/internal/logging"
	"github.com/hynorvixx/backend/internal/server/auth"
	"github.com/hynorvixx/backend/internal/server/models"
	"github.com/hynorvixx/backend/internal/server/repositories/repomanager"
)

const minPasswordBytes = 8

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService drives signup, login, token refresh and the per-request
// identity check.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	hasher      *cryptox.PasswordHasher
	logger      logging.Logger
	now         func() time.Time
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenService,
	hasher *cryptox.PasswordHasher, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		logger:      logger.With("module", "auth"),
		now:         time.Now,
	}
}

// Signup registers a new identity and returns it with a fresh token pair.
// An already registered email fails with common.ErrIdentityExists, also when
// that identity has been deactivated.
func (s *AuthService) Signup(ctx context.Context, email, password string) (*models.User, *auth.TokenPair, error) {
	email = models.NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return nil, nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	var user *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		exists, err := repo.ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			return common.ErrIdentityExists
		}

		user, err = repo.Create(ctx, &models.User{ID: id.String(), Email: email, PasswordHash: hash})
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrIdentityExists) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: create user: %w", common.ErrorInternal, err)
	}

	pair, err := s.issue(user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "user signed up", "user_id", user.ID)
	return user, pair, nil
}

// Login checks email and password. Unknown email, inactive identity and wrong
// password all fail with the same common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *auth.TokenPair, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, common.Validation("Email and password are required")
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.CompareDummy(password)
			return nil, nil, common.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if !errors.Is(err, cryptox.ErrMismatch) {
			s.logger.Error(ctx, "password hash check failed", "user_id", user.ID, "error", err)
		}
		return nil, nil, common.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, common.ErrInvalidCredentials
	}

	at := s.now().UTC()
	if err := repo.UpdateLastLogin(ctx, user.ID, at); err != nil {
		return nil, nil, fmt.Errorf("%w: update last login: %w", common.ErrorInternal, err)
	}
	user.LastLogin = &at

	pair, err := s.issue(user.ID)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return user, pair, nil
}

// Refresh trades a valid refresh token for a new pair. The old token stays
// valid until it expires. Expired and malformed tokens keep their distinct
// sub-kinds; a vanished or deactivated identity reads as invalid credentials.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	if refreshToken == "" {
		return nil, common.Validation("Refresh token is required")
	}

	subject, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if !user.IsActive {
		return nil, common.ErrInvalidCredentials
	}

	return s.issue(user.ID)
}

// Logout accepts and discards the token. Tokens are stateless, so nothing is
// revoked; clients are expected to drop them.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	if claims, err := s.tokens.Decode(refreshToken); err == nil {
		s.logger.Debug(ctx, "logout", "user_id", claims.Subject, "jti", claims.ID)
	}
}

// Authenticate resolves an access token to an active identity. The store is
// consulted on every call because a signed token outlives deactivation.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	if accessToken == "" {
		return nil, common.ErrUnauthenticated
	}

	subject, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrIdentityInactive
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	if !user.IsActive {
		return nil, common.ErrIdentityInactive
	}
	return user, nil
}

// Deactivate soft-deletes an identity. Its tokens stop passing Authenticate
// immediately.
func (s *AuthService) Deactivate(ctx context.Context, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return common.Validation("invalid user id")
	}
	if err := s.repomanager.Users(s.db).Deactivate(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	s.logger.Info(ctx, "user deactivated", "user_id", userID)
	return nil
}

func (s *AuthService) issue(userID string) (*auth.TokenPair, error) {
	pair, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return &pair, nil
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return common.Validation("Email and password are required")
	}
	if !emailPattern.MatchString(email) {
		return common.Validation("Invalid email address")
	}
	if len(password) < minPasswordBytes || len(password) > cryptox.MaxPasswordBytes {
		return common.Validation(fmt.Sprintf("Password must be between %d and %d bytes", minPasswordBytes, cryptox.MaxPasswordBytes))
	}
	return nil
}
