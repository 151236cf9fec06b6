package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/hynorvixx/backend/internal/client/client"
	"github.com/hynorvixx/backend/internal/client/models"
	"github.com/hynorvixx/backend/internal/client/repositories/metadata"
)

// ErrNotLoggedIn is returned by authenticated calls when no session exists
// or the stored refresh token was rejected.
var ErrNotLoggedIn = errors.New("not logged in")

const (
	keyEmail   = "email"
	keyAccess  = "access_token"
	keyRefresh = "refresh_token"
)

// AuthAPI is the part of client.HTTPClient the session needs.
type AuthAPI interface {
	Signup(ctx context.Context, email, password string) (*models.AuthResult, error)
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
}

// SessionService keeps the current token pair in memory and mirrors it to
// the local metadata table so a restarted CLI stays logged in.
type SessionService struct {
	api AuthAPI
	db  *sql.DB

	mu      sync.Mutex
	session *models.Session
}

func NewSessionService(api AuthAPI, db *sql.DB) *SessionService {
	return &SessionService{api: api, db: db}
}

func (s *SessionService) Signup(ctx context.Context, email string, password []byte) (*models.User, error) {
	res, err := s.api.Signup(ctx, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if err := s.start(ctx, res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (s *SessionService) Login(ctx context.Context, email string, password []byte) (*models.User, error) {
	res, err := s.api.Login(ctx, email, string(password))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.start(ctx, res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (s *SessionService) start(ctx context.Context, res *models.AuthResult) error {
	sess := &models.Session{Email: res.User.Email, Tokens: res.Tokens}
	if err := s.save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	return nil
}

// Logout tells the server (best effort) and forgets the local session.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	sess := s.session
	s.session = nil
	s.mu.Unlock()

	if sess != nil {
		_ = s.api.Logout(ctx, sess.RefreshToken)
	}
	return metadata.NewSQLiteRepository(s.db).Clear(ctx)
}

// Restore loads a previously saved session. It reports false when nothing
// usable is stored.
func (s *SessionService) Restore(ctx context.Context) (bool, error) {
	vals, err := metadata.NewSQLiteRepository(s.db).GetMany(ctx, keyEmail, keyAccess, keyRefresh)
	if err != nil {
		return false, err
	}
	if len(vals) < 3 || len(vals[keyRefresh]) == 0 {
		return false, nil
	}

	s.mu.Lock()
	s.session = &models.Session{
		Email:  string(vals[keyEmail]),
		Tokens: models.Tokens{AccessToken: string(vals[keyAccess]), RefreshToken: string(vals[keyRefresh])},
	}
	s.mu.Unlock()
	return true, nil
}

// Email returns the logged-in email, or "" without a session.
func (s *SessionService) Email() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ""
	}
	return s.session.Email
}

func (s *SessionService) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

// Do runs fn with the current access token. If the server answers 401 the
// token pair is refreshed once and fn is retried. A rejected refresh ends
// the session.
func (s *SessionService) Do(ctx context.Context, fn func(accessToken string) error) error {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()
	if sess == nil {
		return ErrNotLoggedIn
	}

	err := fn(sess.AccessToken)
	if !errors.Is(err, client.ErrUnauthorized) {
		return err
	}

	tokens, err := s.api.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			s.mu.Lock()
			s.session = nil
			s.mu.Unlock()
			_ = metadata.NewSQLiteRepository(s.db).Clear(ctx)
			return fmt.Errorf("%w: session expired", ErrNotLoggedIn)
		}
		return fmt.Errorf("refresh: %w", err)
	}

	next := &models.Session{Email: sess.Email, Tokens: *tokens}
	if err := s.save(ctx, next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.mu.Lock()
	s.session = next
	s.mu.Unlock()

	return fn(next.AccessToken)
}

func (s *SessionService) save(ctx context.Context, sess *models.Session) error {
	return metadata.NewSQLiteRepository(s.db).SetMany(ctx, map[string][]byte{
		keyEmail:   []byte(sess.Email),
		keyAccess:  []byte(sess.AccessToken),
		keyRefresh: []byte(sess.RefreshToken),
	})
}
