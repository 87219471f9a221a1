package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tasklist/api/internal/config"
	"tasklist/api/internal/ids"
	"tasklist/api/internal/models"
	"tasklist/api/internal/repository"
	"tasklist/api/internal/security"
)

var (
	ErrValidation         = errors.New("invalid email or password format")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrSessionInvalid     = errors.New("refresh token expired or session invalid")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserStore is the slice of the credential store the auth core needs.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
}

// SessionStore persists refresh sessions. Lookups are existence checks only;
// expiry policy stays in this package.
type SessionStore interface {
	Create(ctx context.Context, session models.Session) error
	FindByRefreshHash(ctx context.Context, userID string, refreshHash []byte) (models.Session, error)
	ListByUser(ctx context.Context, userID string) ([]models.Session, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, userID string) (int64, error)
	DeleteAllExpired(ctx context.Context) (int64, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	DeleteOldestSessions(ctx context.Context, userID string, keepLatest int) error
}

type AuthService struct {
	users    UserStore
	sessions SessionStore
	cfg      *config.AppConfig
	log      zerolog.Logger
	now      func() time.Time
}

func NewAuthService(users UserStore, sessions SessionStore, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

type AuthResult struct {
	User         models.User
	AccessToken  string
	RefreshToken string
}

func (s *AuthService) Signup(ctx context.Context, email string, password string) (AuthResult, error) {
	email = normalizeEmail(email)
	if !emailPattern.MatchString(email) || len(password) < s.cfg.Security.MinPasswordLen {
		return AuthResult{}, ErrValidation
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return AuthResult{}, ErrDuplicateEmail
		}
		return AuthResult{}, err
	}

	return s.grantTokens(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, email string, password string) (AuthResult, error) {
	email = normalizeEmail(email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn a verification on unknown emails so both failure paths
			// cost the same and report the same error.
			_, _ = security.VerifyPassword(password, decoyHash)
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	if pruned, err := s.sessions.DeleteExpired(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("prune on login failed")
	} else if pruned > 0 {
		s.log.Debug().Int64("pruned", pruned).Str("user_id", user.ID).Msg("expired sessions pruned")
	}

	return s.grantTokens(ctx, user)
}

func (s *AuthService) grantTokens(ctx context.Context, user models.User) (AuthResult, error) {
	refreshToken, err := s.CreateSession(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}

	accessToken, err := s.IssueAccessToken(user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// CreateSession mints a fresh refresh session for the user and returns the
// raw token. Expiry is absolute: now + the configured refresh lifetime.
func (s *AuthService) CreateSession(ctx context.Context, user models.User) (string, error) {
	raw, hash, err := security.NewRefreshToken()
	if err != nil {
		return "", err
	}

	session := models.Session{
		ID:               ids.New(),
		UserID:           user.ID,
		RefreshTokenHash: hash,
		ExpiresAt:        s.now().Add(s.cfg.Security.RefreshTokenTTL),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}

	if err := s.enforceSessionLimit(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("enforce session limit failed")
	}

	return raw, nil
}

func (s *AuthService) enforceSessionLimit(ctx context.Context, userID string) error {
	if s.cfg.Security.MaxSessions <= 0 {
		return nil
	}
	count, err := s.sessions.CountByUser(ctx, userID)
	if err != nil {
		return err
	}
	if count <= s.cfg.Security.MaxSessions {
		return nil
	}
	return s.sessions.DeleteOldestSessions(ctx, userID, s.cfg.Security.MaxSessions)
}

func (s *AuthService) IssueAccessToken(userID string) (string, error) {
	return security.SignAccessToken(s.cfg.Security.JWTSecret, userID, s.cfg.Security.AccessTokenTTL)
}

// ResolveSession resolves the user behind a (user id, refresh token) pair.
// A missing user and a missing or expired session are distinct outcomes.
// Expired sessions are detected, not removed; pruning is a separate call.
func (s *AuthService) ResolveSession(ctx context.Context, userID string, refreshToken string) (models.User, models.Session, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, models.Session{}, ErrUserNotFound
		}
		return models.User{}, models.Session{}, err
	}

	hash := security.HashRefreshToken(refreshToken)
	session, err := s.sessions.FindByRefreshHash(ctx, userID, hash)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return models.User{}, models.Session{}, ErrSessionInvalid
		}
		return models.User{}, models.Session{}, err
	}

	if session.Expired(s.now()) {
		return models.User{}, models.Session{}, ErrSessionInvalid
	}

	return user, session, nil
}

// Refresh issues a new access token against a still-valid refresh session.
// The refresh token itself is not rotated and its expiry is not extended.
func (s *AuthService) Refresh(ctx context.Context, userID string, refreshToken string) (string, error) {
	user, _, err := s.ResolveSession(ctx, userID, refreshToken)
	if err != nil {
		return "", err
	}
	return s.IssueAccessToken(user.ID)
}

// Logout revokes the single session behind the presented refresh token.
func (s *AuthService) Logout(ctx context.Context, userID string, refreshToken string) error {
	hash := security.HashRefreshToken(refreshToken)
	session, err := s.sessions.FindByRefreshHash(ctx, userID, hash)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrSessionInvalid
		}
		return err
	}
	return s.sessions.DeleteByID(ctx, session.ID)
}

func (s *AuthService) ListSessions(ctx context.Context, userID string) ([]models.Session, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// PruneExpired removes one user's lapsed sessions.
func (s *AuthService) PruneExpired(ctx context.Context, userID string) (int64, error) {
	return s.sessions.DeleteExpired(ctx, userID)
}

// PruneAllExpired sweeps the whole session table; the scheduler runs this.
func (s *AuthService) PruneAllExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteAllExpired(ctx)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// decoyHash is a valid argon2id encoding of a throwaway value, used only to
// equalize login timing for unknown emails.
var decoyHash = func() []byte {
	h, err := security.HashPassword("decoy-password")
	if err != nil {
		panic(err)
	}
	return h
}()
