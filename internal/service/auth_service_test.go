package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"tasklist/api/internal/config"
	"tasklist/api/internal/models"
	"tasklist/api/internal/repository"
	"tasklist/api/internal/security"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Security: config.SecurityConfig{
			JWTSecret:       "test-signing-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 14 * 24 * time.Hour,
			MaxSessions:     10,
			MinPasswordLen:  8,
		},
	}
}

func newTestAuth(t *testing.T) (*AuthService, *repository.MemoryUserStore, *repository.MemorySessionStore) {
	t.Helper()
	users := repository.NewMemoryUserStore()
	sessions := repository.NewMemorySessionStore()
	auth := NewAuthService(users, sessions, testConfig(), zerolog.Nop())
	return auth, users, sessions
}

func TestSignup_IssuesBothTokens(t *testing.T) {
	t.Parallel()
	auth, _, _ := newTestAuth(t)
	ctx := context.Background()

	result, err := auth.Signup(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)
	require.NotEmpty(t, result.RefreshToken)
	require.NotEqual(t, result.AccessToken, result.RefreshToken)
	require.Equal(t, "a@x.com", result.User.Email)

	userID, err := security.ParseAccessToken(result.AccessToken, "test-signing-secret")
	require.NoError(t, err)
	require.Equal(t, result.User.ID, userID)
}

func TestSignup_Validation(t *testing.T) {
	t.Parallel()
	auth, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := auth.Signup(ctx, "not-an-email", "Secret123")
	require.ErrorIs(t, err, ErrValidation)

	_, err = auth.Signup(ctx, "a@x.com", "short")
	require.ErrorIs(t, err, ErrValidation)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	t.Parallel()
	auth, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := auth.Signup(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	_, err = auth.Signup(ctx, "a@x.com", "Another123")
	require.ErrorIs(t, err, ErrDuplicateEmail)

	// Case only differs; email uniqueness is case-insensitive.
	_, err = auth.Signup(ctx, "A@X.com", "Another123")
	require.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestLogin_EnumerationResistance(t *testing.T) {
	t.Parallel()
	auth, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := auth.Signup(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	_, unknownErr := auth.Login(ctx, "nobody@x.com", "Secret123")
	_, wrongErr := auth.Login(ctx, "a@x.com", "WrongPass1")

	require.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	require.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestLogin_CaseInsensitiveEmail(t *testing.T) {
	t.Parallel()
	auth, _, _ := newTestAuth(t)
	ctx := context.Background()

	_, err := auth.Signup(ctx, "Mixed@Case.com", "Secret123")
	require.NoError(t, err)

	_, err = auth.Login(ctx, "mixed@case.com", "Secret123")
	require.NoError(t, err)
}

func TestMultiSession_IndependentGrants(t *testing.T) {
	t.Parallel()
	auth, _, _ := newTestAuth(t)
	ctx := context.Background()

	signup, err := auth.Signup(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	login, err := auth.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)
	require.NotEqual(t, signup.RefreshToken, login.RefreshToken)

	userID := signup.User.ID

	// Both sessions resolve independently.
	_, _, err = auth.ResolveSession(ctx, userID, signup.RefreshToken)
	require.NoError(t, err)
	_, _, err = auth.ResolveSession(ctx, userID, login.RefreshToken)
	require.NoError(t, err)

	// Revoking one leaves the other intact.
	require.NoError(t, auth.Logout(ctx, userID, signup.RefreshToken))
	_, _, err = auth.ResolveSession(ctx, userID, signup.RefreshToken)
	require.ErrorIs(t, err, ErrSessionInvalid)
	_, _, err = auth.ResolveSession(ctx, userID, login.RefreshToken)
	require.NoError(t, err)
}

func TestSessionIsolation_AcrossUsers(t *testing.T) {
	t.Parallel()
	auth, _, _ := newTestAuth(t)
	ctx := context.Background()

	alice, err := auth.Signup(ctx, "alice@x.com", "Secret123")
	require.NoError(t, err)
	bob, err := auth.Signup(ctx, "bob@x.com", "Secret123")
	require.NoError(t, err)

	// Alice's refresh token presented under Bob's id is a session failure,
	// not a missing user.
	_, _, err = auth.ResolveSession(ctx, bob.User.ID, alice.RefreshToken)
	require.ErrorIs(t, err, ErrSessionInvalid)

	// Bob's own grant is untouched by Alice's activity.
	_, _, err = auth.ResolveSession(ctx, bob.User.ID, bob.RefreshToken)
	require.NoError(t, err)
}

func TestResolveSession_UnknownUser(t *testing.T) {
	t.Parallel()
	auth, _, _ := newTestAuth(t)
	ctx := context.Background()

	result, err := auth.Signup(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	_, _, err = auth.ResolveSession(ctx, "no-such-user", result.RefreshToken)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestResolveSession_ExpiryBoundary(t *testing.T) {
	t.Parallel()
	auth, _, _ := newTestAuth(t)
	ctx := context.Background()

	result, err := auth.Signup(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	grantedAt := time.Now()

	// Strictly before the deadline: valid.
	auth.now = func() time.Time { return grantedAt.Add(auth.cfg.Security.RefreshTokenTTL - time.Second) }
	_, _, err = auth.ResolveSession(ctx, result.User.ID, result.RefreshToken)
	require.NoError(t, err)

	// At or past the deadline: expired.
	auth.now = func() time.Time { return grantedAt.Add(auth.cfg.Security.RefreshTokenTTL + time.Second) }
	_, _, err = auth.ResolveSession(ctx, result.User.ID, result.RefreshToken)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestValidate_ExactExpiryIsExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	session := models.Session{ExpiresAt: now}
	require.True(t, session.Expired(now))
	require.False(t, session.Expired(now.Add(-time.Nanosecond)))
	require.True(t, session.Expired(now.Add(time.Nanosecond)))
}

func TestRefresh_DoesNotRotate(t *testing.T) {
	t.Parallel()
	auth, _, sessions := newTestAuth(t)
	ctx := context.Background()

	result, err := auth.Signup(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	before, err := sessions.ListByUser(ctx, result.User.ID)
	require.NoError(t, err)
	require.Len(t, before, 1)

	accessToken, err := auth.Refresh(ctx, result.User.ID, result.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	require.NotEqual(t, result.AccessToken, accessToken)

	// Same session, same hash, same expiry: the grant was not rotated.
	after, err := sessions.ListByUser(ctx, result.User.ID)
	require.NoError(t, err)
	require.Len(t, after, 1)
	require.Equal(t, before[0].ID, after[0].ID)
	require.Equal(t, before[0].RefreshTokenHash, after[0].RefreshTokenHash)
	require.True(t, before[0].ExpiresAt.Equal(after[0].ExpiresAt))

	// And the old refresh token still works.
	_, err = auth.Refresh(ctx, result.User.ID, result.RefreshToken)
	require.NoError(t, err)
}

func TestLogin_PrunesExpiredSessions(t *testing.T) {
	t.Parallel()
	auth, _, sessions := newTestAuth(t)
	ctx := context.Background()

	result, err := auth.Signup(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	require.NoError(t, sessions.Create(ctx, models.Session{
		ID:               "stale",
		UserID:           result.User.ID,
		RefreshTokenHash: []byte("stale-hash"),
		ExpiresAt:        time.Now().Add(-time.Hour),
	}))

	_, err = auth.Login(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	remaining, err := sessions.ListByUser(ctx, result.User.ID)
	require.NoError(t, err)
	for _, session := range remaining {
		require.NotEqual(t, "stale", session.ID)
	}
	// Signup session + login session survive.
	require.Len(t, remaining, 2)
}

func TestPruneExpired_OnlyRemovesLapsed(t *testing.T) {
	t.Parallel()
	auth, _, sessions := newTestAuth(t)
	ctx := context.Background()

	result, err := auth.Signup(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	require.NoError(t, sessions.Create(ctx, models.Session{
		ID:               "lapsed",
		UserID:           result.User.ID,
		RefreshTokenHash: []byte("h"),
		ExpiresAt:        time.Now().Add(-time.Minute),
	}))

	pruned, err := auth.PruneExpired(ctx, result.User.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, pruned)

	_, _, err = auth.ResolveSession(ctx, result.User.ID, result.RefreshToken)
	require.NoError(t, err)
}

func TestCreateSession_EnforcesCap(t *testing.T) {
	t.Parallel()
	users := repository.NewMemoryUserStore()
	sessions := repository.NewMemorySessionStore()
	cfg := testConfig()
	cfg.Security.MaxSessions = 2
	auth := NewAuthService(users, sessions, cfg, zerolog.Nop())
	ctx := context.Background()

	result, err := auth.Signup(ctx, "a@x.com", "Secret123")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		// Sessions sort by creation time; keep the timestamps apart.
		time.Sleep(5 * time.Millisecond)
		_, err := auth.Login(ctx, "a@x.com", "Secret123")
		require.NoError(t, err)
	}

	count, err := sessions.CountByUser(ctx, result.User.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
