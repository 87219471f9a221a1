package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"tasklist/api/internal/config"
	"tasklist/api/internal/models"
	"tasklist/api/internal/repository"
	"tasklist/api/internal/service"
)

func TestScheduler_PruneSessions(t *testing.T) {
	t.Parallel()

	sessions := repository.NewMemorySessionStore()
	cfg := &config.AppConfig{
		Security: config.SecurityConfig{
			JWTSecret:       "sweep-test-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 14 * 24 * time.Hour,
			MaxSessions:     10,
			MinPasswordLen:  8,
		},
	}
	auth := service.NewAuthService(repository.NewMemoryUserStore(), sessions, cfg, zerolog.Nop())

	ctx := context.Background()
	require.NoError(t, sessions.Create(ctx, models.Session{
		ID:               "lapsed",
		UserID:           "u1",
		RefreshTokenHash: []byte("h1"),
		ExpiresAt:        time.Now().Add(-time.Hour),
	}))
	require.NoError(t, sessions.Create(ctx, models.Session{
		ID:               "live",
		UserID:           "u1",
		RefreshTokenHash: []byte("h2"),
		ExpiresAt:        time.Now().Add(time.Hour),
	}))

	s := NewScheduler(auth, zerolog.Nop())
	s.pruneSessions()

	remaining, err := sessions.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	require.Equal(t, "live", remaining[0].ID)
}

func TestScheduler_StartWithoutService(t *testing.T) {
	t.Parallel()

	s := NewScheduler(nil, zerolog.Nop())
	require.NoError(t, s.Start())
	s.Stop()
}
