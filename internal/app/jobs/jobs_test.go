package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories/memory"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCleanup(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	repos := store.Repositories()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repos.Tokens.Blacklist(ctx, "old", 1, now.Add(-time.Hour)))
	require.NoError(t, repos.Tokens.Blacklist(ctx, "live", 1, now.Add(time.Hour)))
	require.NoError(t, repos.PasswordResets.Create(ctx, &models.PasswordResetToken{UserID: 1, TokenHash: "a", ExpiresAt: now.Add(-time.Minute)}))
	fresh := &models.PasswordResetToken{UserID: 1, TokenHash: "b", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repos.PasswordResets.Create(ctx, fresh))

	job := TokenCleanup(repos, zerolog.Nop(), func() time.Time { return now })
	require.NoError(t, job(ctx))

	old, _ := repos.Tokens.IsBlacklisted(ctx, "old")
	live, _ := repos.Tokens.IsBlacklisted(ctx, "live")
	assert.False(t, old)
	assert.True(t, live)

	_, err := repos.PasswordResets.GetByHash(ctx, "a")
	assert.Error(t, err)
	_, err = repos.PasswordResets.GetByHash(ctx, "b")
	assert.NoError(t, err)
}

func TestRunner_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(ctx, zerolog.Nop())

	var calls atomic.Int32
	r.Every(5*time.Millisecond, "tick", func(context.Context) error {
		if calls.Add(1) == 2 {
			return errors.New("transient")
		}
		return nil
	})
	r.Every(5*time.Millisecond, "boom", func(context.Context) error { panic("boom") })
	r.Every(0, "disabled", func(context.Context) error { t.Error("disabled job ran"); return nil })

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() { r.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}
