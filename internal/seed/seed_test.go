package seed

import (
	"context"
	"testing"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories/memory"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestEnsureAdmin(t *testing.T) {
	auth.BcryptCost = bcrypt.MinCost
	ctx := context.Background()
	store := memory.New()
	repos := store.Repositories()
	account := AdminAccount{Email: " Admin@Portal.test ", Password: "Adm1n!pass"}

	require.NoError(t, EnsureAdmin(ctx, store.TxManager(), account, zerolog.Nop()))
	require.NoError(t, EnsureAdmin(ctx, store.TxManager(), account, zerolog.Nop()))

	users, profiles, _ := store.Counts()
	assert.Equal(t, 1, users)
	assert.Equal(t, 1, profiles)

	user, err := repos.Users.GetByEmail(ctx, "admin@portal.test")
	require.NoError(t, err)
	assert.True(t, user.IsSuperuser)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "Adm1n!pass"))

	profile, err := repos.Profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, profile.Role)
}

func TestEnsureAdmin_NotConfigured(t *testing.T) {
	store := memory.New()
	require.NoError(t, EnsureAdmin(context.Background(), store.TxManager(), AdminAccount{Email: "a@b.c"}, zerolog.Nop()))
	users, _, _ := store.Counts()
	assert.Zero(t, users)
}
