package memory

import (
	"context"
	"sort"
	"time"

	"github.com/alagappainfotech/student-registration-app/internal/app/models"
	"github.com/alagappainfotech/student-registration-app/internal/app/repositories"
	"github.com/alagappainfotech/student-registration-app/internal/pkg/apperrors"
)

type UserRepository struct{ s *Store }

var _ repositories.IUserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	if err := r.s.fault(OpUserCreate); err != nil {
		return err
	}
	var err error
	r.s.write(func(t *tables) {
		user.Email = models.NormalizeEmail(user.Email)
		for _, u := range t.users {
			if u.Email == user.Email || (user.Username != nil && u.Username != nil && *u.Username == *user.Username) {
				err = apperrors.ErrEmailAlreadyExists
				return
			}
		}
		user.ID = t.nextID("users")
		user.DateJoined = r.s.now()
		user.UpdatedAt = user.DateJoined
		t.users[user.ID] = *user
	})
	return err
}

func (r *UserRepository) find(match func(u models.User) bool) (*models.User, error) {
	var found *models.User
	r.s.read(func(t *tables) {
		for _, u := range t.users {
			if match(u) {
				found = &u
				return
			}
		}
	})
	if found == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return found, nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username != nil && *u.Username == username })
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == apperrors.ErrUserNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	var err error
	r.s.write(func(t *tables) {
		u, ok := t.users[id]
		if !ok {
			err = apperrors.ErrUserNotFound
			return
		}
		u.LastLogin = &at
		t.users[id] = u
	})
	return err
}

func (r *UserRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	var err error
	r.s.write(func(t *tables) {
		u, ok := t.users[id]
		if !ok {
			err = apperrors.ErrUserNotFound
			return
		}
		u.PasswordHash = passwordHash
		u.UpdatedAt = r.s.now()
		t.users[id] = u
	})
	return err
}

type ProfileRepository struct{ s *Store }

var _ repositories.IProfileRepository = (*ProfileRepository)(nil)

func (r *ProfileRepository) GetByUserID(_ context.Context, userID int64) (*models.Profile, error) {
	var found *models.Profile
	r.s.read(func(t *tables) {
		if p, ok := t.profiles[userID]; ok {
			found = &p
		}
	})
	if found == nil {
		return nil, apperrors.ErrResourceNotFound
	}
	return found, nil
}

func (r *ProfileRepository) Create(_ context.Context, profile *models.Profile) error {
	if err := r.s.fault(OpProfileCreate); err != nil {
		return err
	}
	var err error
	r.s.write(func(t *tables) {
		if _, ok := t.users[profile.UserID]; !ok {
			err = apperrors.ErrUserNotFound
			return
		}
		if _, ok := t.profiles[profile.UserID]; ok {
			err = apperrors.ErrResourceAlreadyExists
			return
		}
		profile.ID = t.nextID("profiles")
		profile.CreatedAt = r.s.now()
		profile.UpdatedAt = profile.CreatedAt
		t.profiles[profile.UserID] = *profile
	})
	return err
}

func (r *ProfileRepository) Upsert(_ context.Context, profile *models.Profile) error {
	var err error
	r.s.write(func(t *tables) {
		if _, ok := t.users[profile.UserID]; !ok {
			err = apperrors.ErrUserNotFound
			return
		}
		now := r.s.now()
		if existing, ok := t.profiles[profile.UserID]; ok {
			profile.ID = existing.ID
			profile.CreatedAt = existing.CreatedAt
		} else {
			profile.ID = t.nextID("profiles")
			profile.CreatedAt = now
		}
		profile.UpdatedAt = now
		t.profiles[profile.UserID] = *profile
	})
	return err
}

func (r *ProfileRepository) List(_ context.Context) ([]models.ProfileDetail, error) {
	out := []models.ProfileDetail{}
	r.s.read(func(t *tables) {
		for userID, p := range t.profiles {
			u := t.users[userID]
			out = append(out, models.ProfileDetail{
				Profile:   p,
				Email:     u.Email,
				Username:  u.Username,
				FirstName: u.FirstName,
				LastName:  u.LastName,
			})
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

type TokenRepository struct{ s *Store }

var _ repositories.ITokenRepository = (*TokenRepository)(nil)

func (r *TokenRepository) Blacklist(_ context.Context, jti string, userID int64, expiresAt time.Time) error {
	var err error
	r.s.write(func(t *tables) {
		if _, ok := t.blacklist[jti]; ok {
			err = apperrors.ErrTokenRevoked
			return
		}
		t.blacklist[jti] = models.BlacklistedToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt, BlacklistedAt: r.s.now()}
	})
	return err
}

func (r *TokenRepository) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	var ok bool
	r.s.read(func(t *tables) { _, ok = t.blacklist[jti] })
	return ok, nil
}

func (r *TokenRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	r.s.write(func(t *tables) {
		for jti, b := range t.blacklist {
			if b.ExpiresAt.Before(now) {
				delete(t.blacklist, jti)
				n++
			}
		}
	})
	return n, nil
}

type PasswordResetTokenRepository struct{ s *Store }

var _ repositories.IPasswordResetTokenRepository = (*PasswordResetTokenRepository)(nil)

func (r *PasswordResetTokenRepository) Create(_ context.Context, token *models.PasswordResetToken) error {
	r.s.write(func(t *tables) {
		token.ID = t.nextID("password_reset_tokens")
		token.CreatedAt = r.s.now()
		t.resets[token.ID] = *token
	})
	return nil
}

func (r *PasswordResetTokenRepository) GetByHash(_ context.Context, tokenHash string) (*models.PasswordResetToken, error) {
	var found *models.PasswordResetToken
	r.s.read(func(t *tables) {
		for _, tok := range t.resets {
			if tok.TokenHash == tokenHash {
				found = &tok
				return
			}
		}
	})
	if found == nil {
		return nil, apperrors.ErrInvalidPasswordResetToken
	}
	return found, nil
}

func (r *PasswordResetTokenRepository) MarkUsed(_ context.Context, id int64) error {
	var err error
	r.s.write(func(t *tables) {
		tok, ok := t.resets[id]
		if !ok || tok.Used {
			err = apperrors.ErrInvalidPasswordResetToken
			return
		}
		tok.Used = true
		t.resets[id] = tok
	})
	return err
}

func (r *PasswordResetTokenRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	r.s.write(func(t *tables) {
		for id, tok := range t.resets {
			if tok.Used || tok.ExpiresAt.Before(now) {
				delete(t.resets, id)
				n++
			}
		}
	})
	return n, nil
}
