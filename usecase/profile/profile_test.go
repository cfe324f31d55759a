package profile_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository/memory"
	"github.com/fastygo/tasktracker/usecase/profile"
)

func TestUpdateProfile(t *testing.T) {
	users := memory.NewUserRepository()
	user := &domain.User{Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, users.Insert(context.Background(), user))

	uc := profile.New(users, nil)
	birthday := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)

	updated, err := uc.UpdateProfile(context.Background(), user.ID, domain.Profile{
		Nickname: "ally",
		Gender:   "female",
		Birthday: &birthday,
	})
	require.NoError(t, err)
	assert.Equal(t, "ally", updated.Nickname)

	got, err := uc.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ally", got.Nickname)
	assert.Equal(t, "female", got.Gender)
	require.NotNil(t, got.Birthday)
	assert.True(t, birthday.Equal(*got.Birthday))
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "hash", got.PasswordHash)
}

func TestGetProfile_Errors(t *testing.T) {
	uc := profile.New(memory.NewUserRepository(), nil)

	_, err := uc.GetProfile(context.Background(), "")
	assert.Equal(t, domain.ErrCodeUnauthenticated, domain.CodeOf(err))

	_, err = uc.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
