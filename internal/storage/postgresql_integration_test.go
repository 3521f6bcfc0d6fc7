package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/coaching-courses/internal/models"
)

func TestStorage_Integration(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	t.Run("database ready", func(t *testing.T) {
		require.NoError(t, CheckDatabaseReady(ctx, storage))
		require.NoError(t, storage.Ping(ctx))
	})

	t.Run("register and get user", func(t *testing.T) {
		uid, err := storage.RegisterUser(ctx, models.User{
			Email:        "anna@example.com",
			Username:     "anna",
			PasswordHash: "hash",
			Role:         models.RoleUser,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, uid)

		u, err := storage.GetUserByUsername(ctx, "anna")
		require.NoError(t, err)
		assert.Equal(t, uid, u.UUID)
		assert.Equal(t, "anna@example.com", u.Email)
		assert.Nil(t, u.Subscription)

		_, err = storage.RegisterUser(ctx, models.User{
			Email:        "other@example.com",
			Username:     "anna",
			PasswordHash: "hash",
			Role:         models.RoleUser,
		})
		assert.ErrorIs(t, err, ErrUserExists)

		_, err = storage.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("subscription lifecycle", func(t *testing.T) {
		factory := NewTestDataFactory(storage)
		uid := factory.CreateUser(t, "boris")

		sub, err := storage.GetSubscription(ctx, uid)
		require.NoError(t, err)
		assert.Nil(t, sub)

		active := testSubscription(uid, models.TierCore, models.StatusActive)
		require.NoError(t, storage.SaveSubscription(ctx, active, models.EventActivated))

		cancelled := active
		cancelled.Status = models.StatusCancelled
		require.NoError(t, storage.SaveSubscription(ctx, cancelled, models.EventCancelled))

		sub, err = storage.GetSubscription(ctx, uid)
		require.NoError(t, err)
		require.NotNil(t, sub)
		assert.Equal(t, cancelled, *sub)

		events, err := storage.ListSubscriptionEvents(ctx, uid, 10, 0)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, models.EventCancelled, events[0].Kind)
		assert.Equal(t, models.EventActivated, events[1].Kind)
		assert.Equal(t, models.StatusActive, events[1].Status)

		_, err = storage.GetSubscription(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)

		err = storage.SaveSubscription(ctx, testSubscription(uuid.New(), models.TierPro, models.StatusActive), models.EventActivated)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("incomplete subscription row is rejected", func(t *testing.T) {
		factory := NewTestDataFactory(storage)
		uid := factory.CreateUser(t, "clara")
		_, err := storage.DB.Exec(`UPDATE users SET package_type = 'pro' WHERE uid = $1`, uid)
		require.NoError(t, err)

		_, err = storage.GetSubscription(ctx, uid)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	})

	t.Run("active subscribers", func(t *testing.T) {
		factory := NewTestDataFactory(storage)
		uid := factory.CreateUser(t, "dmitry")
		require.NoError(t, storage.SaveSubscription(ctx,
			testSubscription(uid, models.TierPremium, models.StatusActive), models.EventActivated))

		subs, err := storage.ListActiveSubscribers(ctx)
		require.NoError(t, err)

		var found bool
		for _, s := range subs {
			assert.Equal(t, models.StatusActive, s.Status)
			if s.UserUID == uid {
				found = true
				assert.Equal(t, "dmitry@example.com", s.Email)
				assert.Equal(t, models.TierPremium, s.Tier)
			}
		}
		assert.True(t, found)
	})

	t.Run("published courses ordered by position", func(t *testing.T) {
		factory := NewTestDataFactory(storage)
		factory.CreateCourse(t, "third", 30, true)
		factory.CreateCourse(t, "hidden", 15, false)
		factory.CreateCourse(t, "first", 5, true)

		courses, err := storage.ListPublishedCourses(ctx)
		require.NoError(t, err)
		require.Len(t, courses, 2)
		assert.Equal(t, "first", courses[0].Title)
		assert.Equal(t, "third", courses[1].Title)
	})
}
