package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"selfcc/care-app/internal/domain"
	"selfcc/care-app/internal/repository"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	id, err := repo.Create(ctx, &domain.User{Name: "Barbara", Email: "Barbara@Example.com", PasswordHash: "h"})
	require.NoError(t, err)

	byEmail, err := repo.GetByEmail(ctx, "barbara@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)
	assert.Equal(t, "barbara@example.com", byEmail.Email)

	byID, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Barbara", byID.Name)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	_, err := repo.Create(ctx, &domain.User{Email: "a@b.c", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Email: "A@B.C", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserRepository_NotFound(t *testing.T) {
	_, err := NewUserRepository().GetByID(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCarePlanRepository_LatestAndHistory(t *testing.T) {
	ctx := context.Background()
	repo := NewCarePlanRepository()
	user := primitive.NewObjectID()
	base := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)

	_, err := repo.GetLatest(ctx, user)
	require.ErrorIs(t, err, repository.ErrNotFound)

	for week := 1; week <= 3; week++ {
		_, err := repo.Create(ctx, user, domain.CarePlan{
			ID:         "plan-" + string(rune('0'+week)),
			WeekNumber: week,
			Exercises:  []domain.Exercise{{ID: "1", Reps: 10 - week}},
			Status:     domain.PlanPending,
			CreatedAt:  base.AddDate(0, 0, 7*week),
		})
		require.NoError(t, err)
	}

	latest, err := repo.GetLatest(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 3, latest.WeekNumber)

	history, err := repo.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{history[0].WeekNumber, history[1].WeekNumber, history[2].WeekNumber})

	// Returned plans don't alias stored ones.
	history[0].Exercises[0].Reps = 100
	again, err := repo.GetLatest(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 7, again.Exercises[0].Reps)
}

func TestCarePlanRepository_DuplicatePlanID(t *testing.T) {
	ctx := context.Background()
	repo := NewCarePlanRepository()
	user := primitive.NewObjectID()
	plan := domain.CarePlan{ID: "plan-1", WeekNumber: 1}

	_, err := repo.Create(ctx, user, plan)
	require.NoError(t, err)
	_, err = repo.Create(ctx, user, plan)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}
