// Package memory provides in-process repositories for tests and single-node
// runs without MongoDB.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"selfcc/care-app/internal/domain"
	"selfcc/care-app/internal/repository"
)

// UserRepository is a map-backed repository.UserRepository.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[primitive.ObjectID]domain.User
	byEmail map[string]primitive.ObjectID
}

// NewUserRepository returns an empty user store.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[primitive.ObjectID]domain.User),
		byEmail: make(map[string]primitive.ObjectID),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" {
		return primitive.NilObjectID, errors.New("user email and password hash are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := r.byEmail[email]; taken {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now

	r.byID[user.ID] = *user
	r.byEmail[email] = user.ID
	return user.ID, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *UserRepository) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

// CarePlanRepository is a map-backed repository.CarePlanRepository.
type CarePlanRepository struct {
	mu    sync.RWMutex
	plans map[primitive.ObjectID][]domain.CarePlan // Oldest first
}

// NewCarePlanRepository returns an empty plan store.
func NewCarePlanRepository() *CarePlanRepository {
	return &CarePlanRepository{plans: make(map[primitive.ObjectID][]domain.CarePlan)}
}

func (r *CarePlanRepository) Create(_ context.Context, userID primitive.ObjectID, plan domain.CarePlan) (primitive.ObjectID, error) {
	if userID == primitive.NilObjectID || plan.ID == "" {
		return primitive.NilObjectID, errors.New("plan requires userId and plan id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.plans[userID] {
		if p.ID == plan.ID {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	plan.Exercises = domain.CloneExercises(plan.Exercises)
	r.plans[userID] = append(r.plans[userID], plan)
	return primitive.NewObjectID(), nil
}

func (r *CarePlanRepository) GetLatest(ctx context.Context, userID primitive.ObjectID) (*domain.CarePlan, error) {
	plans, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, repository.ErrNotFound
	}
	return &plans[0], nil
}

func (r *CarePlanRepository) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.CarePlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.plans[userID]
	out := make([]domain.CarePlan, len(stored))
	for i, p := range stored {
		p.Exercises = domain.CloneExercises(p.Exercises)
		out[i] = p
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WeekNumber != out[j].WeekNumber {
			return out[i].WeekNumber > out[j].WeekNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
