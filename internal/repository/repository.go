package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"selfcc/care-app/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// CarePlanRepository stores every plan a user has been given. Plans are
// append-only: a new week is a new record, older records are never rewritten.
type CarePlanRepository interface {
	Create(ctx context.Context, userID primitive.ObjectID, plan domain.CarePlan) (primitive.ObjectID, error)
	// GetLatest returns the most recent plan, or ErrNotFound for a new user.
	GetLatest(ctx context.Context, userID primitive.ObjectID) (*domain.CarePlan, error)
	// ListByUser returns plans newest first.
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.CarePlan, error)
}
