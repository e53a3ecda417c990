// internal/repository/mongo/care_plan_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"selfcc/care-app/internal/domain"
	"selfcc/care-app/internal/repository"
)

const carePlanCollectionName = "care_plans"

// carePlanDocument is the stored form of a plan: the domain value plus its owner.
type carePlanDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UserID          primitive.ObjectID `bson:"userId"`
	domain.CarePlan `bson:",inline"`
}

// mongoCarePlanRepository implements repository.CarePlanRepository
type mongoCarePlanRepository struct {
	collection *mongo.Collection
}

// NewMongoCarePlanRepository creates a new CarePlan repository.
func NewMongoCarePlanRepository(db *mongo.Database) repository.CarePlanRepository {
	return &mongoCarePlanRepository{
		collection: db.Collection(carePlanCollectionName),
	}
}

// Create inserts a new plan for the user.
func (r *mongoCarePlanRepository) Create(ctx context.Context, userID primitive.ObjectID, plan domain.CarePlan) (primitive.ObjectID, error) {
	if userID == primitive.NilObjectID || plan.ID == "" {
		return primitive.NilObjectID, errors.New("plan requires userId and plan id")
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	doc := carePlanDocument{
		ID:       primitive.NewObjectID(),
		UserID:   userID,
		CarePlan: plan,
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetLatest retrieves the newest plan for the user.
func (r *mongoCarePlanRepository) GetLatest(ctx context.Context, userID primitive.ObjectID) (*domain.CarePlan, error) {
	var doc carePlanDocument
	filter := bson.M{"userId": userID}
	opts := options.FindOne().SetSort(bson.D{{Key: "weekNumber", Value: -1}, {Key: "createdAt", Value: -1}})

	err := r.collection.FindOne(ctx, filter, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	plan := doc.CarePlan
	return &plan, nil
}

// ListByUser retrieves all plans for the user, newest first.
func (r *mongoCarePlanRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.CarePlan, error) {
	filter := bson.M{"userId": userID}
	findOptions := options.Find().SetSort(bson.D{{Key: "weekNumber", Value: -1}, {Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []carePlanDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	plans := make([]domain.CarePlan, len(docs))
	for i, d := range docs {
		plans[i] = d.CarePlan
	}
	return plans, nil
}

// EnsureCarePlanIndexes creates necessary indexes. Call during startup.
func EnsureCarePlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// History lookups: newest week first per user
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "weekNumber", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "planId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
