// Package identity resolves the users the identity provider writes to the users collection.
package identity

// go generate: mockery --name Resolver

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/Benevo-clic/benevoclic-api/apperrors"
	"github.com/Benevo-clic/benevoclic-api/databases"
	"github.com/Benevo-clic/benevoclic-api/models"
)

// Resolver looks up users by id or email
type Resolver interface {
	ResolveUserByID(ctx context.Context, id string) (*models.User, error)
	ResolveUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// MongoResolver reads users from MongoDB
type MongoResolver struct {
	users databases.UserDatabase
}

// NewMongoResolver returns a Resolver backed by the users collection
func NewMongoResolver(users databases.UserDatabase) *MongoResolver {
	return &MongoResolver{users: users}
}

// ResolveUserByID returns ErrNotFound when no user carries id
func (m *MongoResolver) ResolveUserByID(ctx context.Context, id string) (*models.User, error) {
	return m.find(ctx, bson.M{"_id": id})
}

// ResolveUserByEmail returns ErrNotFound when no user carries email
func (m *MongoResolver) ResolveUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.find(ctx, bson.M{"email": email})
}

func (m *MongoResolver) find(ctx context.Context, filter bson.M) (*models.User, error) {
	user, err := m.users.FindOne(ctx, filter)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.Clone(apperrors.ErrNotFound, "user not found")
	}
	if err != nil {
		zap.S().Errorw("failed to resolve user", "filter", filter, "error", err)
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to resolve user")
	}
	return user, nil
}
