package repository

import (
	"context"

	"pmes/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository reads the user directory maintained by the identity
// service. Lookups that match nothing return (nil, nil) so callers can map
// absence to their own error kind.
type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindCEOBySubsector(ctx context.Context, subsectorID primitive.ObjectID) (*models.User, error)
	FindWorkerIDsBySubsector(ctx context.Context, subsectorID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type userRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{collection: db.Collection("users")}
}

func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user by id")
	}
	return &user, nil
}

func (r *userRepository) FindCEOBySubsector(ctx context.Context, subsectorID primitive.ObjectID) (*models.User, error) {
	var user models.User
	filter := bson.M{"role": models.RoleCEO, "subsector": subsectorID}
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find CEO by subsector")
	}
	return &user, nil
}

func (r *userRepository) FindWorkerIDsBySubsector(ctx context.Context, subsectorID primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{"role": models.RoleWorker, "subsector": subsectorID}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, errors.Wrap(err, "find workers by subsector")
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decode worker ids")
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}
