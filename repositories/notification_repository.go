package repository

import (
	"context"

	"pmes/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// NotificationRepository drops notification documents for the delivery
// service to pick up.
type NotificationRepository interface {
	Insert(ctx context.Context, notification *models.Notification) error
}

type notificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) NotificationRepository {
	return &notificationRepository{collection: db.Collection("notifications")}
}

func (r *notificationRepository) Insert(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	_, err := r.collection.InsertOne(ctx, notification)
	return errors.Wrap(err, "insert notification")
}
