package repository

import (
	"context"
	"time"

	"pmes/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AssignmentRepository persists worker quarterly targets. The upsert is a
// single FindOneAndUpdate against the unique (measureId, workerId, year,
// quarter) index, so concurrent re-assignments of the same slot can never
// produce two rows.
type AssignmentRepository interface {
	Upsert(ctx context.Context, measureID, workerID primitive.ObjectID, year int, quarter models.Quarter, target float64) (*models.MeasureAssignment, error)
	FindByMeasureIDs(ctx context.Context, measureIDs []primitive.ObjectID, year int) ([]models.MeasureAssignment, error)
	Find(ctx context.Context, filter models.AssignmentFilter) ([]models.MeasureAssignment, error)
}

type assignmentRepository struct {
	collection *mongo.Collection
}

func NewAssignmentRepository(db *mongo.Database) AssignmentRepository {
	return &assignmentRepository{collection: db.Collection("measure_assignments")}
}

func (r *assignmentRepository) Upsert(ctx context.Context, measureID, workerID primitive.ObjectID, year int, quarter models.Quarter, target float64) (*models.MeasureAssignment, error) {
	filter := bson.M{
		"measureId": measureID,
		"workerId":  workerID,
		"year":      year,
		"quarter":   quarter,
	}
	now := time.Now()
	update := bson.M{
		"$set":         bson.M{"target": target, "updatedAt": now},
		"$setOnInsert": bson.M{"createdAt": now},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var assignment models.MeasureAssignment
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&assignment)
	if err != nil {
		return nil, errors.Wrap(err, "upsert measure assignment")
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindByMeasureIDs(ctx context.Context, measureIDs []primitive.ObjectID, year int) ([]models.MeasureAssignment, error) {
	if len(measureIDs) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"measureId": bson.M{"$in": measureIDs},
		"year":      year,
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "find assignments by measures")
	}
	defer cursor.Close(ctx)

	var assignments []models.MeasureAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, errors.Wrap(err, "decode assignments")
	}
	return assignments, nil
}

func (r *assignmentRepository) Find(ctx context.Context, filter models.AssignmentFilter) ([]models.MeasureAssignment, error) {
	query := bson.M{}
	if len(filter.WorkerIDs) > 0 {
		query["workerId"] = bson.M{"$in": filter.WorkerIDs}
	}
	if filter.Year != 0 {
		query["year"] = filter.Year
	}
	if filter.Quarter != "" {
		query["quarter"] = filter.Quarter
	}

	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "find assignments")
	}
	defer cursor.Close(ctx)

	var assignments []models.MeasureAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, errors.Wrap(err, "decode assignments")
	}
	return assignments, nil
}
