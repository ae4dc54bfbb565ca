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

// PerformanceFileRepository persists worker evidence records. Upsert and
// Delete return the slot's previous state from the same atomic write, which
// is what lets the submission engine compute an exact delta even when the
// same worker resubmits concurrently.
type PerformanceFileRepository interface {
	Find(ctx context.Context, key models.FileKey) (*models.PerformanceFile, error)
	// Upsert writes the evidence record for its key and returns the
	// document as it was before the write (nil on first submission).
	// File metadata fields are left untouched unless the record carries
	// a new filename.
	Upsert(ctx context.Context, file *models.PerformanceFile) (*models.PerformanceFile, error)
	// Delete removes the record and returns it (nil if there was none).
	Delete(ctx context.Context, key models.FileKey) (*models.PerformanceFile, error)
	List(ctx context.Context, filter models.FileFilter) ([]models.PerformanceFile, error)
}

type performanceFileRepository struct {
	collection *mongo.Collection
}

func NewPerformanceFileRepository(db *mongo.Database) PerformanceFileRepository {
	return &performanceFileRepository{collection: db.Collection("performance_files")}
}

func keyFilter(key models.FileKey) bson.M {
	return bson.M{
		"workerId":  key.WorkerID,
		"measureId": key.MeasureID,
		"year":      key.Year,
		"quarter":   key.Quarter,
	}
}

func (r *performanceFileRepository) Find(ctx context.Context, key models.FileKey) (*models.PerformanceFile, error) {
	var file models.PerformanceFile
	err := r.collection.FindOne(ctx, keyFilter(key)).Decode(&file)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find performance file")
	}
	return &file, nil
}

func (r *performanceFileRepository) Upsert(ctx context.Context, file *models.PerformanceFile) (*models.PerformanceFile, error) {
	now := time.Now()
	set := bson.M{
		"performanceId": file.PerformanceID,
		"kpiId":         file.KpiID,
		"description":   file.Description,
		"confirmed":     file.Confirmed,
		"value":         file.Value,
		"updatedAt":     now,
	}
	if file.Filename != "" {
		set["filename"] = file.Filename
		set["filepath"] = file.Filepath
		set["mimetype"] = file.Mimetype
		set["size"] = file.Size
	}

	// Pre-generating the id makes the post-write document fully known
	// even when the pre-image is returned.
	newID := primitive.NewObjectID()
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"_id": newID, "createdAt": now},
	}

	key := models.FileKey{
		WorkerID:  file.WorkerID,
		MeasureID: file.MeasureID,
		Year:      file.Year,
		Quarter:   file.Quarter,
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.Before)

	var previous models.PerformanceFile
	err := r.collection.FindOneAndUpdate(ctx, keyFilter(key), update, opts).Decode(&previous)
	if err == mongo.ErrNoDocuments {
		file.ID = newID
		file.CreatedAt = now
		file.UpdatedAt = now
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "upsert performance file")
	}

	file.ID = previous.ID
	file.CreatedAt = previous.CreatedAt
	file.UpdatedAt = now
	if file.Filename == "" {
		file.Filename = previous.Filename
		file.Filepath = previous.Filepath
		file.Mimetype = previous.Mimetype
		file.Size = previous.Size
	}
	return &previous, nil
}

func (r *performanceFileRepository) Delete(ctx context.Context, key models.FileKey) (*models.PerformanceFile, error) {
	var deleted models.PerformanceFile
	err := r.collection.FindOneAndDelete(ctx, keyFilter(key)).Decode(&deleted)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "delete performance file")
	}
	return &deleted, nil
}

func (r *performanceFileRepository) List(ctx context.Context, filter models.FileFilter) ([]models.PerformanceFile, error) {
	query := bson.M{"workerId": filter.WorkerID}
	if filter.Year != 0 {
		query["year"] = filter.Year
	}
	if filter.Quarter != "" {
		query["quarter"] = filter.Quarter
	}
	if !filter.KpiID.IsZero() {
		query["kpiId"] = filter.KpiID
	}

	// Documents written by the previous system carry a mongoose version
	// field; keep it out of responses.
	opts := options.Find().SetProjection(bson.M{"__v": 0})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list performance files")
	}
	defer cursor.Close(ctx)

	files := []models.PerformanceFile{}
	if err = cursor.All(ctx, &files); err != nil {
		return nil, errors.Wrap(err, "decode performance files")
	}
	return files, nil
}
