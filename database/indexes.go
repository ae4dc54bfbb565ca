package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateIndexes builds the indexes the rollup pipeline depends on. The
// unique ones are not an optimization: every upsert key relies on its
// unique index to stay duplicate-free under concurrent writers.
func CreateIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// UPSERT KEY: one target per worker/measure/quarter slot
	assignmentIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "measureId", Value: 1},
				{Key: "workerId", Value: 1},
				{Key: "year", Value: 1},
				{Key: "quarter", Value: 1},
			},
			Options: options.Index().
				SetName("uniq_measure_worker_year_quarter").
				SetUnique(true),
		},
		// READS: plan views scoped by worker
		{
			Keys: bson.D{
				{Key: "workerId", Value: 1},
				{Key: "year", Value: 1},
			},
			Options: options.Index().SetName("idx_worker_year"),
		},
	}
	if _, err := db.Collection("measure_assignments").Indexes().CreateMany(ctx, assignmentIndexes); err != nil {
		return errors.Wrap(err, "create measure_assignment indexes")
	}

	// UPSERT KEY: one plan per (kpi, year, role, sector, subsector, user)
	planIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "kpiId", Value: 1},
				{Key: "year", Value: 1},
				{Key: "role", Value: 1},
				{Key: "sectorId", Value: 1},
				{Key: "subsectorId", Value: 1},
				{Key: "userId", Value: 1},
			},
			Options: options.Index().
				SetName("uniq_plan_key").
				SetUnique(true),
		},
		// READS: submission-time plan lookup
		{
			Keys: bson.D{
				{Key: "subsectorId", Value: 1},
				{Key: "kpiId", Value: 1},
				{Key: "year", Value: 1},
				{Key: "userId", Value: 1},
				{Key: "role", Value: 1},
			},
			Options: options.Index().SetName("idx_plan_submission_lookup"),
		},
	}
	if _, err := db.Collection("plans").Indexes().CreateMany(ctx, planIndexes); err != nil {
		return errors.Wrap(err, "create plan indexes")
	}

	// UPSERT KEY: one aggregate per (user, role, kpi, year, subsector)
	performanceIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "role", Value: 1},
				{Key: "kpiId", Value: 1},
				{Key: "year", Value: 1},
				{Key: "subsectorId", Value: 1},
			},
			Options: options.Index().
				SetName("uniq_performance_key").
				SetUnique(true),
		},
	}
	if _, err := db.Collection("performances").Indexes().CreateMany(ctx, performanceIndexes); err != nil {
		return errors.Wrap(err, "create performance indexes")
	}

	// UPSERT KEY: one evidence slot per worker/measure/quarter
	fileIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "workerId", Value: 1},
				{Key: "measureId", Value: 1},
				{Key: "year", Value: 1},
				{Key: "quarter", Value: 1},
			},
			Options: options.Index().
				SetName("uniq_file_slot").
				SetUnique(true),
		},
		// READS: evidence listing by worker with optional filters
		{
			Keys: bson.D{
				{Key: "workerId", Value: 1},
				{Key: "year", Value: 1},
				{Key: "quarter", Value: 1},
				{Key: "kpiId", Value: 1},
			},
			Options: options.Index().SetName("idx_file_listing"),
		},
	}
	if _, err := db.Collection("performance_files").Indexes().CreateMany(ctx, fileIndexes); err != nil {
		return errors.Wrap(err, "create performance_file indexes")
	}

	return nil
}
