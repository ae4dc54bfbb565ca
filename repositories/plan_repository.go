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

// PlanMetadata is the denormalized KPI lineage stamped onto a plan at
// rollup time.
type PlanMetadata struct {
	KpiName string
	KraID   primitive.ObjectID
	GoalID  primitive.ObjectID
}

// PlanRepository persists CEO-level plans. Upsert is a FindOneAndUpdate on
// the full unique key, so repeated rollups overwrite the same document and
// concurrent rollups cannot duplicate it.
type PlanRepository interface {
	Upsert(ctx context.Context, key models.PlanKey, targets models.QuarterTargets, meta PlanMetadata) (*models.Plan, error)
	FindForSubmission(ctx context.Context, kpiID primitive.ObjectID, year int, subsectorID, userID primitive.ObjectID) (*models.Plan, error)
}

type planRepository struct {
	collection *mongo.Collection
}

func NewPlanRepository(db *mongo.Database) PlanRepository {
	return &planRepository{collection: db.Collection("plans")}
}

func (r *planRepository) Upsert(ctx context.Context, key models.PlanKey, targets models.QuarterTargets, meta PlanMetadata) (*models.Plan, error) {
	filter := bson.M{
		"kpiId":       key.KpiID,
		"year":        key.Year,
		"role":        key.Role,
		"sectorId":    key.SectorID,
		"subsectorId": key.SubsectorID,
		"userId":      key.UserID,
	}
	update := bson.M{
		"$set": bson.M{
			"target":    targets.Total(),
			"q1":        targets.Q1,
			"q2":        targets.Q2,
			"q3":        targets.Q3,
			"q4":        targets.Q4,
			"kpi_name":  meta.KpiName,
			"kraId":     meta.KraID,
			"goalId":    meta.GoalID,
			"updatedAt": time.Now(),
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var plan models.Plan
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&plan)
	if err != nil {
		return nil, errors.Wrap(err, "upsert plan")
	}
	return &plan, nil
}

// FindForSubmission locates the CEO plan a worker submission must land
// under. Returns (nil, nil) when no plan exists yet.
func (r *planRepository) FindForSubmission(ctx context.Context, kpiID primitive.ObjectID, year int, subsectorID, userID primitive.ObjectID) (*models.Plan, error) {
	filter := bson.M{
		"kpiId":       kpiID,
		"year":        year,
		"subsectorId": subsectorID,
		"userId":      userID,
		"role":        models.RoleCEO,
	}

	var plan models.Plan
	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find plan for submission")
	}
	return &plan, nil
}
