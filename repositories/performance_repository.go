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

// QuarterMutation describes how one submission changes a quarter of the
// aggregate: the value delta (new confirmed value minus the previously
// counted one) and what happens to the quarter's description.
type QuarterMutation struct {
	Delta float64
	// AppendDescription adds a worker-tagged line to the quarter
	// description. Ignored when ClearDescription is set.
	AppendDescription string
	ClearDescription  bool
}

// PerformanceRepository persists the CEO-level performance aggregates.
// ApplyQuarterMutation is a single aggregation-pipeline update: the quarter
// value adjustment and the performanceYear recompute execute atomically on
// the document, so concurrent submissions by different workers cannot lose
// each other's deltas.
type PerformanceRepository interface {
	FindOrCreate(ctx context.Context, key models.PerformanceKey, sectorID, planID primitive.ObjectID) (*models.Performance, error)
	ApplyQuarterMutation(ctx context.Context, id primitive.ObjectID, quarter models.Quarter, m QuarterMutation) (*models.Performance, error)
}

type performanceRepository struct {
	collection *mongo.Collection
}

func NewPerformanceRepository(db *mongo.Database) PerformanceRepository {
	return &performanceRepository{collection: db.Collection("performances")}
}

func (r *performanceRepository) FindOrCreate(ctx context.Context, key models.PerformanceKey, sectorID, planID primitive.ObjectID) (*models.Performance, error) {
	filter := bson.M{
		"userId":      key.UserID,
		"role":        key.Role,
		"kpiId":       key.KpiID,
		"year":        key.Year,
		"subsectorId": key.SubsectorID,
	}

	empty := models.QuarterPerformance{Value: 0, Description: ""}
	update := bson.M{
		"$setOnInsert": bson.M{
			"sectorId":        sectorID,
			"planId":          planID,
			"q1Performance":   empty,
			"q2Performance":   empty,
			"q3Performance":   empty,
			"q4Performance":   empty,
			"performanceYear": float64(0),
			"updatedAt":       time.Now(),
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var performance models.Performance
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&performance)
	if err != nil {
		return nil, errors.Wrap(err, "find or create performance")
	}

	// Aggregates created before plan rollups carried planId lack the
	// back-reference; backfill it.
	if performance.PlanID.IsZero() && !planID.IsZero() {
		_, err = r.collection.UpdateOne(ctx,
			bson.M{"_id": performance.ID},
			bson.M{"$set": bson.M{"planId": planID}},
		)
		if err != nil {
			return nil, errors.Wrap(err, "backfill performance planId")
		}
		performance.PlanID = planID
	}
	return &performance, nil
}

func (r *performanceRepository) ApplyQuarterMutation(ctx context.Context, id primitive.ObjectID, quarter models.Quarter, m QuarterMutation) (*models.Performance, error) {
	field := quarter.QuarterField()
	if field == "" {
		return nil, errors.Errorf("unknown quarter %q", quarter)
	}

	valuePath := "$" + field + ".value"
	descPath := "$" + field + ".description"

	var description interface{}
	switch {
	case m.ClearDescription:
		description = ""
	case m.AppendDescription != "":
		current := bson.M{"$ifNull": bson.A{descPath, ""}}
		description = bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{current, ""}},
			m.AppendDescription,
			bson.M{"$concat": bson.A{current, "\n", m.AppendDescription}},
		}}
	default:
		description = bson.M{"$ifNull": bson.A{descPath, ""}}
	}

	quarterSum := bson.A{}
	for _, q := range models.Quarters {
		quarterSum = append(quarterSum, bson.M{"$ifNull": bson.A{"$" + q.QuarterField() + ".value", 0}})
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			field + ".value": bson.M{"$add": bson.A{
				bson.M{"$ifNull": bson.A{valuePath, 0}},
				m.Delta,
			}},
			field + ".description": description,
			"updatedAt":            "$$NOW",
		}}},
		// The second stage sees the adjusted quarter, so the yearly total
		// is recomputed from scratch in the same atomic update.
		{{Key: "$set", Value: bson.M{
			"performanceYear": bson.M{"$add": quarterSum},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var performance models.Performance
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&performance)
	if err != nil {
		return nil, errors.Wrap(err, "apply quarter mutation")
	}
	return &performance, nil
}
