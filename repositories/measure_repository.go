package repository

import (
	"context"

	"pmes/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MeasureRepository reads the static KPI reference data: measures, KPIs and
// the KPI→sector/subsector routing records. Management of this data lives
// elsewhere; the rollup pipeline only reads it.
type MeasureRepository interface {
	FindMeasureByID(ctx context.Context, id primitive.ObjectID) (*models.Measure, error)
	FindMeasuresByKpi(ctx context.Context, kpiID primitive.ObjectID) ([]models.Measure, error)
	FindMeasuresByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Measure, error)
	FindKpiByID(ctx context.Context, id primitive.ObjectID) (*models.KPI, error)
	FindKpisByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.KPI, error)
	FindKpiAssignment(ctx context.Context, kpiID primitive.ObjectID) (*models.KpiAssignment, error)
}

type measureRepository struct {
	measures       *mongo.Collection
	kpis           *mongo.Collection
	kpiAssignments *mongo.Collection
}

func NewMeasureRepository(db *mongo.Database) MeasureRepository {
	return &measureRepository{
		measures:       db.Collection("measures"),
		kpis:           db.Collection("kpis"),
		kpiAssignments: db.Collection("kpi_assignments"),
	}
}

func (r *measureRepository) FindMeasureByID(ctx context.Context, id primitive.ObjectID) (*models.Measure, error) {
	var measure models.Measure
	err := r.measures.FindOne(ctx, bson.M{"_id": id}).Decode(&measure)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find measure by id")
	}
	return &measure, nil
}

func (r *measureRepository) FindMeasuresByKpi(ctx context.Context, kpiID primitive.ObjectID) ([]models.Measure, error) {
	cursor, err := r.measures.Find(ctx, bson.M{"kpiId": kpiID})
	if err != nil {
		return nil, errors.Wrap(err, "find measures by kpi")
	}
	defer cursor.Close(ctx)

	var measures []models.Measure
	if err = cursor.All(ctx, &measures); err != nil {
		return nil, errors.Wrap(err, "decode measures")
	}
	return measures, nil
}

func (r *measureRepository) FindMeasuresByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Measure, error) {
	result := make(map[primitive.ObjectID]models.Measure, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := r.measures.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "find measures by ids")
	}
	defer cursor.Close(ctx)

	var measures []models.Measure
	if err = cursor.All(ctx, &measures); err != nil {
		return nil, errors.Wrap(err, "decode measures")
	}
	for _, m := range measures {
		result[m.ID] = m
	}
	return result, nil
}

func (r *measureRepository) FindKpiByID(ctx context.Context, id primitive.ObjectID) (*models.KPI, error) {
	var kpi models.KPI
	err := r.kpis.FindOne(ctx, bson.M{"_id": id}).Decode(&kpi)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find kpi by id")
	}
	return &kpi, nil
}

func (r *measureRepository) FindKpisByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.KPI, error) {
	result := make(map[primitive.ObjectID]models.KPI, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := r.kpis.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrap(err, "find kpis by ids")
	}
	defer cursor.Close(ctx)

	var kpis []models.KPI
	if err = cursor.All(ctx, &kpis); err != nil {
		return nil, errors.Wrap(err, "decode kpis")
	}
	for _, k := range kpis {
		result[k.ID] = k
	}
	return result, nil
}

func (r *measureRepository) FindKpiAssignment(ctx context.Context, kpiID primitive.ObjectID) (*models.KpiAssignment, error) {
	var assignment models.KpiAssignment
	err := r.kpiAssignments.FindOne(ctx, bson.M{"kpiId": kpiID}).Decode(&assignment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find kpi assignment")
	}
	return &assignment, nil
}
