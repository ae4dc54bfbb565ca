package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// KPI is static reference data for this service; KPI management is out of
// scope but the rollup needs the name and the KRA/Goal lineage.
type KPI struct {
	ID     primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name   string             `json:"kpi_name" bson:"kpi_name"`
	KraID  primitive.ObjectID `json:"kraId" bson:"kraId,omitempty"`
	GoalID primitive.ObjectID `json:"goalId" bson:"goalId,omitempty"`
}

// Measure is a concrete assignable sub-target belonging to exactly one KPI.
type Measure struct {
	ID    primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name  string             `json:"name" bson:"name"`
	KpiID primitive.ObjectID `json:"kpiId" bson:"kpiId,omitempty"`
}

// KpiAssignment declares which sector/subsector owns a KPI. Targets for a
// KPI cannot be assigned until this routing record exists with both sides
// populated.
type KpiAssignment struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	KpiID       primitive.ObjectID `json:"kpiId" bson:"kpiId"`
	SectorID    primitive.ObjectID `json:"sectorId" bson:"sectorId,omitempty"`
	SubsectorID primitive.ObjectID `json:"subsectorId" bson:"subsectorId,omitempty"`
}
