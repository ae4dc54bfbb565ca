package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuarterTargets holds the per-quarter sums produced by the target
// aggregator.
type QuarterTargets struct {
	Q1 float64 `json:"q1"`
	Q2 float64 `json:"q2"`
	Q3 float64 `json:"q3"`
	Q4 float64 `json:"q4"`
}

func (t QuarterTargets) Total() float64 {
	return t.Q1 + t.Q2 + t.Q3 + t.Q4
}

func (t *QuarterTargets) Add(q Quarter, v float64) {
	switch q {
	case Q1:
		t.Q1 += v
	case Q2:
		t.Q2 += v
	case Q3:
		t.Q3 += v
	case Q4:
		t.Q4 += v
	}
}

// PlanKey identifies exactly one plan document. All six fields participate
// in the unique index backing the upsert.
type PlanKey struct {
	KpiID       primitive.ObjectID `bson:"kpiId"`
	Year        int                `bson:"year"`
	Role        string             `bson:"role"`
	SectorID    primitive.ObjectID `bson:"sectorId"`
	SubsectorID primitive.ObjectID `bson:"subsectorId"`
	UserID      primitive.ObjectID `bson:"userId"`
}

// Plan is the CEO-level aggregated yearly/quarterly target for a KPI.
// Invariant after every rollup: Target == Q1+Q2+Q3+Q4.
type Plan struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	KpiID       primitive.ObjectID `json:"kpiId" bson:"kpiId"`
	Year        int                `json:"year" bson:"year"`
	Role        string             `json:"role" bson:"role"`
	SectorID    primitive.ObjectID `json:"sectorId" bson:"sectorId"`
	SubsectorID primitive.ObjectID `json:"subsectorId" bson:"subsectorId"`
	UserID      primitive.ObjectID `json:"userId" bson:"userId"`
	Target      float64            `json:"target" bson:"target"`
	Q1          float64            `json:"q1" bson:"q1"`
	Q2          float64            `json:"q2" bson:"q2"`
	Q3          float64            `json:"q3" bson:"q3"`
	Q4          float64            `json:"q4" bson:"q4"`
	KpiName     string             `json:"kpi_name" bson:"kpi_name"`
	KraID       primitive.ObjectID `json:"kraId" bson:"kraId,omitempty"`
	GoalID      primitive.ObjectID `json:"goalId" bson:"goalId,omitempty"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// WorkerPlanRow is the denormalized row returned by the plan readers:
// MeasureAssignment joined with its Measure and KPI.
type WorkerPlanRow struct {
	KpiName     string  `json:"kpiName"`
	KpiID       string  `json:"kpiId"`
	MeasureName string  `json:"measureName"`
	MeasureID   string  `json:"measureId"`
	WorkerID    string  `json:"workerId"`
	Target      float64 `json:"target"`
	Year        int     `json:"year"`
	Quarter     Quarter `json:"quarter"`
}
