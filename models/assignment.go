package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MeasureAssignment is one worker's quarterly numeric target for a measure.
// Unique per (measureId, workerId, year, quarter); re-assignment updates
// the target in place.
type MeasureAssignment struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MeasureID primitive.ObjectID `json:"measureId" bson:"measureId"`
	WorkerID  primitive.ObjectID `json:"workerId" bson:"workerId"`
	Target    float64            `json:"target" bson:"target"`
	Year      int                `json:"year" bson:"year"`
	Quarter   Quarter            `json:"quarter" bson:"quarter"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// AssignmentFilter narrows assignment reads for the plan views.
type AssignmentFilter struct {
	WorkerIDs []primitive.ObjectID
	Year      int
	Quarter   Quarter
}
