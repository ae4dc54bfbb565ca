package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuarterPerformance is one quarter's slice of a performance aggregate:
// the summed confirmed values and the accumulated worker descriptions.
type QuarterPerformance struct {
	Value       float64 `json:"value" bson:"value"`
	Description string  `json:"description" bson:"description"`
}

// PerformanceKey identifies the CEO-level aggregate a worker submission
// lands in.
type PerformanceKey struct {
	UserID      primitive.ObjectID `bson:"userId"`
	Role        string             `bson:"role"`
	KpiID       primitive.ObjectID `bson:"kpiId"`
	Year        int                `bson:"year"`
	SubsectorID primitive.ObjectID `bson:"subsectorId"`
}

// Performance is the CEO-level aggregated actual value for a KPI and year.
// Invariant after every mutation: PerformanceYear == sum of the four
// quarter values.
type Performance struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"userId" bson:"userId"`
	Role            string             `json:"role" bson:"role"`
	KpiID           primitive.ObjectID `json:"kpiId" bson:"kpiId"`
	Year            int                `json:"year" bson:"year"`
	SectorID        primitive.ObjectID `json:"sectorId" bson:"sectorId,omitempty"`
	SubsectorID     primitive.ObjectID `json:"subsectorId" bson:"subsectorId"`
	PlanID          primitive.ObjectID `json:"planId" bson:"planId,omitempty"`
	Q1Performance   QuarterPerformance `json:"q1Performance" bson:"q1Performance"`
	Q2Performance   QuarterPerformance `json:"q2Performance" bson:"q2Performance"`
	Q3Performance   QuarterPerformance `json:"q3Performance" bson:"q3Performance"`
	Q4Performance   QuarterPerformance `json:"q4Performance" bson:"q4Performance"`
	PerformanceYear float64            `json:"performanceYear" bson:"performanceYear"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// QuarterField returns the bson field name holding a quarter's sub-record.
func (q Quarter) QuarterField() string {
	switch q {
	case Q1:
		return "q1Performance"
	case Q2:
		return "q2Performance"
	case Q3:
		return "q3Performance"
	case Q4:
		return "q4Performance"
	}
	return ""
}

// QuarterValue returns the named quarter's sub-record.
func (p *Performance) QuarterValue(q Quarter) QuarterPerformance {
	switch q {
	case Q1:
		return p.Q1Performance
	case Q2:
		return p.Q2Performance
	case Q3:
		return p.Q3Performance
	case Q4:
		return p.Q4Performance
	}
	return QuarterPerformance{}
}

// QuarterSum recomputes the yearly total from the four quarters.
func (p *Performance) QuarterSum() float64 {
	return p.Q1Performance.Value + p.Q2Performance.Value +
		p.Q3Performance.Value + p.Q4Performance.Value
}

// FileKey identifies one worker's evidence slot.
type FileKey struct {
	WorkerID  primitive.ObjectID `bson:"workerId"`
	MeasureID primitive.ObjectID `bson:"measureId"`
	Year      int                `bson:"year"`
	Quarter   Quarter            `bson:"quarter"`
}

// PerformanceFile is one worker's evidence for one quarter: the submitted
// value, justification and stored report file. It is the source of truth
// for how much that worker currently contributes to the aggregate.
type PerformanceFile struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PerformanceID primitive.ObjectID `json:"performanceId" bson:"performanceId"`
	WorkerID      primitive.ObjectID `json:"workerId" bson:"workerId"`
	KpiID         primitive.ObjectID `json:"kpiId" bson:"kpiId"`
	MeasureID     primitive.ObjectID `json:"measureId" bson:"measureId"`
	Year          int                `json:"year" bson:"year"`
	Quarter       Quarter            `json:"quarter" bson:"quarter"`
	Description   string             `json:"description" bson:"description"`
	Confirmed     bool               `json:"confirmed" bson:"confirmed"`
	Value         float64            `json:"value" bson:"value"`
	Filename      string             `json:"filename,omitempty" bson:"filename,omitempty"`
	Filepath      string             `json:"filepath,omitempty" bson:"filepath,omitempty"`
	Mimetype      string             `json:"mimetype,omitempty" bson:"mimetype,omitempty"`
	Size          int64              `json:"size,omitempty" bson:"size,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt,omitempty"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt,omitempty"`
}

// ConfirmedValue is the contribution currently counted in the aggregate:
// zero unless the slot is confirmed.
func (f *PerformanceFile) ConfirmedValue() float64 {
	if f == nil || !f.Confirmed {
		return 0
	}
	return f.Value
}

// FileFilter narrows evidence listings.
type FileFilter struct {
	WorkerID primitive.ObjectID
	Year     int
	Quarter  Quarter
	KpiID    primitive.ObjectID
}
