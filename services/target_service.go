package services

import (
	"context"

	"pmes/models"
	repository "pmes/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetService computes the summed quarterly and yearly targets for a KPI
// from all of its measures' worker assignments. Pure read: the rollup
// writer consumes the result.
type TargetService interface {
	ComputeTargets(ctx context.Context, kpiID primitive.ObjectID, year int) (models.QuarterTargets, error)
}

type targetService struct {
	measures    repository.MeasureRepository
	assignments repository.AssignmentRepository
}

func NewTargetService(measures repository.MeasureRepository, assignments repository.AssignmentRepository) TargetService {
	return &targetService{
		measures:    measures,
		assignments: assignments,
	}
}

func (s *targetService) ComputeTargets(ctx context.Context, kpiID primitive.ObjectID, year int) (models.QuarterTargets, error) {
	var targets models.QuarterTargets

	measures, err := s.measures.FindMeasuresByKpi(ctx, kpiID)
	if err != nil {
		return targets, err
	}
	if len(measures) == 0 {
		return targets, nil
	}

	measureIDs := make([]primitive.ObjectID, 0, len(measures))
	for _, m := range measures {
		measureIDs = append(measureIDs, m.ID)
	}

	assignments, err := s.assignments.FindByMeasureIDs(ctx, measureIDs, year)
	if err != nil {
		return targets, err
	}

	for _, a := range assignments {
		// Labels are matched case-insensitively; anything unrecognized
		// is skipped rather than counted or rejected.
		quarter, ok := models.ParseQuarter(string(a.Quarter))
		if !ok {
			continue
		}
		targets.Add(quarter, a.Target)
	}
	return targets, nil
}
