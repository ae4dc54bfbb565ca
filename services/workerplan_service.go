package services

import (
	"context"

	"pmes/apperrors"
	"pmes/models"
	repository "pmes/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanQuery narrows the plan views. Zero values mean "not filtered".
type PlanQuery struct {
	WorkerID primitive.ObjectID
	Year     int
	Quarter  models.Quarter
	KpiID    primitive.ObjectID
}

// WorkerPlanService serves the flattened assignment views: a worker's own
// targets, or — for CEOs — the targets of every worker in their subsector.
type WorkerPlanService interface {
	GetWorkerPlans(ctx context.Context, callerID primitive.ObjectID, query PlanQuery) ([]models.WorkerPlanRow, error)
	GetCeoWorkerPlans(ctx context.Context, callerID primitive.ObjectID, query PlanQuery) ([]models.WorkerPlanRow, error)
}

type workerPlanService struct {
	users       repository.UserRepository
	measures    repository.MeasureRepository
	assignments repository.AssignmentRepository
}

func NewWorkerPlanService(users repository.UserRepository, measures repository.MeasureRepository, assignments repository.AssignmentRepository) WorkerPlanService {
	return &workerPlanService{
		users:       users,
		measures:    measures,
		assignments: assignments,
	}
}

func (s *workerPlanService) GetWorkerPlans(ctx context.Context, callerID primitive.ObjectID, query PlanQuery) ([]models.WorkerPlanRow, error) {
	// Without an explicit worker filter the caller only sees their own
	// assignments.
	workerID := query.WorkerID
	if workerID.IsZero() {
		workerID = callerID
	}
	if workerID.IsZero() {
		return []models.WorkerPlanRow{}, nil
	}

	return s.rows(ctx, []primitive.ObjectID{workerID}, query)
}

func (s *workerPlanService) GetCeoWorkerPlans(ctx context.Context, callerID primitive.ObjectID, query PlanQuery) ([]models.WorkerPlanRow, error) {
	caller, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if caller == nil || caller.Role != models.RoleCEO {
		return nil, apperrors.New(apperrors.Forbidden, "Access denied")
	}
	if caller.Subsector.IsZero() {
		return nil, apperrors.New(apperrors.BadRequest, "CEO subsector not found")
	}

	workerIDs, err := s.users.FindWorkerIDsBySubsector(ctx, caller.Subsector)
	if err != nil {
		return nil, err
	}

	scope := workerIDs
	if !query.WorkerID.IsZero() {
		if !containsID(workerIDs, query.WorkerID) {
			return nil, apperrors.New(apperrors.Forbidden, "Access denied: Worker not in your subsector")
		}
		scope = []primitive.ObjectID{query.WorkerID}
	}
	if len(scope) == 0 {
		return []models.WorkerPlanRow{}, nil
	}

	return s.rows(ctx, scope, query)
}

// rows joins assignments with their measures and KPIs into denormalized
// view rows. Assignments whose measure or KPI no longer resolves are
// dropped; the KPI filter applies after the join.
func (s *workerPlanService) rows(ctx context.Context, workerIDs []primitive.ObjectID, query PlanQuery) ([]models.WorkerPlanRow, error) {
	assignments, err := s.assignments.Find(ctx, models.AssignmentFilter{
		WorkerIDs: workerIDs,
		Year:      query.Year,
		Quarter:   query.Quarter,
	})
	if err != nil {
		return nil, err
	}

	measureIDs := make([]primitive.ObjectID, 0, len(assignments))
	seen := make(map[primitive.ObjectID]bool, len(assignments))
	for _, a := range assignments {
		if !seen[a.MeasureID] {
			seen[a.MeasureID] = true
			measureIDs = append(measureIDs, a.MeasureID)
		}
	}

	measures, err := s.measures.FindMeasuresByIDs(ctx, measureIDs)
	if err != nil {
		return nil, err
	}

	kpiIDs := make([]primitive.ObjectID, 0, len(measures))
	seenKpi := make(map[primitive.ObjectID]bool, len(measures))
	for _, m := range measures {
		if !m.KpiID.IsZero() && !seenKpi[m.KpiID] {
			seenKpi[m.KpiID] = true
			kpiIDs = append(kpiIDs, m.KpiID)
		}
	}

	kpis, err := s.measures.FindKpisByIDs(ctx, kpiIDs)
	if err != nil {
		return nil, err
	}

	rows := []models.WorkerPlanRow{}
	for _, a := range assignments {
		measure, ok := measures[a.MeasureID]
		if !ok {
			continue
		}
		kpi, ok := kpis[measure.KpiID]
		if !ok {
			continue
		}
		if !query.KpiID.IsZero() && kpi.ID != query.KpiID {
			continue
		}
		rows = append(rows, models.WorkerPlanRow{
			KpiName:     kpi.Name,
			KpiID:       kpi.ID.Hex(),
			MeasureName: measure.Name,
			MeasureID:   measure.ID.Hex(),
			WorkerID:    a.WorkerID.Hex(),
			Target:      a.Target,
			Year:        a.Year,
			Quarter:     a.Quarter,
		})
	}
	return rows, nil
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
