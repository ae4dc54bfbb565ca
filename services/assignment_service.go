package services

import (
	"context"

	"pmes/apperrors"
	"pmes/models"
	repository "pmes/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignMeasureInput is a validated assignment request.
type AssignMeasureInput struct {
	MeasureID primitive.ObjectID
	WorkerID  primitive.ObjectID
	Target    float64
	Year      int
	Quarter   models.Quarter
}

// AssignMeasureResult pairs the persisted assignment with the rolled-up
// CEO plan it produced.
type AssignMeasureResult struct {
	Assignment *models.MeasureAssignment `json:"assignment"`
	CeoPlan    *models.Plan              `json:"ceoPlan"`
}

// AssignmentService upserts worker targets and rolls the sums up into the
// owning CEO's plan.
type AssignmentService interface {
	AssignMeasure(ctx context.Context, actorID primitive.ObjectID, in AssignMeasureInput) (*AssignMeasureResult, error)
}

type assignmentService struct {
	users       repository.UserRepository
	measures    repository.MeasureRepository
	assignments repository.AssignmentRepository
	plans       repository.PlanRepository
	targets     TargetService
	notifier    Notifier
}

func NewAssignmentService(
	users repository.UserRepository,
	measures repository.MeasureRepository,
	assignments repository.AssignmentRepository,
	plans repository.PlanRepository,
	targets TargetService,
	notifier Notifier,
) AssignmentService {
	return &assignmentService{
		users:       users,
		measures:    measures,
		assignments: assignments,
		plans:       plans,
		targets:     targets,
		notifier:    notifier,
	}
}

func (s *assignmentService) AssignMeasure(ctx context.Context, actorID primitive.ObjectID, in AssignMeasureInput) (*AssignMeasureResult, error) {
	if actorID.IsZero() {
		return nil, apperrors.New(apperrors.Unauthenticated, "Unauthorized: User not authenticated")
	}
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, apperrors.New(apperrors.Unauthenticated, "Authenticated user not found")
	}

	if in.MeasureID.IsZero() || in.WorkerID.IsZero() || in.Target == 0 || in.Year == 0 || in.Quarter == "" {
		return nil, apperrors.New(apperrors.BadRequest, "Missing required fields.")
	}

	assignment, err := s.assignments.Upsert(ctx, in.MeasureID, in.WorkerID, in.Year, in.Quarter, in.Target)
	if err != nil {
		return nil, err
	}

	// Fire-and-forget; a lost notification never fails the assignment.
	s.notifier.MeasureAssigned(assignment, actor)

	measure, err := s.measures.FindMeasureByID(ctx, in.MeasureID)
	if err != nil {
		return nil, err
	}
	if measure == nil || measure.KpiID.IsZero() {
		return nil, apperrors.New(apperrors.NotFound, "KPI not found for measure.")
	}
	kpi, err := s.measures.FindKpiByID(ctx, measure.KpiID)
	if err != nil {
		return nil, err
	}
	if kpi == nil {
		return nil, apperrors.New(apperrors.NotFound, "KPI not found for measure.")
	}

	kpiAssignment, err := s.measures.FindKpiAssignment(ctx, kpi.ID)
	if err != nil {
		return nil, err
	}
	if kpiAssignment == nil {
		return nil, apperrors.New(apperrors.NotFound, "KPI Assignment not found.")
	}
	if kpiAssignment.SectorID.IsZero() || kpiAssignment.SubsectorID.IsZero() {
		return nil, apperrors.New(apperrors.BadRequest, "Sector or Subsector not assigned for KPI.")
	}

	targets, err := s.targets.ComputeTargets(ctx, kpi.ID, in.Year)
	if err != nil {
		return nil, err
	}

	key := models.PlanKey{
		KpiID:       kpi.ID,
		Year:        in.Year,
		Role:        actor.Role,
		SectorID:    kpiAssignment.SectorID,
		SubsectorID: kpiAssignment.SubsectorID,
		UserID:      actor.ID,
	}
	meta := repository.PlanMetadata{
		KpiName: kpi.Name,
		KraID:   kpi.KraID,
		GoalID:  kpi.GoalID,
	}
	plan, err := s.plans.Upsert(ctx, key, targets, meta)
	if err != nil {
		return nil, err
	}

	return &AssignMeasureResult{Assignment: assignment, CeoPlan: plan}, nil
}
