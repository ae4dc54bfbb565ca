package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"pmes/apperrors"
	"pmes/filestore"
	"pmes/models"
	repository "pmes/repositories"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubmitPerformanceInput is a worker's quarterly submission. Upload is nil
// when no report file accompanies the request; a confirmed submission may
// omit it only if the slot already holds a file.
type SubmitPerformanceInput struct {
	WorkerID    primitive.ObjectID
	MeasureID   primitive.ObjectID
	KpiID       primitive.ObjectID
	SectorID    primitive.ObjectID
	SubsectorID primitive.ObjectID
	Year        int
	Quarter     models.Quarter
	Value       float64
	Description string
	Confirmed   bool
	Upload      *multipart.FileHeader
}

type SubmitPerformanceResult struct {
	Performance     *models.Performance     `json:"performance"`
	PerformanceFile *models.PerformanceFile `json:"performanceFile"`
}

// PerformanceService is the submission engine: it keeps the CEO-level
// aggregate consistent while workers confirm, resubmit and withdraw their
// quarterly contributions.
type PerformanceService interface {
	Submit(ctx context.Context, in SubmitPerformanceInput) (*SubmitPerformanceResult, error)
	ListFiles(ctx context.Context, filter models.FileFilter) ([]models.PerformanceFile, error)
}

type performanceService struct {
	users        repository.UserRepository
	plans        repository.PlanRepository
	performances repository.PerformanceRepository
	files        repository.PerformanceFileRepository
	store        filestore.Store
	log          *logrus.Logger
}

func NewPerformanceService(
	users repository.UserRepository,
	plans repository.PlanRepository,
	performances repository.PerformanceRepository,
	files repository.PerformanceFileRepository,
	store filestore.Store,
	log *logrus.Logger,
) PerformanceService {
	return &performanceService{
		users:        users,
		plans:        plans,
		performances: performances,
		files:        files,
		store:        store,
		log:          log,
	}
}

func (s *performanceService) Submit(ctx context.Context, in SubmitPerformanceInput) (*SubmitPerformanceResult, error) {
	if in.WorkerID.IsZero() || in.MeasureID.IsZero() || in.KpiID.IsZero() || in.Year == 0 || in.Quarter == "" {
		return nil, apperrors.New(apperrors.BadRequest, "Missing required fields")
	}

	ceo, err := s.users.FindCEOBySubsector(ctx, in.SubsectorID)
	if err != nil {
		return nil, err
	}
	if ceo == nil {
		return nil, apperrors.New(apperrors.NotFound, "No CEO found for subsector.")
	}

	plan, err := s.plans.FindForSubmission(ctx, in.KpiID, in.Year, in.SubsectorID, ceo.ID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, apperrors.New(apperrors.NotFound, "No Plan found for KPI & subsector. Assign targets before submitting performance.")
	}

	key := models.PerformanceKey{
		UserID:      ceo.ID,
		Role:        models.RoleCEO,
		KpiID:       in.KpiID,
		Year:        in.Year,
		SubsectorID: in.SubsectorID,
	}
	performance, err := s.performances.FindOrCreate(ctx, key, in.SectorID, plan.ID)
	if err != nil {
		return nil, err
	}

	if !in.Confirmed {
		return s.withdraw(ctx, performance, in)
	}
	return s.confirm(ctx, performance, in)
}

// withdraw handles Confirmed→Unconfirmed (and the Unconfirmed→Unconfirmed
// no-op): the slot's record and stored file go away and its last confirmed
// value leaves the aggregate.
func (s *performanceService) withdraw(ctx context.Context, performance *models.Performance, in SubmitPerformanceInput) (*SubmitPerformanceResult, error) {
	slot := models.FileKey{
		WorkerID:  in.WorkerID,
		MeasureID: in.MeasureID,
		Year:      in.Year,
		Quarter:   in.Quarter,
	}
	previous, err := s.files.Delete(ctx, slot)
	if err != nil {
		return nil, err
	}

	mutation := repository.QuarterMutation{
		Delta:            -previous.ConfirmedValue(),
		ClearDescription: true,
	}
	performance, err = s.performances.ApplyQuarterMutation(ctx, performance.ID, in.Quarter, mutation)
	if err != nil {
		return nil, err
	}

	if previous != nil && previous.Filepath != "" {
		// A file that is already gone is fine; anything else is a real
		// storage failure.
		if err := s.store.Remove(previous.Filepath); err != nil {
			return nil, apperrors.Wrap(apperrors.Internal, "Server error", err)
		}
	}

	return &SubmitPerformanceResult{Performance: performance, PerformanceFile: nil}, nil
}

// confirm handles Unconfirmed→Confirmed and resubmission. The evidence
// upsert returns the slot's previous state from the same write, so the
// aggregate moves by exactly (new value − previously counted value).
func (s *performanceService) confirm(ctx context.Context, performance *models.Performance, in SubmitPerformanceInput) (*SubmitPerformanceResult, error) {
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperrors.New(apperrors.BadRequest, "Justification comment is required")
	}

	slot := models.FileKey{
		WorkerID:  in.WorkerID,
		MeasureID: in.MeasureID,
		Year:      in.Year,
		Quarter:   in.Quarter,
	}
	if in.Upload == nil {
		existing, err := s.files.Find(ctx, slot)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, apperrors.New(apperrors.BadRequest, "Report file is required")
		}
	}

	var meta *filestore.FileMeta
	if in.Upload != nil {
		var err error
		meta, err = s.store.Save(in.Upload)
		if err != nil {
			return nil, err
		}
	}

	record := &models.PerformanceFile{
		PerformanceID: performance.ID,
		WorkerID:      in.WorkerID,
		KpiID:         in.KpiID,
		MeasureID:     in.MeasureID,
		Year:          in.Year,
		Quarter:       in.Quarter,
		Description:   in.Description,
		Confirmed:     true,
		Value:         in.Value,
	}
	if meta != nil {
		record.Filename = meta.Filename
		record.Filepath = meta.Path
		record.Mimetype = meta.Mimetype
		record.Size = meta.Size
	}

	previous, err := s.files.Upsert(ctx, record)
	if err != nil {
		if meta != nil {
			if cleanupErr := s.store.Remove(meta.Path); cleanupErr != nil {
				s.log.WithError(cleanupErr).Warn("cleanup of stored file after failed upsert")
			}
		}
		return nil, err
	}

	// A replaced report file has no owning record anymore; drop it.
	if meta != nil && previous != nil && previous.Filepath != "" && previous.Filepath != meta.Path {
		if err := s.store.Remove(previous.Filepath); err != nil {
			s.log.WithError(err).Warn("removing replaced report file")
		}
	}

	mutation := repository.QuarterMutation{
		Delta:             in.Value - previous.ConfirmedValue(),
		AppendDescription: fmt.Sprintf("[%s] %s", in.WorkerID.Hex(), in.Description),
	}
	performance, err = s.performances.ApplyQuarterMutation(ctx, performance.ID, in.Quarter, mutation)
	if err != nil {
		return nil, err
	}

	return &SubmitPerformanceResult{Performance: performance, PerformanceFile: record}, nil
}

func (s *performanceService) ListFiles(ctx context.Context, filter models.FileFilter) ([]models.PerformanceFile, error) {
	if filter.WorkerID.IsZero() {
		return nil, apperrors.New(apperrors.BadRequest, "workerId query param is required")
	}
	return s.files.List(ctx, filter)
}
