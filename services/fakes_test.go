package services

import (
	"context"
	"fmt"
	"mime/multipart"

	"pmes/filestore"
	"pmes/models"
	repository "pmes/repositories"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the Mongo repositories' observable
// behavior (upsert-by-key, pre-image returns, delta application) so the
// service tests exercise the real sequencing logic.

type fakeUserRepo struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindCEOBySubsector(_ context.Context, subsectorID primitive.ObjectID) (*models.User, error) {
	for _, u := range r.users {
		if u.Role == models.RoleCEO && u.Subsector == subsectorID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindWorkerIDsBySubsector(_ context.Context, subsectorID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var ids []primitive.ObjectID
	for _, u := range r.users {
		if u.Role == models.RoleWorker && u.Subsector == subsectorID {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

type fakeMeasureRepo struct {
	measures       map[primitive.ObjectID]models.Measure
	kpis           map[primitive.ObjectID]models.KPI
	kpiAssignments map[primitive.ObjectID]models.KpiAssignment // keyed by kpiId
}

func newFakeMeasureRepo() *fakeMeasureRepo {
	return &fakeMeasureRepo{
		measures:       make(map[primitive.ObjectID]models.Measure),
		kpis:           make(map[primitive.ObjectID]models.KPI),
		kpiAssignments: make(map[primitive.ObjectID]models.KpiAssignment),
	}
}

func (r *fakeMeasureRepo) FindMeasureByID(_ context.Context, id primitive.ObjectID) (*models.Measure, error) {
	if m, ok := r.measures[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (r *fakeMeasureRepo) FindMeasuresByKpi(_ context.Context, kpiID primitive.ObjectID) ([]models.Measure, error) {
	var out []models.Measure
	for _, m := range r.measures {
		if m.KpiID == kpiID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMeasureRepo) FindMeasuresByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Measure, error) {
	out := make(map[primitive.ObjectID]models.Measure)
	for _, id := range ids {
		if m, ok := r.measures[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}

func (r *fakeMeasureRepo) FindKpiByID(_ context.Context, id primitive.ObjectID) (*models.KPI, error) {
	if k, ok := r.kpis[id]; ok {
		return &k, nil
	}
	return nil, nil
}

func (r *fakeMeasureRepo) FindKpisByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.KPI, error) {
	out := make(map[primitive.ObjectID]models.KPI)
	for _, id := range ids {
		if k, ok := r.kpis[id]; ok {
			out[id] = k
		}
	}
	return out, nil
}

func (r *fakeMeasureRepo) FindKpiAssignment(_ context.Context, kpiID primitive.ObjectID) (*models.KpiAssignment, error) {
	if ka, ok := r.kpiAssignments[kpiID]; ok {
		return &ka, nil
	}
	return nil, nil
}

type assignmentKey struct {
	measureID primitive.ObjectID
	workerID  primitive.ObjectID
	year      int
	quarter   models.Quarter
}

type fakeAssignmentRepo struct {
	assignments map[assignmentKey]*models.MeasureAssignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{assignments: make(map[assignmentKey]*models.MeasureAssignment)}
}

func (r *fakeAssignmentRepo) Upsert(_ context.Context, measureID, workerID primitive.ObjectID, year int, quarter models.Quarter, target float64) (*models.MeasureAssignment, error) {
	key := assignmentKey{measureID, workerID, year, quarter}
	if existing, ok := r.assignments[key]; ok {
		existing.Target = target
		copied := *existing
		return &copied, nil
	}
	created := &models.MeasureAssignment{
		ID:        primitive.NewObjectID(),
		MeasureID: measureID,
		WorkerID:  workerID,
		Target:    target,
		Year:      year,
		Quarter:   quarter,
	}
	r.assignments[key] = created
	copied := *created
	return &copied, nil
}

func (r *fakeAssignmentRepo) FindByMeasureIDs(_ context.Context, measureIDs []primitive.ObjectID, year int) ([]models.MeasureAssignment, error) {
	wanted := make(map[primitive.ObjectID]bool, len(measureIDs))
	for _, id := range measureIDs {
		wanted[id] = true
	}
	var out []models.MeasureAssignment
	for _, a := range r.assignments {
		if wanted[a.MeasureID] && a.Year == year {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) Find(_ context.Context, filter models.AssignmentFilter) ([]models.MeasureAssignment, error) {
	workers := make(map[primitive.ObjectID]bool, len(filter.WorkerIDs))
	for _, id := range filter.WorkerIDs {
		workers[id] = true
	}
	var out []models.MeasureAssignment
	for _, a := range r.assignments {
		if len(workers) > 0 && !workers[a.WorkerID] {
			continue
		}
		if filter.Year != 0 && a.Year != filter.Year {
			continue
		}
		if filter.Quarter != "" && a.Quarter != filter.Quarter {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAssignmentRepo) count() int {
	return len(r.assignments)
}

type fakePlanRepo struct {
	plans map[models.PlanKey]*models.Plan
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[models.PlanKey]*models.Plan)}
}

func (r *fakePlanRepo) Upsert(_ context.Context, key models.PlanKey, targets models.QuarterTargets, meta repository.PlanMetadata) (*models.Plan, error) {
	plan, ok := r.plans[key]
	if !ok {
		plan = &models.Plan{
			ID:          primitive.NewObjectID(),
			KpiID:       key.KpiID,
			Year:        key.Year,
			Role:        key.Role,
			SectorID:    key.SectorID,
			SubsectorID: key.SubsectorID,
			UserID:      key.UserID,
		}
		r.plans[key] = plan
	}
	plan.Target = targets.Total()
	plan.Q1 = targets.Q1
	plan.Q2 = targets.Q2
	plan.Q3 = targets.Q3
	plan.Q4 = targets.Q4
	plan.KpiName = meta.KpiName
	plan.KraID = meta.KraID
	plan.GoalID = meta.GoalID
	copied := *plan
	return &copied, nil
}

func (r *fakePlanRepo) FindForSubmission(_ context.Context, kpiID primitive.ObjectID, year int, subsectorID, userID primitive.ObjectID) (*models.Plan, error) {
	for _, p := range r.plans {
		if p.KpiID == kpiID && p.Year == year && p.SubsectorID == subsectorID &&
			p.UserID == userID && p.Role == models.RoleCEO {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) count() int {
	return len(r.plans)
}

type fakePerformanceRepo struct {
	byID  map[primitive.ObjectID]*models.Performance
	byKey map[models.PerformanceKey]primitive.ObjectID
}

func newFakePerformanceRepo() *fakePerformanceRepo {
	return &fakePerformanceRepo{
		byID:  make(map[primitive.ObjectID]*models.Performance),
		byKey: make(map[models.PerformanceKey]primitive.ObjectID),
	}
}

func (r *fakePerformanceRepo) FindOrCreate(_ context.Context, key models.PerformanceKey, sectorID, planID primitive.ObjectID) (*models.Performance, error) {
	if id, ok := r.byKey[key]; ok {
		perf := r.byID[id]
		if perf.PlanID.IsZero() {
			perf.PlanID = planID
		}
		copied := *perf
		return &copied, nil
	}
	perf := &models.Performance{
		ID:          primitive.NewObjectID(),
		UserID:      key.UserID,
		Role:        key.Role,
		KpiID:       key.KpiID,
		Year:        key.Year,
		SectorID:    sectorID,
		SubsectorID: key.SubsectorID,
		PlanID:      planID,
	}
	r.byID[perf.ID] = perf
	r.byKey[key] = perf.ID
	copied := *perf
	return &copied, nil
}

func (r *fakePerformanceRepo) ApplyQuarterMutation(_ context.Context, id primitive.ObjectID, quarter models.Quarter, m repository.QuarterMutation) (*models.Performance, error) {
	perf, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("performance %s not found", id.Hex())
	}

	var slot *models.QuarterPerformance
	switch quarter {
	case models.Q1:
		slot = &perf.Q1Performance
	case models.Q2:
		slot = &perf.Q2Performance
	case models.Q3:
		slot = &perf.Q3Performance
	case models.Q4:
		slot = &perf.Q4Performance
	default:
		return nil, fmt.Errorf("unknown quarter %q", quarter)
	}

	slot.Value += m.Delta
	switch {
	case m.ClearDescription:
		slot.Description = ""
	case m.AppendDescription != "":
		if slot.Description == "" {
			slot.Description = m.AppendDescription
		} else {
			slot.Description += "\n" + m.AppendDescription
		}
	}
	perf.PerformanceYear = perf.QuarterSum()

	copied := *perf
	return &copied, nil
}

func (r *fakePerformanceRepo) get(key models.PerformanceKey) *models.Performance {
	if id, ok := r.byKey[key]; ok {
		return r.byID[id]
	}
	return nil
}

type fakeFileRepo struct {
	files map[models.FileKey]*models.PerformanceFile
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[models.FileKey]*models.PerformanceFile)}
}

func fileKeyOf(f *models.PerformanceFile) models.FileKey {
	return models.FileKey{
		WorkerID:  f.WorkerID,
		MeasureID: f.MeasureID,
		Year:      f.Year,
		Quarter:   f.Quarter,
	}
}

func (r *fakeFileRepo) Find(_ context.Context, key models.FileKey) (*models.PerformanceFile, error) {
	if f, ok := r.files[key]; ok {
		copied := *f
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeFileRepo) Upsert(_ context.Context, file *models.PerformanceFile) (*models.PerformanceFile, error) {
	key := fileKeyOf(file)
	previous, existed := r.files[key]

	if existed {
		file.ID = previous.ID
		if file.Filename == "" {
			file.Filename = previous.Filename
			file.Filepath = previous.Filepath
			file.Mimetype = previous.Mimetype
			file.Size = previous.Size
		}
	} else {
		file.ID = primitive.NewObjectID()
	}

	stored := *file
	r.files[key] = &stored

	if !existed {
		return nil, nil
	}
	copied := *previous
	return &copied, nil
}

func (r *fakeFileRepo) Delete(_ context.Context, key models.FileKey) (*models.PerformanceFile, error) {
	if f, ok := r.files[key]; ok {
		delete(r.files, key)
		copied := *f
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeFileRepo) List(_ context.Context, filter models.FileFilter) ([]models.PerformanceFile, error) {
	out := []models.PerformanceFile{}
	for _, f := range r.files {
		if f.WorkerID != filter.WorkerID {
			continue
		}
		if filter.Year != 0 && f.Year != filter.Year {
			continue
		}
		if filter.Quarter != "" && f.Quarter != filter.Quarter {
			continue
		}
		if !filter.KpiID.IsZero() && f.KpiID != filter.KpiID {
			continue
		}
		out = append(out, *f)
	}
	return out, nil
}

type fakeStore struct {
	saves   int
	removed []string
}

func (s *fakeStore) Save(header *multipart.FileHeader) (*filestore.FileMeta, error) {
	s.saves++
	return &filestore.FileMeta{
		Filename: header.Filename,
		Path:     fmt.Sprintf("/uploads/stored-%d", s.saves),
		Mimetype: "application/pdf",
		Size:     header.Size,
	}, nil
}

func (s *fakeStore) Remove(relPath string) error {
	s.removed = append(s.removed, relPath)
	return nil
}

type fakeNotifier struct {
	assignments []*models.MeasureAssignment
}

func (n *fakeNotifier) MeasureAssigned(assignment *models.MeasureAssignment, _ *models.User) {
	n.assignments = append(n.assignments, assignment)
}
