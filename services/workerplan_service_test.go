package services

import (
	"context"
	"testing"

	"pmes/apperrors"
	"pmes/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type planViewFixture struct {
	svc         WorkerPlanService
	users       *fakeUserRepo
	measures    *fakeMeasureRepo
	assignments *fakeAssignmentRepo

	ceo      *models.User
	worker   *models.User
	outsider *models.User
	kpi      models.KPI
	measure  models.Measure
}

func newPlanViewFixture(t *testing.T) *planViewFixture {
	t.Helper()

	subsectorID := primitive.NewObjectID()
	ceo := &models.User{ID: primitive.NewObjectID(), Role: models.RoleCEO, Subsector: subsectorID}
	worker := &models.User{ID: primitive.NewObjectID(), Role: models.RoleWorker, Subsector: subsectorID}
	outsider := &models.User{ID: primitive.NewObjectID(), Role: models.RoleWorker, Subsector: primitive.NewObjectID()}

	measures := newFakeMeasureRepo()
	kpi := models.KPI{ID: primitive.NewObjectID(), Name: "Export Volume"}
	measure := models.Measure{ID: primitive.NewObjectID(), Name: "Tonnes shipped", KpiID: kpi.ID}
	measures.kpis[kpi.ID] = kpi
	measures.measures[measure.ID] = measure

	users := newFakeUserRepo(ceo, worker, outsider)
	assignments := newFakeAssignmentRepo()

	return &planViewFixture{
		svc:         NewWorkerPlanService(users, measures, assignments),
		users:       users,
		measures:    measures,
		assignments: assignments,
		ceo:         ceo,
		worker:      worker,
		outsider:    outsider,
		kpi:         kpi,
		measure:     measure,
	}
}

func (f *planViewFixture) seedAssignment(t *testing.T, workerID primitive.ObjectID, measureID primitive.ObjectID, target float64, year int, quarter models.Quarter) {
	t.Helper()
	_, err := f.assignments.Upsert(context.Background(), measureID, workerID, year, quarter, target)
	require.NoError(t, err)
}

func TestGetWorkerPlansOwnScope(t *testing.T) {
	f := newPlanViewFixture(t)
	f.seedAssignment(t, f.worker.ID, f.measure.ID, 100, 2024, models.Q1)
	f.seedAssignment(t, f.outsider.ID, f.measure.ID, 70, 2024, models.Q1)

	rows, err := f.svc.GetWorkerPlans(context.Background(), f.worker.ID, PlanQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, f.worker.ID.Hex(), row.WorkerID)
	assert.Equal(t, "Export Volume", row.KpiName)
	assert.Equal(t, "Tonnes shipped", row.MeasureName)
	assert.Equal(t, 100.0, row.Target)
	assert.Equal(t, 2024, row.Year)
	assert.Equal(t, models.Q1, row.Quarter)
}

func TestGetWorkerPlansExplicitWorker(t *testing.T) {
	f := newPlanViewFixture(t)
	f.seedAssignment(t, f.outsider.ID, f.measure.ID, 70, 2024, models.Q2)

	rows, err := f.svc.GetWorkerPlans(context.Background(), f.worker.ID, PlanQuery{WorkerID: f.outsider.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.outsider.ID.Hex(), rows[0].WorkerID)
}

func TestGetWorkerPlansDropsUnresolvableRows(t *testing.T) {
	f := newPlanViewFixture(t)
	f.seedAssignment(t, f.worker.ID, f.measure.ID, 100, 2024, models.Q1)
	// Assignment pointing at a measure that no longer exists.
	f.seedAssignment(t, f.worker.ID, primitive.NewObjectID(), 50, 2024, models.Q1)

	rows, err := f.svc.GetWorkerPlans(context.Background(), f.worker.ID, PlanQuery{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestGetWorkerPlansKpiFilter(t *testing.T) {
	f := newPlanViewFixture(t)
	otherKpi := models.KPI{ID: primitive.NewObjectID(), Name: "Other"}
	otherMeasure := models.Measure{ID: primitive.NewObjectID(), Name: "Other measure", KpiID: otherKpi.ID}
	f.measures.kpis[otherKpi.ID] = otherKpi
	f.measures.measures[otherMeasure.ID] = otherMeasure

	f.seedAssignment(t, f.worker.ID, f.measure.ID, 100, 2024, models.Q1)
	f.seedAssignment(t, f.worker.ID, otherMeasure.ID, 30, 2024, models.Q1)

	rows, err := f.svc.GetWorkerPlans(context.Background(), f.worker.ID, PlanQuery{KpiID: f.kpi.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.kpi.ID.Hex(), rows[0].KpiID)
}

func TestGetWorkerPlansYearQuarterFilters(t *testing.T) {
	f := newPlanViewFixture(t)
	f.seedAssignment(t, f.worker.ID, f.measure.ID, 100, 2024, models.Q1)

	rows, err := f.svc.GetWorkerPlans(context.Background(), f.worker.ID, PlanQuery{Year: 2023})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = f.svc.GetWorkerPlans(context.Background(), f.worker.ID, PlanQuery{Year: 2024, Quarter: models.Q1})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestGetCeoWorkerPlansScopesToSubsector(t *testing.T) {
	f := newPlanViewFixture(t)
	f.seedAssignment(t, f.worker.ID, f.measure.ID, 100, 2024, models.Q1)
	f.seedAssignment(t, f.outsider.ID, f.measure.ID, 70, 2024, models.Q1)

	rows, err := f.svc.GetCeoWorkerPlans(context.Background(), f.ceo.ID, PlanQuery{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.worker.ID.Hex(), rows[0].WorkerID)
}

func TestGetCeoWorkerPlansNonCEOForbidden(t *testing.T) {
	f := newPlanViewFixture(t)

	_, err := f.svc.GetCeoWorkerPlans(context.Background(), f.worker.ID, PlanQuery{})
	require.Error(t, err)
	assert.Equal(t, apperrors.Forbidden, apperrors.KindOf(err))
}

func TestGetCeoWorkerPlansUnknownCallerForbidden(t *testing.T) {
	f := newPlanViewFixture(t)

	_, err := f.svc.GetCeoWorkerPlans(context.Background(), primitive.NewObjectID(), PlanQuery{})
	require.Error(t, err)
	assert.Equal(t, apperrors.Forbidden, apperrors.KindOf(err))
}

func TestGetCeoWorkerPlansMissingSubsector(t *testing.T) {
	f := newPlanViewFixture(t)
	bare := &models.User{ID: primitive.NewObjectID(), Role: models.RoleCEO}
	f.users.users[bare.ID] = bare

	_, err := f.svc.GetCeoWorkerPlans(context.Background(), bare.ID, PlanQuery{})
	require.Error(t, err)
	assert.Equal(t, apperrors.BadRequest, apperrors.KindOf(err))
}

func TestGetCeoWorkerPlansForeignWorkerForbidden(t *testing.T) {
	f := newPlanViewFixture(t)
	f.seedAssignment(t, f.outsider.ID, f.measure.ID, 70, 2024, models.Q1)

	_, err := f.svc.GetCeoWorkerPlans(context.Background(), f.ceo.ID, PlanQuery{WorkerID: f.outsider.ID})
	require.Error(t, err)
	assert.Equal(t, apperrors.Forbidden, apperrors.KindOf(err))
}

func TestGetCeoWorkerPlansExplicitMember(t *testing.T) {
	f := newPlanViewFixture(t)
	second := &models.User{ID: primitive.NewObjectID(), Role: models.RoleWorker, Subsector: f.ceo.Subsector}
	f.users.users[second.ID] = second

	f.seedAssignment(t, f.worker.ID, f.measure.ID, 100, 2024, models.Q1)
	f.seedAssignment(t, second.ID, f.measure.ID, 60, 2024, models.Q1)

	rows, err := f.svc.GetCeoWorkerPlans(context.Background(), f.ceo.ID, PlanQuery{WorkerID: second.ID})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, second.ID.Hex(), rows[0].WorkerID)
}
