package requests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"oncocare/case-portal/case-portal-backend/internal/lifecycle"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, req *ServiceRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*ServiceRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ServiceRequest), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter ListFilter) ([]ServiceRequest, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]ServiceRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) CommitTransition(ctx context.Context, id uuid.UUID, expectedStatus, newStatus string, fields map[string]any) error {
	args := m.Called(ctx, id, expectedStatus, newStatus, fields)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ScheduledOn(ctx context.Context, day time.Time) ([]ServiceRequest, error) {
	args := m.Called(ctx, day)
	return args.Get(0).([]ServiceRequest), args.Error(1)
}

type MockDocumentChecker struct {
	mock.Mock
}

func (m *MockDocumentChecker) Presence(ctx context.Context, requestID uuid.UUID) (map[string]bool, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).(map[string]bool), args.Error(1)
}

type MockChecklist struct {
	mock.Mock
}

func (m *MockChecklist) InitChecklist(ctx context.Context, requestID uuid.UUID, kind lifecycle.Kind) error {
	args := m.Called(ctx, requestID, kind)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyStatusChange(ctx context.Context, n StatusNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, template string, req *ServiceRequest) (string, error) {
	args := m.Called(ctx, template, req)
	return args.String(0), args.Error(1)
}

var serviceTestToday = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

func newTestService(repo *MockRepository, docs *MockDocumentChecker, notifier *MockNotifier, gen *MockGenerator) *Service {
	return newTestServiceWithChecklist(repo, docs, new(MockChecklist), notifier, gen)
}

func newTestServiceWithChecklist(repo *MockRepository, docs *MockDocumentChecker, checklist *MockChecklist, notifier *MockNotifier, gen *MockGenerator) *Service {
	controller := lifecycle.NewController(lifecycle.DefaultTable(),
		lifecycle.WithToday(func() time.Time { return serviceTestToday }))
	return NewService(repo, docs, checklist, controller, notifier, gen, zap.NewNop())
}

func pendingTreatmentRequest() *ServiceRequest {
	return &ServiceRequest{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		Kind:      string(lifecycle.KindTreatmentAssistance),
		Status:    string(lifecycle.StatusPending),
	}
}

func TestAttemptTransitionCommitsFieldsWithStatus(t *testing.T) {
	repo := new(MockRepository)
	docs := new(MockDocumentChecker)
	notifier := new(MockNotifier)
	gen := new(MockGenerator)
	service := newTestService(repo, docs, notifier, gen)

	ctx := context.Background()
	req := pendingTreatmentRequest()
	treatmentDate := serviceTestToday.AddDate(0, 0, 7)

	repo.On("GetByID", ctx, req.ID).Return(req, nil)
	docs.On("Presence", ctx, req.ID).Return(map[string]bool{}, nil)
	repo.On("CommitTransition", ctx, req.ID, "Pending", "Approved", mock.MatchedBy(func(fields map[string]any) bool {
		d, ok := fields["treatment_date"].(time.Time)
		return ok && d.Day() == 9
	})).Return(nil)

	outcome, err := service.AttemptTransition(ctx, req.ID, "Approved", TransitionInput{
		Dates: map[string]time.Time{"treatment_date": treatmentDate},
	})

	require.NoError(t, err)
	assert.Equal(t, "Approved", outcome.NewStatus)
	assert.Empty(t, outcome.Warnings)
	repo.AssertExpectations(t)
	notifier.AssertNotCalled(t, "NotifyStatusChange", mock.Anything, mock.Anything)
}

func TestAttemptTransitionPreconditionFailureSkipsCommit(t *testing.T) {
	repo := new(MockRepository)
	docs := new(MockDocumentChecker)
	service := newTestService(repo, docs, new(MockNotifier), new(MockGenerator))

	ctx := context.Background()
	req := pendingTreatmentRequest()

	repo.On("GetByID", ctx, req.ID).Return(req, nil)
	docs.On("Presence", ctx, req.ID).Return(map[string]bool{}, nil)

	_, err := service.AttemptTransition(ctx, req.ID, "Return", TransitionInput{Remark: "  "})

	var pcErr *lifecycle.PreconditionError
	require.ErrorAs(t, err, &pcErr)
	repo.AssertNotCalled(t, "CommitTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptTransitionNotifiesAfterCommit(t *testing.T) {
	repo := new(MockRepository)
	docs := new(MockDocumentChecker)
	notifier := new(MockNotifier)
	service := newTestService(repo, docs, notifier, new(MockGenerator))

	ctx := context.Background()
	req := pendingTreatmentRequest()

	repo.On("GetByID", ctx, req.ID).Return(req, nil)
	docs.On("Presence", ctx, req.ID).Return(map[string]bool{}, nil)
	repo.On("CommitTransition", ctx, req.ID, "Pending", "Return", mock.Anything).Return(nil)
	notifier.On("NotifyStatusChange", ctx, mock.MatchedBy(func(n StatusNotification) bool {
		return n.NewStatus == "Return" && n.Remark == "needs more lab work"
	})).Return(nil)

	outcome, err := service.AttemptTransition(ctx, req.ID, "Return", TransitionInput{Remark: "needs more lab work"})

	require.NoError(t, err)
	assert.Equal(t, "Return", outcome.NewStatus)
	notifier.AssertExpectations(t)
}

func TestAttemptTransitionNotifyFailureDoesNotRollBack(t *testing.T) {
	repo := new(MockRepository)
	docs := new(MockDocumentChecker)
	notifier := new(MockNotifier)
	service := newTestService(repo, docs, notifier, new(MockGenerator))

	ctx := context.Background()
	req := pendingTreatmentRequest()

	repo.On("GetByID", ctx, req.ID).Return(req, nil)
	docs.On("Presence", ctx, req.ID).Return(map[string]bool{}, nil)
	repo.On("CommitTransition", ctx, req.ID, "Pending", "Rejected", mock.Anything).Return(nil)
	notifier.On("NotifyStatusChange", ctx, mock.Anything).Return(errors.New("smtp unreachable"))

	outcome, err := service.AttemptTransition(ctx, req.ID, "Rejected", TransitionInput{Remark: "incomplete papers"})

	// The commit stands; the failed notification surfaces as a warning.
	require.NoError(t, err)
	assert.Equal(t, "Rejected", outcome.NewStatus)
	require.Len(t, outcome.Warnings, 1)
	assert.Contains(t, outcome.Warnings[0], "notify failed")
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestAttemptTransitionConflictSurfacesAsIs(t *testing.T) {
	repo := new(MockRepository)
	docs := new(MockDocumentChecker)
	notifier := new(MockNotifier)
	service := newTestService(repo, docs, notifier, new(MockGenerator))

	ctx := context.Background()
	req := pendingTreatmentRequest()

	repo.On("GetByID", ctx, req.ID).Return(req, nil)
	docs.On("Presence", ctx, req.ID).Return(map[string]bool{}, nil)
	repo.On("CommitTransition", ctx, req.ID, "Pending", "Return", mock.Anything).Return(ErrConflict)

	_, err := service.AttemptTransition(ctx, req.ID, "Return", TransitionInput{Remark: "resubmit labs"})

	require.ErrorIs(t, err, ErrConflict)
	notifier.AssertNotCalled(t, "NotifyStatusChange", mock.Anything, mock.Anything)
}

func TestAttemptTransitionPreEnrollmentRejectionDeletes(t *testing.T) {
	repo := new(MockRepository)
	docs := new(MockDocumentChecker)
	service := newTestService(repo, docs, new(MockNotifier), new(MockGenerator))

	ctx := context.Background()
	req := &ServiceRequest{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		Kind:      string(lifecycle.KindPreEnrollment),
		Status:    string(lifecycle.StatusPending),
	}

	repo.On("GetByID", ctx, req.ID).Return(req, nil)
	docs.On("Presence", ctx, req.ID).Return(map[string]bool{}, nil)
	repo.On("Delete", ctx, req.ID).Return(nil)

	outcome, err := service.AttemptTransition(ctx, req.ID, "Rejected", TransitionInput{})

	require.NoError(t, err)
	assert.True(t, outcome.Deleted)
	repo.AssertNotCalled(t, "CommitTransition", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAttemptTransitionGeneratesDocumentThenNotifies(t *testing.T) {
	repo := new(MockRepository)
	docs := new(MockDocumentChecker)
	notifier := new(MockNotifier)
	gen := new(MockGenerator)
	service := newTestService(repo, docs, notifier, gen)

	ctx := context.Background()
	req := pendingTreatmentRequest()
	req.Status = string(lifecycle.StatusApproved)

	var order []string
	repo.On("GetByID", ctx, req.ID).Return(req, nil)
	docs.On("Presence", ctx, req.ID).Return(map[string]bool{}, nil)
	repo.On("CommitTransition", ctx, req.ID, "Approved", "LOA Released", mock.Anything).Return(nil)
	gen.On("Generate", ctx, "letter_of_authorization", req).Run(func(mock.Arguments) {
		order = append(order, "generate")
	}).Return("requests/loa.pdf", nil)
	notifier.On("NotifyStatusChange", ctx, mock.Anything).Run(func(mock.Arguments) {
		order = append(order, "notify")
	}).Return(nil)

	_, err := service.AttemptTransition(ctx, req.ID, "LOA Released", TransitionInput{FileKey: "uploads/loa-signed.pdf"})

	require.NoError(t, err)
	assert.Equal(t, []string{"generate", "notify"}, order)
}

func TestCreateRequestRejectsUnknownKind(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(MockDocumentChecker), new(MockNotifier), new(MockGenerator))

	err := service.CreateRequest(context.Background(), &ServiceRequest{Kind: "walk_in"})

	require.Error(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateRequestDefaultsToPending(t *testing.T) {
	repo := new(MockRepository)
	checklist := new(MockChecklist)
	service := newTestServiceWithChecklist(repo, new(MockDocumentChecker), checklist, new(MockNotifier), new(MockGenerator))

	ctx := context.Background()
	repo.On("Create", ctx, mock.AnythingOfType("*requests.ServiceRequest")).Return(nil)
	checklist.On("InitChecklist", ctx, mock.Anything, lifecycle.KindMassScreening).Return(nil)

	req := &ServiceRequest{Kind: string(lifecycle.KindMassScreening), PatientID: uuid.New()}
	require.NoError(t, service.CreateRequest(ctx, req))
	assert.Equal(t, "Pending", req.Status)
}

func TestCreateRequestSeedsDocumentChecklist(t *testing.T) {
	repo := new(MockRepository)
	checklist := new(MockChecklist)
	service := newTestServiceWithChecklist(repo, new(MockDocumentChecker), checklist, new(MockNotifier), new(MockGenerator))

	ctx := context.Background()
	req := &ServiceRequest{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		Kind:      string(lifecycle.KindTreatmentAssistance),
	}

	repo.On("Create", ctx, req).Return(nil)
	checklist.On("InitChecklist", ctx, req.ID, lifecycle.KindTreatmentAssistance).Return(nil)

	require.NoError(t, service.CreateRequest(ctx, req))
	// Without the seeded slots no upload could ever land and the
	// documents_complete check could never pass.
	checklist.AssertExpectations(t)
}

func TestCreateRequestFailsWhenChecklistSeedFails(t *testing.T) {
	repo := new(MockRepository)
	checklist := new(MockChecklist)
	service := newTestServiceWithChecklist(repo, new(MockDocumentChecker), checklist, new(MockNotifier), new(MockGenerator))

	ctx := context.Background()
	repo.On("Create", ctx, mock.Anything).Return(nil)
	checklist.On("InitChecklist", ctx, mock.Anything, mock.Anything).Return(errors.New("db down"))

	err := service.CreateRequest(ctx, &ServiceRequest{
		ID: uuid.New(), PatientID: uuid.New(), Kind: string(lifecycle.KindTreatmentAssistance),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "document checklist")
}
