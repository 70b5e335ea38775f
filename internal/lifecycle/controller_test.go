package lifecycle

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedToday() time.Time { return testToday }

func newTestController() *Controller {
	return NewController(DefaultTable(), WithToday(fixedToday))
}

func treatmentRequest(status Status) Request {
	return Request{
		ID:        uuid.New(),
		Kind:      KindTreatmentAssistance,
		Status:    status,
		PatientID: uuid.New(),
	}
}

func TestEvaluateIllegalTransition(t *testing.T) {
	c := newTestController()

	// Approved is not even a pre-enrollment status; the jump fails closed
	// the same way any undefined transition does.
	req := Request{ID: uuid.New(), Kind: KindPreEnrollment, Status: StatusPending}
	_, err := c.Evaluate(req, StatusApproved, Payload{})

	var illegalErr *IllegalTransitionError
	require.ErrorAs(t, err, &illegalErr)
	assert.Equal(t, StatusApproved, illegalErr.To)
}

func TestEvaluateUndefinedJumpFailsClosedRegardlessOfPayload(t *testing.T) {
	c := newTestController()

	req := Request{ID: uuid.New(), Kind: KindPreCancerousMedication, Status: StatusVerified}
	_, err := c.Evaluate(req, StatusRejected, Payload{
		Remark:  "any remark",
		FileKey: "any/file.pdf",
		Dates:   map[string]time.Time{"release_date": testToday},
	})

	var illegalErr *IllegalTransitionError
	require.ErrorAs(t, err, &illegalErr)
	assert.Equal(t, StatusVerified, illegalErr.From)
	assert.Equal(t, StatusRejected, illegalErr.To)
}

func TestEvaluateUnknownKind(t *testing.T) {
	c := newTestController()

	req := Request{ID: uuid.New(), Kind: Kind("walk_in"), Status: StatusPending}
	_, err := c.Evaluate(req, StatusApproved, Payload{})

	var kindErr *UnknownKindError
	require.ErrorAs(t, err, &kindErr)
}

func TestEvaluateUnknownCurrentStatus(t *testing.T) {
	c := newTestController()

	req := Request{ID: uuid.New(), Kind: KindPreEnrollment, Status: Status("Archived")}
	_, err := c.Evaluate(req, StatusValidated, Payload{})

	var statusErr *UnknownStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, Status("Archived"), statusErr.Status)
}

func TestEvaluateReturnRequiresRemark(t *testing.T) {
	c := newTestController()
	req := treatmentRequest(StatusPending)

	_, err := c.Evaluate(req, StatusReturn, Payload{Remark: ""})

	var pcErr *PreconditionError
	require.ErrorAs(t, err, &pcErr)
	require.Len(t, pcErr.Failures, 1)
	assert.Equal(t, "remark required", pcErr.Failures[0].Reason)
	assert.Equal(t, "return_remarks", pcErr.Failures[0].MissingField)
}

func TestEvaluateReturnWithRemarkAccepted(t *testing.T) {
	c := newTestController()
	req := treatmentRequest(StatusPending)

	bundle, err := c.Evaluate(req, StatusReturn, Payload{Remark: "needs more lab work"})
	require.NoError(t, err)

	assert.Equal(t, StatusReturn, bundle.NewStatus)
	assert.Equal(t, "needs more lab work", bundle.FieldsToPersist["return_remarks"])
	require.Len(t, bundle.SideEffects, 1)
	assert.Equal(t, SideEffectNotify, bundle.SideEffects[0].Kind)
	assert.Equal(t, "needs more lab work", bundle.SideEffects[0].Payload["remark"])
}

func TestEvaluateVerifiedRequiresReleaseDateNotInPast(t *testing.T) {
	c := newTestController()
	req := Request{ID: uuid.New(), Kind: KindPreCancerousMedication, Status: StatusPending}

	_, err := c.Evaluate(req, StatusVerified, Payload{Dates: map[string]time.Time{
		"release_date": time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
	}})
	var pcErr *PreconditionError
	require.ErrorAs(t, err, &pcErr)
	assert.Equal(t, "release_date", pcErr.Failures[0].MissingField)

	tomorrow := testToday.AddDate(0, 0, 1)
	bundle, err := c.Evaluate(req, StatusVerified, Payload{Dates: map[string]time.Time{
		"release_date": tomorrow,
	}})
	require.NoError(t, err)
	assert.Equal(t, truncateToDay(tomorrow), bundle.FieldsToPersist["release_date"])
}

func TestEvaluateAggregatesAllPreconditionFailures(t *testing.T) {
	c := newTestController()
	req := treatmentRequest(StatusInterviewProcess)
	req.Documents = map[string]bool{"medical_abstract": true}

	// Interview Process -> Approved wants both a treatment date and the
	// full document checklist; neither is satisfied here.
	_, err := c.Evaluate(req, StatusApproved, Payload{})

	var pcErr *PreconditionError
	require.ErrorAs(t, err, &pcErr)
	require.Len(t, pcErr.Failures, 2)
	assert.Equal(t, "treatment_date", pcErr.Failures[0].MissingField)
	assert.Equal(t, []string{"barangay_indigency", "lab_request", "valid_id"}, pcErr.Failures[1].MissingSlots)
}

func TestEvaluateLOATransitionRequiresFile(t *testing.T) {
	c := newTestController()
	req := treatmentRequest(StatusApproved)

	_, err := c.Evaluate(req, StatusLOAReleased, Payload{})
	var pcErr *PreconditionError
	require.ErrorAs(t, err, &pcErr)

	bundle, err := c.Evaluate(req, StatusLOAReleased, Payload{FileKey: "requests/1/loa.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "requests/1/loa.pdf", bundle.FieldsToPersist["loa_file_key"])
	require.Len(t, bundle.SideEffects, 2)
	assert.Equal(t, SideEffectGenerateDocument, bundle.SideEffects[0].Kind)
	assert.Equal(t, "letter_of_authorization", bundle.SideEffects[0].Payload["template"])
	assert.Equal(t, SideEffectNotify, bundle.SideEffects[1].Kind)
}

func TestEvaluatePreEnrollmentRejectionCarriesDelete(t *testing.T) {
	c := newTestController()
	req := Request{ID: uuid.New(), Kind: KindPreEnrollment, Status: StatusPending}

	bundle, err := c.Evaluate(req, StatusRejected, Payload{})
	require.NoError(t, err)
	require.Len(t, bundle.SideEffects, 1)
	assert.Equal(t, SideEffectDeleteRecord, bundle.SideEffects[0].Kind)
	assert.Equal(t, req.ID.String(), bundle.SideEffects[0].Payload["request_id"])
}

func TestEvaluateIsDeterministic(t *testing.T) {
	c := newTestController()
	req := treatmentRequest(StatusPending)
	payload := Payload{Dates: map[string]time.Time{
		"treatment_date": testToday.AddDate(0, 0, 3),
	}}

	first, err := c.Evaluate(req, StatusApproved, payload)
	require.NoError(t, err)
	second, err := c.Evaluate(req, StatusApproved, payload)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluateApprovedToCompletedNeedsNothing(t *testing.T) {
	c := newTestController()
	req := treatmentRequest(StatusApproved)

	bundle, err := c.Evaluate(req, StatusCompleted, Payload{})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, bundle.NewStatus)
	assert.Empty(t, bundle.FieldsToPersist)
	assert.Empty(t, bundle.SideEffects)
}

func TestEvaluateCompletionFilesCaseSummary(t *testing.T) {
	c := newTestController()
	req := treatmentRequest(StatusLOAReleased)

	bundle, err := c.Evaluate(req, StatusCompleted, Payload{})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, bundle.NewStatus)
	require.Len(t, bundle.SideEffects, 2)
	assert.Equal(t, SideEffectGenerateDocument, bundle.SideEffects[0].Kind)
	assert.Equal(t, "case_summary", bundle.SideEffects[0].Payload["template"])
	assert.Equal(t, SideEffectNotify, bundle.SideEffects[1].Kind)
}
