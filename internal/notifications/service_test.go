package notifications

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"oncocare/case-portal/case-portal-backend/internal/requests"
)

func TestComposeStatusEmailIncludesRemark(t *testing.T) {
	subject, body := composeStatusEmail(requests.StatusNotification{
		RequestID: uuid.New(),
		PatientID: uuid.New(),
		Kind:      "treatment_assistance",
		NewStatus: "Return",
		Remark:    "needs more lab work",
	})

	assert.Equal(t, "Update on your treatment assistance request", subject)
	assert.Contains(t, body, `marked "Return"`)
	assert.Contains(t, body, "needs more lab work")
}

func TestComposeStatusEmailWithoutRemark(t *testing.T) {
	_, body := composeStatusEmail(requests.StatusNotification{
		Kind:      "pre_cancerous_medication",
		NewStatus: "Rejected",
	})

	assert.Contains(t, body, "medication request")
	assert.NotContains(t, body, "Remarks")
}

func TestKindLabelFallsBackToRawKind(t *testing.T) {
	assert.Equal(t, "mass screening", kindLabel("mass_screening_application"))
	assert.Equal(t, "unknown_kind", kindLabel("unknown_kind"))
}
