package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLetterOfAuthorizationProducesPDF(t *testing.T) {
	g := NewGenerator("Cancer Care Foundation", "Case Management Office")

	treatment := time.Date(2025, time.July, 4, 0, 0, 0, 0, time.UTC)
	out, err := g.LetterOfAuthorization(LetterData{
		PatientName:   "Ana Reyes",
		RequestRef:    "TA-2025-0042",
		TreatmentDate: &treatment,
		Facility:      "Provincial Medical Center",
		IssuedBy:      "Case Officer",
		IssuedAt:      time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Greater(t, len(out), 500)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestCaseSummaryProducesPDF(t *testing.T) {
	g := NewGenerator("Cancer Care Foundation", "")

	out, err := g.CaseSummary(CaseSummaryData{
		PatientName: "Ana Reyes",
		RequestRef:  "TA-2025-0042",
		RequestKind: "treatment assistance",
		Status:      "Approved",
		Remarks:     []string{"labs complete", "endorsed by RHU"},
		PreparedBy:  "Case Officer",
		PreparedAt:  time.Now(),
	})

	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}
