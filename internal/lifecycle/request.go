package lifecycle

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies a service-request category. Each kind carries its own
// status vocabulary and required-document checklist.
type Kind string

const (
	KindTreatmentAssistance    Kind = "treatment_assistance"
	KindPreCancerousMedication Kind = "pre_cancerous_medication"
	KindMassScreening          Kind = "mass_screening_application"
	KindPreEnrollment          Kind = "pre_enrollment"
)

// Status is a lifecycle state of a request. Valid values are kind-specific.
type Status string

const (
	StatusPending          Status = "Pending"
	StatusInterviewProcess Status = "Interview Process"
	StatusApproved         Status = "Approved"
	StatusLOAReleased      Status = "LOA Released"
	StatusReturn           Status = "Return"
	StatusRejected         Status = "Rejected"
	StatusCompleted        Status = "Completed"
	StatusVerified         Status = "Verified"
	StatusDone             Status = "Done"
	StatusValidated        Status = "Validated"
	StatusConducted        Status = "Conducted"
)

// StatusesByKind is the authoritative status vocabulary per request kind.
var StatusesByKind = map[Kind][]Status{
	KindTreatmentAssistance: {
		StatusPending, StatusInterviewProcess, StatusApproved,
		StatusLOAReleased, StatusReturn, StatusRejected, StatusCompleted,
	},
	KindPreCancerousMedication: {
		StatusPending, StatusVerified, StatusRejected, StatusDone,
	},
	KindMassScreening: {
		StatusPending, StatusApproved, StatusRejected, StatusConducted,
	},
	KindPreEnrollment: {
		StatusPending, StatusValidated, StatusRejected,
	},
}

// DocumentSlotsByKind fixes the required-document checklist for each kind.
// Slots are defined here once and never change at runtime.
var DocumentSlotsByKind = map[Kind][]string{
	KindTreatmentAssistance: {
		"medical_abstract", "lab_request", "barangay_indigency", "valid_id",
	},
	KindPreCancerousMedication: {
		"prescription", "medical_abstract",
	},
	KindMassScreening: {
		"endorsement_letter", "participant_list",
	},
	KindPreEnrollment: nil,
}

// Request is the engine's read-only snapshot of a service request. It is
// assembled by the caller from its record and document stores; the engine
// never loads or mutates anything itself.
type Request struct {
	ID             uuid.UUID
	Kind           Kind
	Status         Status
	PatientID      uuid.UUID
	ScheduledDates map[string]time.Time
	Remarks        map[string]string
	// Documents maps slot key to presence. Slots absent from the map are
	// treated as not yet uploaded.
	Documents map[string]bool
}

// Payload carries the precondition data the caller collected for one
// transition attempt (a picked date, a typed remark, an uploaded file key).
type Payload struct {
	Dates   map[string]time.Time
	Remark  string
	FileKey string
}

// KnownKind reports whether k is a defined request kind.
func KnownKind(k Kind) bool {
	_, ok := StatusesByKind[k]
	return ok
}

// ValidStatus reports whether s is in the status vocabulary of kind k.
func ValidStatus(k Kind, s Status) bool {
	for _, v := range StatusesByKind[k] {
		if v == s {
			return true
		}
	}
	return false
}
