package lifecycle

import "fmt"

// PreconditionKind names one of the data checks a transition may demand.
type PreconditionKind string

const (
	PreconditionScheduledDate     PreconditionKind = "scheduled_date"
	PreconditionRemark            PreconditionKind = "remark"
	PreconditionDocumentsComplete PreconditionKind = "documents_complete"
	PreconditionFileSelected      PreconditionKind = "file_selected"
)

// DateConstraint restricts where a scheduled date may fall relative to today.
type DateConstraint string

const (
	DateNotInPast   DateConstraint = "not_in_past"
	DateNotInFuture DateConstraint = "not_in_future"
)

// Precondition is one declared data requirement on a transition. Field names
// the payload/persistence field the check consumes: the date column for
// scheduled_date, the remark column for remark, the file-key column for
// file_selected. It is unused for documents_complete.
type Precondition struct {
	Kind       PreconditionKind
	Field      string
	Constraint DateConstraint
}

// SideEffectKind names an instruction the caller executes after committing.
type SideEffectKind string

const (
	SideEffectNotify           SideEffectKind = "notify"
	SideEffectGenerateDocument SideEffectKind = "generate_document"
	SideEffectDeleteRecord     SideEffectKind = "delete_record"
)

// WildcardStatus in a transition's From position matches any valid current
// status of the kind except the target itself.
const WildcardStatus Status = "*"

// Transition is one immutable row of the transition table.
type Transition struct {
	Kind          Kind
	From          Status
	To            Status
	Preconditions []Precondition
	SideEffects   []SideEffectKind
	// Template selects the print template for generate_document effects.
	Template string
}

type tableKey struct {
	kind Kind
	from Status
	to   Status
}

// Table answers legality lookups. Built once at startup; any (kind, from, to)
// absent from it is an illegal transition.
type Table struct {
	entries map[tableKey]Transition
}

// NewTable builds a Table from transition definitions, failing fast on
// duplicate keys, unknown kinds, or statuses outside the kind's vocabulary.
func NewTable(defs []Transition) (*Table, error) {
	entries := make(map[tableKey]Transition, len(defs))
	for _, d := range defs {
		if !KnownKind(d.Kind) {
			return nil, fmt.Errorf("transition table: unknown kind %q", d.Kind)
		}
		if d.From != WildcardStatus && !ValidStatus(d.Kind, d.From) {
			return nil, fmt.Errorf("transition table: %s: invalid from status %q", d.Kind, d.From)
		}
		if !ValidStatus(d.Kind, d.To) {
			return nil, fmt.Errorf("transition table: %s: invalid to status %q", d.Kind, d.To)
		}
		key := tableKey{d.Kind, d.From, d.To}
		if _, dup := entries[key]; dup {
			return nil, fmt.Errorf("transition table: duplicate entry (%s, %s, %s)", d.Kind, d.From, d.To)
		}
		entries[key] = d
	}
	return &Table{entries: entries}, nil
}

// MustNewTable is NewTable for static configuration known at compile time.
func MustNewTable(defs []Transition) *Table {
	t, err := NewTable(defs)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup resolves (kind, from, to) to its transition definition. An exact
// match wins over a wildcard row; a miss on both means the jump is illegal.
func (t *Table) Lookup(kind Kind, from, to Status) (Transition, bool) {
	if def, ok := t.entries[tableKey{kind, from, to}]; ok {
		return def, true
	}
	if from == to {
		return Transition{}, false
	}
	def, ok := t.entries[tableKey{kind, WildcardStatus, to}]
	return def, ok
}

// NextStatuses lists every status legally reachable from (kind, from),
// so a UI can offer only legal targets.
func (t *Table) NextStatuses(kind Kind, from Status) []Status {
	var next []Status
	for _, to := range StatusesByKind[kind] {
		if to == from {
			continue
		}
		if _, ok := t.Lookup(kind, from, to); ok {
			next = append(next, to)
		}
	}
	return next
}

// DefaultTable returns the production transition set.
func DefaultTable() *Table {
	return MustNewTable(DefaultTransitions())
}

// DefaultTransitions is the static transition configuration for all four
// request kinds.
func DefaultTransitions() []Transition {
	return []Transition{
		// Treatment assistance
		{
			Kind: KindTreatmentAssistance, From: StatusPending, To: StatusApproved,
			Preconditions: []Precondition{
				{Kind: PreconditionScheduledDate, Field: "treatment_date", Constraint: DateNotInPast},
			},
		},
		{
			Kind: KindTreatmentAssistance, From: StatusPending, To: StatusInterviewProcess,
			Preconditions: []Precondition{
				{Kind: PreconditionScheduledDate, Field: "interview_date", Constraint: DateNotInPast},
			},
		},
		{
			Kind: KindTreatmentAssistance, From: StatusInterviewProcess, To: StatusApproved,
			Preconditions: []Precondition{
				{Kind: PreconditionScheduledDate, Field: "treatment_date", Constraint: DateNotInPast},
				{Kind: PreconditionDocumentsComplete},
			},
		},
		{
			Kind: KindTreatmentAssistance, From: WildcardStatus, To: StatusReturn,
			Preconditions: []Precondition{
				{Kind: PreconditionRemark, Field: "return_remarks"},
			},
			SideEffects: []SideEffectKind{SideEffectNotify},
		},
		{
			Kind: KindTreatmentAssistance, From: WildcardStatus, To: StatusRejected,
			Preconditions: []Precondition{
				{Kind: PreconditionRemark, Field: "reject_remarks"},
			},
			SideEffects: []SideEffectKind{SideEffectNotify},
		},
		{
			Kind: KindTreatmentAssistance, From: StatusApproved, To: StatusLOAReleased,
			Preconditions: []Precondition{
				{Kind: PreconditionFileSelected, Field: "loa_file_key"},
			},
			SideEffects: []SideEffectKind{SideEffectGenerateDocument, SideEffectNotify},
			Template:    "letter_of_authorization",
		},
		{Kind: KindTreatmentAssistance, From: StatusApproved, To: StatusCompleted},
		// Completion of an assisted case files its summary with the record
		// and tells the patient the case is closed.
		{
			Kind: KindTreatmentAssistance, From: StatusLOAReleased, To: StatusCompleted,
			SideEffects: []SideEffectKind{SideEffectGenerateDocument, SideEffectNotify},
			Template:    "case_summary",
		},

		// Pre-cancerous medication
		{
			Kind: KindPreCancerousMedication, From: StatusPending, To: StatusVerified,
			Preconditions: []Precondition{
				{Kind: PreconditionScheduledDate, Field: "release_date", Constraint: DateNotInPast},
			},
		},
		{
			Kind: KindPreCancerousMedication, From: StatusPending, To: StatusRejected,
			SideEffects: []SideEffectKind{SideEffectNotify},
		},
		{Kind: KindPreCancerousMedication, From: StatusVerified, To: StatusDone},

		// Mass screening application
		{
			Kind: KindMassScreening, From: StatusPending, To: StatusApproved,
			Preconditions: []Precondition{
				{Kind: PreconditionDocumentsComplete},
			},
			SideEffects: []SideEffectKind{SideEffectNotify},
		},
		{
			Kind: KindMassScreening, From: StatusPending, To: StatusRejected,
			Preconditions: []Precondition{
				{Kind: PreconditionRemark, Field: "reject_remarks"},
			},
			SideEffects: []SideEffectKind{SideEffectNotify},
		},
		{
			Kind: KindMassScreening, From: StatusApproved, To: StatusConducted,
			Preconditions: []Precondition{
				{Kind: PreconditionScheduledDate, Field: "screening_date", Constraint: DateNotInPast},
			},
		},

		// Pre-enrollment. Rejection removes the record outright instead of
		// soft-marking it; the delete is carried as a side-effect instruction
		// executed by the caller in place of a status commit.
		{Kind: KindPreEnrollment, From: StatusPending, To: StatusValidated},
		{
			Kind: KindPreEnrollment, From: StatusPending, To: StatusRejected,
			SideEffects: []SideEffectKind{SideEffectDeleteRecord},
		},
	}
}
