package requests

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"oncocare/case-portal/case-portal-backend/internal/lifecycle"
)

// DocumentChecker supplies the absent/present state of a request's
// required-document slots. The engine only ever sees presence, never bytes.
type DocumentChecker interface {
	Presence(ctx context.Context, requestID uuid.UUID) (map[string]bool, error)
}

// ChecklistInitializer creates the kind's fixed required-document slots for a
// newly created request, so uploads have a slot to fill and the
// documents_complete check has rows to read.
type ChecklistInitializer interface {
	InitChecklist(ctx context.Context, requestID uuid.UUID, kind lifecycle.Kind) error
}

// StatusNotification is the payload handed to the notification transport
// when a transition declares a notify side effect.
type StatusNotification struct {
	RequestID uuid.UUID
	PatientID uuid.UUID
	Kind      string
	NewStatus string
	Remark    string
}

// Notifier delivers status-change notifications. Delivery, retries, and
// failure reporting are its concern, not this service's.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, n StatusNotification) error
}

// DocumentGenerator renders and stores a print document for a transition's
// generate_document side effect, returning the stored object key.
type DocumentGenerator interface {
	Generate(ctx context.Context, template string, req *ServiceRequest) (string, error)
}

// FailurePolicy states, per side-effect kind, how a failure after the status
// commit is handled. Rollback is deliberately not offered for notify: a lost
// email must not un-approve a request.
type FailurePolicy struct {
	// QueueRetry marks the failure for the scheduler's retry sweep.
	QueueRetry bool
}

// DefaultFailurePolicies is the explicit per-kind recovery configuration.
var DefaultFailurePolicies = map[lifecycle.SideEffectKind]FailurePolicy{
	lifecycle.SideEffectNotify:           {QueueRetry: true},
	lifecycle.SideEffectGenerateDocument: {QueueRetry: false},
}

// TransitionInput is the precondition data collected from the operator.
type TransitionInput struct {
	Dates   map[string]time.Time
	Remark  string
	FileKey string
}

// TransitionOutcome reports a committed transition. Warnings carry
// side-effect failures that did not block the commit.
type TransitionOutcome struct {
	RequestID uuid.UUID `json:"request_id"`
	NewStatus string    `json:"new_status"`
	Deleted   bool      `json:"deleted,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
}

// Service owns the write path around the lifecycle controller: it loads the
// snapshot, asks the controller, applies the effect bundle, and runs side
// effects in declared order.
type Service struct {
	repo       Repository
	docs       DocumentChecker
	checklist  ChecklistInitializer
	controller *lifecycle.Controller
	notifier   Notifier
	generator  DocumentGenerator
	policies   map[lifecycle.SideEffectKind]FailurePolicy
	logger     *zap.Logger
}

func NewService(repo Repository, docs DocumentChecker, checklist ChecklistInitializer, controller *lifecycle.Controller, notifier Notifier, generator DocumentGenerator, logger *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		docs:       docs,
		checklist:  checklist,
		controller: controller,
		notifier:   notifier,
		generator:  generator,
		policies:   DefaultFailurePolicies,
		logger:     logger,
	}
}

// CreateRequest persists the intake record and seeds its required-document
// checklist. A request without its slot rows could never satisfy the
// documents_complete check, so a failed seed fails the whole creation.
func (s *Service) CreateRequest(ctx context.Context, req *ServiceRequest) error {
	if !lifecycle.KnownKind(lifecycle.Kind(req.Kind)) {
		return fmt.Errorf("unknown request kind %q", req.Kind)
	}
	if req.Status == "" {
		req.Status = string(lifecycle.StatusPending)
	}
	if err := s.repo.Create(ctx, req); err != nil {
		return err
	}
	if err := s.checklist.InitChecklist(ctx, req.ID, lifecycle.Kind(req.Kind)); err != nil {
		return fmt.Errorf("failed to initialize document checklist: %w", err)
	}
	return nil
}

func (s *Service) GetRequest(ctx context.Context, id uuid.UUID) (*ServiceRequest, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListRequests(ctx context.Context, filter ListFilter) ([]ServiceRequest, int64, error) {
	return s.repo.List(ctx, filter)
}

// LegalTransitions lists the statuses the request may move to next, so the
// UI only offers legal targets.
func (s *Service) LegalTransitions(ctx context.Context, id uuid.UUID) ([]string, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := s.controller.NextStatuses(lifecycle.Kind(req.Kind), lifecycle.Status(req.Status))
	out := make([]string, len(next))
	for i, st := range next {
		out[i] = string(st)
	}
	return out, nil
}

// AttemptTransition is the single write entry point for status changes.
// Engine rejections (illegal transition, precondition failures) come back as
// the controller's typed errors; ErrConflict means the snapshot went stale
// between evaluation and commit and the caller must re-fetch and re-evaluate.
func (s *Service) AttemptTransition(ctx context.Context, id uuid.UUID, target string, input TransitionInput) (*TransitionOutcome, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	presence, err := s.docs.Presence(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load document presence: %w", err)
	}

	bundle, err := s.controller.Evaluate(req.Snapshot(presence), lifecycle.Status(target), lifecycle.Payload{
		Dates:   input.Dates,
		Remark:  input.Remark,
		FileKey: input.FileKey,
	})
	if err != nil {
		return nil, err
	}

	outcome := &TransitionOutcome{RequestID: id, NewStatus: string(bundle.NewStatus)}

	// delete_record replaces the status commit entirely: the rejected
	// pre-enrollment row is removed, not soft-marked.
	if hasEffect(bundle, lifecycle.SideEffectDeleteRecord) {
		if err := s.repo.Delete(ctx, id); err != nil {
			return nil, err
		}
		outcome.Deleted = true
		return outcome, nil
	}

	if err := s.repo.CommitTransition(ctx, id, req.Status, string(bundle.NewStatus), bundle.FieldsToPersist); err != nil {
		return nil, err
	}

	for _, effect := range bundle.SideEffects {
		if err := s.runSideEffect(ctx, effect, req, input); err != nil {
			policy := s.policies[effect.Kind]
			s.logger.Warn("side effect failed after commit",
				zap.String("request_id", id.String()),
				zap.String("effect", string(effect.Kind)),
				zap.Bool("queued_for_retry", policy.QueueRetry),
				zap.Error(err))
			outcome.Warnings = append(outcome.Warnings,
				fmt.Sprintf("%s failed: %v", effect.Kind, err))
		}
	}
	return outcome, nil
}

func (s *Service) runSideEffect(ctx context.Context, effect lifecycle.SideEffect, req *ServiceRequest, input TransitionInput) error {
	switch effect.Kind {
	case lifecycle.SideEffectNotify:
		remark, _ := effect.Payload["remark"].(string)
		newStatus, _ := effect.Payload["new_status"].(string)
		return s.notifier.NotifyStatusChange(ctx, StatusNotification{
			RequestID: req.ID,
			PatientID: req.PatientID,
			Kind:      req.Kind,
			NewStatus: newStatus,
			Remark:    remark,
		})
	case lifecycle.SideEffectGenerateDocument:
		template, _ := effect.Payload["template"].(string)
		_, err := s.generator.Generate(ctx, template, req)
		return err
	default:
		return fmt.Errorf("unsupported side effect %q", effect.Kind)
	}
}

func hasEffect(bundle *lifecycle.EffectBundle, kind lifecycle.SideEffectKind) bool {
	for _, e := range bundle.SideEffects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}
