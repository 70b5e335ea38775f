package lifecycle

import (
	"fmt"
	"time"
)

// SideEffect is one instruction of an accepted bundle, executed by the
// caller's collaborators after the status commit.
type SideEffect struct {
	Kind    SideEffectKind `json:"kind"`
	Payload map[string]any `json:"payload"`
}

// EffectBundle is the instruction set returned by a successful evaluation.
// The caller applies FieldsToPersist atomically with the status write, then
// runs SideEffects in order. The bundle owns nothing; it is discarded after
// use.
type EffectBundle struct {
	NewStatus       Status         `json:"new_status"`
	FieldsToPersist map[string]any `json:"fields_to_persist"`
	SideEffects     []SideEffect   `json:"side_effects"`
}

// IllegalTransitionError: the status jump itself is not permitted. Retrying
// with the same input cannot help.
type IllegalTransitionError struct {
	Kind Kind
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: %s cannot move from %q to %q", e.Kind, e.From, e.To)
}

// PreconditionError aggregates every failed check of one attempt so the UI
// can prompt for all missing inputs in a single round trip.
type PreconditionError struct {
	Failures []PreconditionResult
}

func (e *PreconditionError) Error() string {
	if len(e.Failures) == 1 {
		return "precondition failed: " + e.Failures[0].Reason
	}
	return fmt.Sprintf("%d preconditions failed", len(e.Failures))
}

// UnknownKindError and UnknownStatusError indicate configuration or data
// integrity problems, not user mistakes. They are surfaced, never swallowed.
type UnknownKindError struct {
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown request kind %q", e.Kind)
}

type UnknownStatusError struct {
	Kind   Kind
	Status Status
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("status %q is not defined for kind %s", e.Status, e.Kind)
}

// Controller is the single entry point for attempting a status change. It is
// stateless between calls and performs no I/O; the reference day used by date
// checks is injected so evaluation stays deterministic.
type Controller struct {
	table *Table
	today func() time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithToday overrides the reference-day source. Tests pass a fixed day.
func WithToday(today func() time.Time) Option {
	return func(c *Controller) { c.today = today }
}

// NewController builds a controller over the given transition table.
func NewController(table *Table, opts ...Option) *Controller {
	c := &Controller{table: table, today: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Evaluate decides whether req may move to target given the supplied payload.
// It returns an effect bundle on acceptance, or one of IllegalTransitionError,
// PreconditionError, UnknownKindError, UnknownStatusError. It is a pure
// function of (request snapshot, target, payload, injected day): no
// persistence happens here, and identical inputs yield identical results.
func (c *Controller) Evaluate(req Request, target Status, p Payload) (*EffectBundle, error) {
	if !KnownKind(req.Kind) {
		return nil, &UnknownKindError{Kind: req.Kind}
	}
	if !ValidStatus(req.Kind, req.Status) {
		return nil, &UnknownStatusError{Kind: req.Kind, Status: req.Status}
	}
	// A target outside the kind's vocabulary can never be in the table;
	// it falls through to the same fail-closed rejection as any other
	// undefined jump.
	def, ok := c.table.Lookup(req.Kind, req.Status, target)
	if !ok {
		return nil, &IllegalTransitionError{Kind: req.Kind, From: req.Status, To: target}
	}

	today := c.today()
	fields := map[string]any{}
	var failures []PreconditionResult
	for _, pc := range def.Preconditions {
		res := resolve(pc, req, p, today)
		if !res.Passed {
			failures = append(failures, res)
			continue
		}
		// Record exactly the payload fields this check consumed so the
		// caller persists them together with the status.
		switch pc.Kind {
		case PreconditionScheduledDate:
			fields[pc.Field] = truncateToDay(p.Dates[pc.Field])
		case PreconditionRemark:
			fields[pc.Field] = p.Remark
		case PreconditionFileSelected:
			fields[pc.Field] = p.FileKey
		}
	}
	if len(failures) > 0 {
		return nil, &PreconditionError{Failures: failures}
	}

	return &EffectBundle{
		NewStatus:       target,
		FieldsToPersist: fields,
		SideEffects:     c.buildSideEffects(def, req, p),
	}, nil
}

// NextStatuses exposes the legal targets for a request so callers can filter
// the choices they offer; the engine's rejection is the backstop, not the UX.
func (c *Controller) NextStatuses(kind Kind, from Status) []Status {
	return c.table.NextStatuses(kind, from)
}

func (c *Controller) buildSideEffects(def Transition, req Request, p Payload) []SideEffect {
	effects := make([]SideEffect, 0, len(def.SideEffects))
	for _, kind := range def.SideEffects {
		payload := map[string]any{
			"request_id": req.ID.String(),
			"patient_id": req.PatientID.String(),
			"new_status": string(def.To),
		}
		switch kind {
		case SideEffectNotify:
			if p.Remark != "" {
				payload["remark"] = p.Remark
			}
		case SideEffectGenerateDocument:
			payload["template"] = def.Template
			if p.FileKey != "" {
				payload["file_key"] = p.FileKey
			}
		}
		effects = append(effects, SideEffect{Kind: kind, Payload: payload})
	}
	return effects
}
