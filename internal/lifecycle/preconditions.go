package lifecycle

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// PreconditionResult is the outcome of one resolver run. Created fresh per
// evaluation, never persisted.
type PreconditionResult struct {
	Kind         PreconditionKind `json:"kind"`
	Passed       bool             `json:"passed"`
	Reason       string           `json:"reason,omitempty"`
	MissingField string           `json:"missing_field,omitempty"`
	// MissingSlots lists every absent document slot, so the caller can
	// render a full checklist instead of one error at a time.
	MissingSlots []string `json:"missing_slots,omitempty"`
}

func pass(kind PreconditionKind) PreconditionResult {
	return PreconditionResult{Kind: kind, Passed: true}
}

// resolve dispatches one precondition against the request snapshot and the
// supplied payload. Resolvers are pure: no I/O, no mutation, the reference
// day is an explicit argument.
func resolve(pc Precondition, req Request, p Payload, today time.Time) PreconditionResult {
	switch pc.Kind {
	case PreconditionScheduledDate:
		return resolveScheduledDate(pc, p, today)
	case PreconditionRemark:
		return resolveRemark(pc, p)
	case PreconditionDocumentsComplete:
		return resolveDocumentsComplete(req)
	case PreconditionFileSelected:
		return resolveFileSelected(pc, p)
	default:
		return PreconditionResult{
			Kind:   pc.Kind,
			Reason: fmt.Sprintf("unknown precondition kind %q", pc.Kind),
		}
	}
}

func resolveScheduledDate(pc Precondition, p Payload, today time.Time) PreconditionResult {
	supplied, ok := p.Dates[pc.Field]
	if !ok || supplied.IsZero() {
		return PreconditionResult{
			Kind:         pc.Kind,
			Reason:       fmt.Sprintf("%s is required", pc.Field),
			MissingField: pc.Field,
		}
	}
	day := truncateToDay(supplied)
	ref := truncateToDay(today)
	switch pc.Constraint {
	case DateNotInPast:
		if day.Before(ref) {
			return PreconditionResult{
				Kind:         pc.Kind,
				Reason:       fmt.Sprintf("%s must not be in the past", pc.Field),
				MissingField: pc.Field,
			}
		}
	case DateNotInFuture:
		if day.After(ref) {
			return PreconditionResult{
				Kind:         pc.Kind,
				Reason:       fmt.Sprintf("%s must not be in the future", pc.Field),
				MissingField: pc.Field,
			}
		}
	}
	return pass(pc.Kind)
}

func resolveRemark(pc Precondition, p Payload) PreconditionResult {
	if strings.TrimSpace(p.Remark) == "" {
		return PreconditionResult{
			Kind:         pc.Kind,
			Reason:       "remark required",
			MissingField: pc.Field,
		}
	}
	return pass(pc.Kind)
}

func resolveDocumentsComplete(req Request) PreconditionResult {
	var missing []string
	for _, slot := range DocumentSlotsByKind[req.Kind] {
		if !req.Documents[slot] {
			missing = append(missing, slot)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return PreconditionResult{
			Kind:         PreconditionDocumentsComplete,
			Reason:       fmt.Sprintf("%d required document(s) missing", len(missing)),
			MissingSlots: missing,
		}
	}
	return pass(PreconditionDocumentsComplete)
}

func resolveFileSelected(pc Precondition, p Payload) PreconditionResult {
	if strings.TrimSpace(p.FileKey) == "" {
		return PreconditionResult{
			Kind:         pc.Kind,
			Reason:       "no file selected",
			MissingField: pc.Field,
		}
	}
	return pass(pc.Kind)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
