package approval

import (
	"fmt"

	"github.com/angelmondragon/directory-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
)

// Action is a request to move a profile through its approval lifecycle.
type Action string

const (
	ActionSubmit    Action = "submit"
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionEditMinor Action = "edit_minor"
	ActionEditMajor Action = "edit_major"
)

// RejectionReason is the machine-readable cause of a refused transition.
type RejectionReason string

const (
	ReasonStateConflict RejectionReason = "state_conflict"
	ReasonEditLocked    RejectionReason = "edit_locked"
	ReasonUnknownState  RejectionReason = "unknown_state"
)

// Effects lists the column side effects a successful transition requires.
type Effects struct {
	ClearRejectionNote bool
	SetRejectionNote   bool
	StampApprovedAt    bool
	ClearApprovedAt    bool
	// ApproveOwner promotes the owning user from pending to approved.
	ApproveOwner bool
}

type Result struct {
	From               enums.ApprovalStatus
	To                 enums.ApprovalStatus
	Effects            Effects
	RequiresReapproval bool
}

// Changed reports whether the approval status itself moves.
func (r Result) Changed() bool {
	return r.From != r.To
}

// Rejection is returned when an action is not allowed from the current state.
type Rejection struct {
	From   enums.ApprovalStatus
	Action Action
	Reason RejectionReason
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case ReasonEditLocked:
		return "cannot edit profile while pending review"
	case ReasonUnknownState:
		return fmt.Sprintf("unknown approval status %q", r.From)
	}
	return fmt.Sprintf("cannot %s profile with status %s", r.Action, r.From)
}

// Err converts the rejection into the service error taxonomy: edits while
// pending are Forbidden, every other refusal is a StateConflict.
func (r *Rejection) Err() *pkgerrors.Error {
	code := pkgerrors.CodeStateConflict
	if r.Reason == ReasonEditLocked {
		code = pkgerrors.CodeForbidden
	}
	return pkgerrors.New(code, r.Error()).WithReason(string(r.Reason))
}

type edge struct {
	to                 enums.ApprovalStatus
	effects            Effects
	requiresReapproval bool
}

// transitions is the complete lifecycle. A missing entry means the action is
// refused from that state.
var transitions = map[enums.ApprovalStatus]map[Action]edge{
	enums.ApprovalStatusDraft: {
		ActionSubmit:    {to: enums.ApprovalStatusPendingReview, effects: Effects{ClearRejectionNote: true}},
		ActionEditMinor: {to: enums.ApprovalStatusDraft},
		ActionEditMajor: {to: enums.ApprovalStatusDraft},
	},
	enums.ApprovalStatusRejected: {
		ActionSubmit:    {to: enums.ApprovalStatusPendingReview, effects: Effects{ClearRejectionNote: true}},
		ActionEditMinor: {to: enums.ApprovalStatusRejected, effects: Effects{ClearRejectionNote: true}},
		ActionEditMajor: {to: enums.ApprovalStatusRejected, effects: Effects{ClearRejectionNote: true}},
	},
	enums.ApprovalStatusPendingReview: {
		ActionApprove: {
			to:      enums.ApprovalStatusApproved,
			effects: Effects{StampApprovedAt: true, ClearRejectionNote: true, ApproveOwner: true},
		},
		ActionReject: {to: enums.ApprovalStatusRejected, effects: Effects{SetRejectionNote: true}},
	},
	enums.ApprovalStatusApproved: {
		ActionEditMinor: {to: enums.ApprovalStatusApproved},
		ActionEditMajor: {
			to:                 enums.ApprovalStatusPendingReview,
			effects:            Effects{ClearApprovedAt: true},
			requiresReapproval: true,
		},
	},
}

// Transition decides the next state for action taken from the given state.
func Transition(from enums.ApprovalStatus, action Action) (Result, error) {
	edges, ok := transitions[from]
	if !ok {
		return Result{}, &Rejection{From: from, Action: action, Reason: ReasonUnknownState}
	}
	e, ok := edges[action]
	if !ok {
		reason := ReasonStateConflict
		if from == enums.ApprovalStatusPendingReview && isEdit(action) {
			reason = ReasonEditLocked
		}
		return Result{}, &Rejection{From: from, Action: action, Reason: reason}
	}
	return Result{
		From:               from,
		To:                 e.to,
		Effects:            e.effects,
		RequiresReapproval: e.requiresReapproval,
	}, nil
}

// EditAction maps an edit classification onto the matching action.
func EditAction(class EditClass) Action {
	if class == EditMajor {
		return ActionEditMajor
	}
	return ActionEditMinor
}

func isEdit(action Action) bool {
	return action == ActionEditMinor || action == ActionEditMajor
}
