package visibility

import (
	"fmt"

	"github.com/angelmondragon/directory-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/directory-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Viewer is the authenticated member asking to read a directory entry.
type Viewer struct {
	UserID  uuid.UUID
	IsAdmin bool
	Status  enums.UserStatus
}

// Target describes the entry being read. For a Project, ApprovalStatus is the
// approval state of the creator's Profile.
type Target struct {
	OwnerUserID    uuid.UUID
	ApprovalStatus enums.ApprovalStatus
}

// Decision is the outcome of evaluating a Viewer against a Target.
type Decision int

const (
	// Hidden means the target must be reported as nonexistent.
	Hidden Decision = iota
	// Denied means the viewer may not browse the directory at all.
	Denied
	// Full grants the complete representation (owner or admin).
	Full
	// Redacted grants the public representation with sensitive fields stripped.
	Redacted
)

func (d Decision) String() string {
	switch d {
	case Hidden:
		return "hidden"
	case Denied:
		return "denied"
	case Full:
		return "full"
	case Redacted:
		return "redacted"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Visible reports whether the target may be returned to the viewer.
func (d Decision) Visible() bool {
	return d == Full || d == Redacted
}

// Decide evaluates the directory read rules in order: owner, admin, viewer
// account approval, then target approval.
func Decide(viewer Viewer, target Target) Decision {
	if viewer.UserID != uuid.Nil && viewer.UserID == target.OwnerUserID {
		return Full
	}
	if viewer.IsAdmin {
		return Full
	}
	if viewer.Status != enums.UserStatusApproved {
		return Denied
	}
	if target.ApprovalStatus != enums.ApprovalStatusApproved {
		return Hidden
	}
	return Redacted
}

// Ensure runs Decide and converts non-visible outcomes into typed errors.
// Hidden targets produce the same NotFound error a missing row would.
func Ensure(viewer Viewer, target Target, resource string) (Decision, error) {
	decision := Decide(viewer, target)
	switch decision {
	case Denied:
		return decision, ErrAccountNotApproved()
	case Hidden:
		return decision, NotFound(resource)
	}
	return decision, nil
}

// EnsureCanBrowse applies the viewer-side rules used by list endpoints.
func EnsureCanBrowse(viewer Viewer) error {
	if viewer.IsAdmin || viewer.Status == enums.UserStatusApproved {
		return nil
	}
	return ErrAccountNotApproved()
}

// NotFound is the canonical error for absent or masked entries.
func NotFound(resource string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func ErrAccountNotApproved() error {
	return pkgerrors.New(pkgerrors.CodeForbidden, "account pending approval")
}

// ApprovedOnly is a gorm scope restricting a list query to rows whose
// approval column (for example "profiles.approval_status") is approved.
func ApprovedOnly(column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", enums.ApprovalStatusApproved)
	}
}
