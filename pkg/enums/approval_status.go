package enums

import "fmt"

// ApprovalStatus is the review lifecycle stage of a profile.
type ApprovalStatus string

const (
	ApprovalStatusDraft         ApprovalStatus = "draft"
	ApprovalStatusPendingReview ApprovalStatus = "pending_review"
	ApprovalStatusApproved      ApprovalStatus = "approved"
	ApprovalStatusRejected      ApprovalStatus = "rejected"
)

var validApprovalStatuses = []ApprovalStatus{
	ApprovalStatusDraft,
	ApprovalStatusPendingReview,
	ApprovalStatusApproved,
	ApprovalStatusRejected,
}

// String implements fmt.Stringer.
func (a ApprovalStatus) String() string {
	return string(a)
}

// IsValid reports whether the value matches a known ApprovalStatus.
func (a ApprovalStatus) IsValid() bool {
	for _, candidate := range validApprovalStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseApprovalStatus converts raw input into an ApprovalStatus.
func ParseApprovalStatus(value string) (ApprovalStatus, error) {
	for _, candidate := range validApprovalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval status %q", value)
}
