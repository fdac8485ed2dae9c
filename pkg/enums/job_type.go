package enums

import "fmt"

// JobType is the engagement type of a job listing.
type JobType string

const (
	JobTypeFullTime  JobType = "full_time"
	JobTypePartTime  JobType = "part_time"
	JobTypeContract  JobType = "contract"
	JobTypeFreelance JobType = "freelance"
)

var validJobTypes = []JobType{
	JobTypeFullTime,
	JobTypePartTime,
	JobTypeContract,
	JobTypeFreelance,
}

// String implements fmt.Stringer.
func (j JobType) String() string {
	return string(j)
}

// IsValid reports whether the value matches a known JobType.
func (j JobType) IsValid() bool {
	for _, candidate := range validJobTypes {
		if candidate == j {
			return true
		}
	}
	return false
}

// ParseJobType converts raw input into a JobType.
func ParseJobType(value string) (JobType, error) {
	for _, candidate := range validJobTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid job type %q", value)
}
