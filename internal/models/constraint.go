package models

import "time"

// SubjectType is recorded on constraints for reference only; generation ignores it.
type SubjectType string

const (
	SubjectTypeTheory SubjectType = "theory"
	SubjectTypeLab    SubjectType = "lab"
	SubjectTypeBoth   SubjectType = "both"
)

// Constraint caps the workload of a staff role. A nil DepartmentID makes the
// row global.
type Constraint struct {
	ID           string      `db:"id" json:"id"`
	DepartmentID *string     `db:"department_id" json:"department_id,omitempty"`
	Role         StaffRole   `db:"role" json:"role"`
	SubjectType  SubjectType `db:"subject_type" json:"subject_type"`
	MaxSubjects  int         `db:"max_subjects" json:"max_subjects"`
	MaxHours     int         `db:"max_hours" json:"max_hours"`
	CreatedBy    *string     `db:"created_by" json:"created_by,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// IsGlobal reports whether the constraint applies to every department.
func (c Constraint) IsGlobal() bool {
	return c.DepartmentID == nil || *c.DepartmentID == ""
}

// RoleLimits is the effective workload for a role after resolving constraints.
type RoleLimits struct {
	Role        StaffRole `json:"role"`
	MaxSubjects int       `json:"max_subjects"`
	MaxHours    int       `json:"max_hours"`
	Matched     int       `json:"matched_constraints"`
	Fallback    bool      `json:"fallback"`
}
