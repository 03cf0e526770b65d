package models

import (
	"time"

	"github.com/lib/pq"
)

// StaffRole is the academic rank used to match workload constraints.
type StaffRole string

const (
	StaffRoleAssistantProfessor StaffRole = "assistant_professor"
	StaffRoleProfessor          StaffRole = "professor"
	StaffRoleHOD                StaffRole = "hod"
)

// StaffRoles lists every supported role in display order.
var StaffRoles = []StaffRole{StaffRoleAssistantProfessor, StaffRoleProfessor, StaffRoleHOD}

// Valid reports whether r is a known role.
func (r StaffRole) Valid() bool {
	for _, role := range StaffRoles {
		if r == role {
			return true
		}
	}
	return false
}

// StaffMember is a lecturer belonging to a department.
// An empty SubjectsSelected means the member may teach any subject.
type StaffMember struct {
	ID               string         `db:"id" json:"id"`
	DepartmentID     string         `db:"department_id" json:"department_id"`
	Name             string         `db:"name" json:"name"`
	Email            *string        `db:"email" json:"email,omitempty"`
	StaffRole        StaffRole      `db:"staff_role" json:"staff_role"`
	SubjectsSelected pq.StringArray `db:"subjects_selected" json:"subjects_selected"`
	SubjectsLocked   bool           `db:"subjects_locked" json:"subjects_locked"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// CanTeach reports whether the member is eligible for subjectID.
func (s StaffMember) CanTeach(subjectID string) bool {
	if len(s.SubjectsSelected) == 0 {
		return true
	}
	for _, id := range s.SubjectsSelected {
		if id == subjectID {
			return true
		}
	}
	return false
}

// StaffFilter captures filtering options for listing staff.
type StaffFilter struct {
	DepartmentID string
	Role         *StaffRole
	Locked       *bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
