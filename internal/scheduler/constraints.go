package scheduler

import "github.com/noah-isme/timetable-api/internal/models"

// Fallback limits applied to a role no constraint matches.
const (
	DefaultMaxSubjects = 5
	DefaultMaxHours    = 20
)

// ResolveLimits computes the effective workload for role. Every constraint for
// the role that is global or belongs to departmentID matches, and the largest
// max_subjects and max_hours across matches win. An empty departmentID treats
// all rows as already scoped by the caller.
func ResolveLimits(constraints []models.Constraint, departmentID string, role models.StaffRole) models.RoleLimits {
	limits := models.RoleLimits{Role: role}
	for _, c := range constraints {
		if c.Role != role {
			continue
		}
		if departmentID != "" && !c.IsGlobal() && *c.DepartmentID != departmentID {
			continue
		}
		if limits.Matched == 0 || c.MaxSubjects > limits.MaxSubjects {
			limits.MaxSubjects = c.MaxSubjects
		}
		if limits.Matched == 0 || c.MaxHours > limits.MaxHours {
			limits.MaxHours = c.MaxHours
		}
		limits.Matched++
	}
	if limits.Matched == 0 {
		limits.MaxSubjects = DefaultMaxSubjects
		limits.MaxHours = DefaultMaxHours
		limits.Fallback = true
	}
	return limits
}
