package models

import "time"

// DefaultSubjectCredits applies when a subject is created without credits.
const DefaultSubjectCredits = 3

// Subject represents a course offered by a department.
type Subject struct {
	ID           string    `db:"id" json:"id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Name         string    `db:"name" json:"name"`
	Code         string    `db:"code" json:"code"`
	Credits      int       `db:"credits" json:"credits"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SlotsNeeded is the number of weekly slots the subject requires.
func (s Subject) SlotsNeeded() int {
	if s.Credits < 1 {
		return 1
	}
	return s.Credits
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	DepartmentID string
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
