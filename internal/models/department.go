package models

import "time"

// Department is the tenant boundary: it owns subjects, staff, classrooms,
// constraints and the current timetable.
type Department struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Code           string    `db:"code" json:"code"`
	AutoRegenerate bool      `db:"auto_regenerate" json:"auto_regenerate"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// DepartmentFilter captures filtering options for listing departments.
type DepartmentFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
