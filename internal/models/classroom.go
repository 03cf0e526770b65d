package models

import "time"

// Classroom is a bookable room owned by a department.
type Classroom struct {
	ID           string    `db:"id" json:"id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Name         string    `db:"name" json:"name"`
	Capacity     int       `db:"capacity" json:"capacity"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ClassroomFilter captures filtering options for listing classrooms.
type ClassroomFilter struct {
	DepartmentID string
	MinCapacity  int
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
