package models

import "time"

// TimetableEntry is one placed (subject, staff, classroom, day, slot) tuple.
type TimetableEntry struct {
	ID           string    `db:"id" json:"id"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Day          string    `db:"day" json:"day"`
	TimeSlot     string    `db:"time_slot" json:"time_slot"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	StaffID      string    `db:"staff_id" json:"staff_id"`
	ClassroomID  string    `db:"classroom_id" json:"classroom_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TimetableEntryDetail is an entry joined with display names.
type TimetableEntryDetail struct {
	TimetableEntry
	SubjectName   string `db:"subject_name" json:"subject_name"`
	SubjectCode   string `db:"subject_code" json:"subject_code"`
	StaffName     string `db:"staff_name" json:"staff_name"`
	ClassroomName string `db:"classroom_name" json:"classroom_name"`
}

// TimetableView selects which slice of a department timetable to read.
type TimetableView string

const (
	TimetableViewDepartment TimetableView = "department"
	TimetableViewStaff      TimetableView = "staff"
	TimetableViewClassroom  TimetableView = "classroom"
)

// TimetableFilter narrows a timetable read.
type TimetableFilter struct {
	DepartmentID string
	StaffID      string
	ClassroomID  string
}
