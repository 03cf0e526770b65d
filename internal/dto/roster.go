package dto

import "github.com/noah-isme/timetable-api/internal/models"

// SubjectRequest creates or updates a subject. Credits defaults to 3.
type SubjectRequest struct {
	Name    string `json:"name" validate:"required,max=150"`
	Code    string `json:"code" validate:"required,max=30"`
	Credits *int   `json:"credits" validate:"omitempty,min=1,max=10"`
}

// ClassroomRequest creates or updates a classroom.
type ClassroomRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
}

// StaffRequest creates or updates a staff member's profile.
type StaffRequest struct {
	Name      string           `json:"name" validate:"required,max=150"`
	Email     *string          `json:"email" validate:"omitempty,email"`
	StaffRole models.StaffRole `json:"staff_role" validate:"required,oneof=assistant_professor professor hod"`
}

// SelectSubjectsRequest carries a staff member's subject choice.
type SelectSubjectsRequest struct {
	SubjectIDs []string `json:"subject_ids" validate:"required,min=1,dive,required,uuid"`
}

// CreateConstraintRequest creates a workload constraint. An empty
// department_id makes it global, which only main admins may do.
type CreateConstraintRequest struct {
	DepartmentID *string            `json:"department_id"`
	Role         models.StaffRole   `json:"role" validate:"required,oneof=assistant_professor professor hod"`
	SubjectType  models.SubjectType `json:"subject_type" validate:"omitempty,oneof=theory lab both"`
	MaxSubjects  int                `json:"max_subjects" validate:"required,min=1"`
	MaxHours     int                `json:"max_hours" validate:"required,min=1"`
}

// UpdateConstraintRequest replaces the limits of a constraint.
type UpdateConstraintRequest struct {
	Role        models.StaffRole   `json:"role" validate:"required,oneof=assistant_professor professor hod"`
	SubjectType models.SubjectType `json:"subject_type" validate:"omitempty,oneof=theory lab both"`
	MaxSubjects int                `json:"max_subjects" validate:"required,min=1"`
	MaxHours    int                `json:"max_hours" validate:"required,min=1"`
}

// RosterImportRowError points at a spreadsheet row that was rejected.
type RosterImportRowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// RosterImportSheetReport counts the outcome for one sheet.
type RosterImportSheetReport struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// RosterImportReport summarises a roster upload.
type RosterImportReport struct {
	Subjects   RosterImportSheetReport `json:"subjects"`
	Classrooms RosterImportSheetReport `json:"classrooms"`
	Staff      RosterImportSheetReport `json:"staff"`
	Errors     []RosterImportRowError  `json:"errors"`
}
