package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/roster"
	"github.com/noah-isme/timetable-api/internal/scheduler"
)

const offlineDepartment = "offline"

// rosterFile is the JSON roster layout. Entities use the API field names.
type rosterFile struct {
	DepartmentID string               `json:"department_id"`
	Subjects     []models.Subject     `json:"subjects"`
	Staff        []models.StaffMember `json:"staff"`
	Classrooms   []models.Classroom   `json:"classrooms"`
	Constraints  []models.Constraint  `json:"constraints"`
}

func loadInput(path string, logger *zap.Logger) (scheduler.Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return scheduler.Input{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var file rosterFile
		if err := json.NewDecoder(f).Decode(&file); err != nil {
			return scheduler.Input{}, fmt.Errorf("decode %s: %w", path, err)
		}
		return file.input(logger), nil
	case ".xlsx":
		wb, err := roster.Parse(f)
		if err != nil {
			return scheduler.Input{}, fmt.Errorf("read %s: %w", path, err)
		}
		for _, rowErr := range wb.Errors {
			logger.Sugar().Warnw("row skipped", "sheet", rowErr.Sheet, "row", rowErr.Row, "reason", rowErr.Message)
		}
		return workbookInput(wb), nil
	default:
		return scheduler.Input{}, fmt.Errorf("unsupported roster format %q", filepath.Ext(path))
	}
}

// input mirrors what the service feeds the engine: only staff with a locked
// selection take part. Selections may name a subject by id or by code.
func (f rosterFile) input(logger *zap.Logger) scheduler.Input {
	dept := f.DepartmentID
	if dept == "" {
		dept = offlineDepartment
	}
	in := scheduler.Input{
		DepartmentID: dept,
		Subjects:     f.Subjects,
		Classrooms:   f.Classrooms,
		Constraints:  f.Constraints,
	}
	byRef := make(map[string]string, 2*len(in.Subjects))
	for i := range in.Subjects {
		if in.Subjects[i].ID == "" {
			in.Subjects[i].ID = strings.ToUpper(in.Subjects[i].Code)
		}
		in.Subjects[i].DepartmentID = dept
		byRef[strings.ToUpper(in.Subjects[i].Code)] = in.Subjects[i].ID
		byRef[in.Subjects[i].ID] = in.Subjects[i].ID
	}
	for i, member := range f.Staff {
		if member.ID == "" {
			member.ID = fmt.Sprintf("staff-%d", i+1)
		}
		if !member.SubjectsLocked {
			logger.Sugar().Warnw("staff skipped, subjects not locked", "staff_id", member.ID)
			continue
		}
		member.DepartmentID = dept
		for j, ref := range member.SubjectsSelected {
			if id, ok := byRef[ref]; ok {
				member.SubjectsSelected[j] = id
			} else if id, ok := byRef[strings.ToUpper(strings.TrimSpace(ref))]; ok {
				member.SubjectsSelected[j] = id
			} else {
				logger.Sugar().Warnw("unknown subject in selection", "staff_id", member.ID, "subject", ref)
			}
		}
		in.Staff = append(in.Staff, member)
	}
	for i := range in.Classrooms {
		if in.Classrooms[i].ID == "" {
			in.Classrooms[i].ID = in.Classrooms[i].Name
		}
		in.Classrooms[i].DepartmentID = dept
	}
	return in
}

// workbookInput keys subjects by code and classrooms by name, so staff
// subject lists can reference codes directly.
func workbookInput(wb *roster.Workbook) scheduler.Input {
	in := scheduler.Input{DepartmentID: offlineDepartment}
	for _, row := range wb.Subjects {
		code := strings.ToUpper(row.Code)
		subject := models.Subject{ID: code, DepartmentID: offlineDepartment, Name: row.Name, Code: code, Credits: models.DefaultSubjectCredits}
		if row.Credits != nil {
			subject.Credits = *row.Credits
		}
		in.Subjects = append(in.Subjects, subject)
	}
	for _, row := range wb.Classrooms {
		in.Classrooms = append(in.Classrooms, models.Classroom{ID: row.Name, DepartmentID: offlineDepartment, Name: row.Name, Capacity: row.Capacity})
	}
	for i, row := range wb.Staff {
		member := models.StaffMember{
			ID:               fmt.Sprintf("staff-%d", i+1),
			DepartmentID:     offlineDepartment,
			Name:             row.Name,
			StaffRole:        models.StaffRole(row.Role),
			SubjectsSelected: row.Subjects,
			SubjectsLocked:   true,
		}
		if row.Email != "" {
			email := row.Email
			member.Email = &email
		}
		in.Staff = append(in.Staff, member)
	}
	return in
}
