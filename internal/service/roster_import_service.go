package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/roster"
	"github.com/noah-isme/timetable-api/pkg/database"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type subjectImporter interface {
	ExistsByCode(ctx context.Context, departmentID, code, excludeID string) (bool, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, subject *models.Subject) error
}

type classroomImporter interface {
	ExistsByName(ctx context.Context, departmentID, name, excludeID string) (bool, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, classroom *models.Classroom) error
}

type staffImporter interface {
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, member *models.StaffMember) error
}

// RosterImportService loads subjects, classrooms and staff from a spreadsheet.
// An upload is applied in one transaction.
type RosterImportService struct {
	tx          database.TxBeginner
	departments departmentFinder
	subjects    subjectImporter
	classrooms  classroomImporter
	staff       staffImporter
	validator   *validator.Validate
	logger      *zap.Logger
	maxBytes    int64
}

// NewRosterImportService constructs a RosterImportService.
func NewRosterImportService(tx database.TxBeginner, departments departmentFinder, subjects subjectImporter, classrooms classroomImporter, staff staffImporter, validate *validator.Validate, logger *zap.Logger, maxBytes int64) *RosterImportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return &RosterImportService{
		tx:          tx,
		departments: departments,
		subjects:    subjects,
		classrooms:  classrooms,
		staff:       staff,
		validator:   validate,
		logger:      logger,
		maxBytes:    maxBytes,
	}
}

// MaxBytes is the largest accepted upload.
func (s *RosterImportService) MaxBytes() int64 {
	return s.maxBytes
}

// Import creates every valid row that does not already exist. Duplicates are
// skipped and invalid rows are reported; neither aborts the import. A storage
// failure rolls back every row of the upload.
func (s *RosterImportService) Import(ctx context.Context, actor *models.JWTClaims, departmentID string, file io.Reader, size int64) (*dto.RosterImportReport, error) {
	if err := ensureDepartmentAdmin(actor, departmentID); err != nil {
		return nil, err
	}
	if size > s.maxBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roster file exceeds the upload limit")
	}
	if _, err := s.departments.FindByID(ctx, departmentID); err != nil {
		return nil, lookupError(err, "department")
	}

	wb, err := roster.Parse(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		return nil, validationError(err, "roster file is not a readable .xlsx workbook")
	}

	report := &dto.RosterImportReport{Errors: []dto.RosterImportRowError{}}
	for _, rowErr := range wb.Errors {
		report.Errors = append(report.Errors, dto.RosterImportRowError{Sheet: rowErr.Sheet, Row: rowErr.Row, Message: rowErr.Message})
	}
	err = database.WithTx(ctx, s.tx, func(tx *sqlx.Tx) error {
		if err := s.importSubjects(ctx, tx, departmentID, wb.Subjects, report); err != nil {
			return err
		}
		if err := s.importClassrooms(ctx, tx, departmentID, wb.Classrooms, report); err != nil {
			return err
		}
		return s.importStaff(ctx, tx, departmentID, wb.Staff, report)
	})
	if err != nil {
		s.logger.Sugar().Errorw("roster import rolled back", "department_id", departmentID, "error", err)
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, internalError(err, "failed to import roster")
	}

	s.logger.Sugar().Infow("roster imported",
		"department_id", departmentID,
		"subjects", report.Subjects.Created,
		"classrooms", report.Classrooms.Created,
		"staff", report.Staff.Created,
		"errors", len(report.Errors),
	)
	return report, nil
}

func (s *RosterImportService) importSubjects(ctx context.Context, tx *sqlx.Tx, departmentID string, rows []roster.SubjectRow, report *dto.RosterImportReport) error {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		req := dto.SubjectRequest{Name: row.Name, Code: row.Code, Credits: row.Credits}
		if err := s.validator.Struct(req); err != nil {
			addRowError(report, roster.SheetSubjects, row.Row, err)
			continue
		}
		code := strings.ToUpper(req.Code)
		if _, dup := seen[code]; dup {
			report.Subjects.Skipped++
			continue
		}
		seen[code] = struct{}{}
		exists, err := s.subjects.ExistsByCode(ctx, departmentID, code, "")
		if err != nil {
			return internalError(err, "failed to check subject code")
		}
		if exists {
			report.Subjects.Skipped++
			continue
		}
		subject := &models.Subject{DepartmentID: departmentID, Name: req.Name, Code: code, Credits: models.DefaultSubjectCredits}
		if req.Credits != nil {
			subject.Credits = *req.Credits
		}
		if err := s.subjects.CreateWithTx(ctx, tx, subject); err != nil {
			return internalError(err, "failed to create subject")
		}
		report.Subjects.Created++
	}
	return nil
}

func (s *RosterImportService) importClassrooms(ctx context.Context, tx *sqlx.Tx, departmentID string, rows []roster.ClassroomRow, report *dto.RosterImportReport) error {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		req := dto.ClassroomRequest{Name: row.Name, Capacity: row.Capacity}
		if err := s.validator.Struct(req); err != nil {
			addRowError(report, roster.SheetClassrooms, row.Row, err)
			continue
		}
		key := strings.ToLower(req.Name)
		if _, dup := seen[key]; dup {
			report.Classrooms.Skipped++
			continue
		}
		seen[key] = struct{}{}
		exists, err := s.classrooms.ExistsByName(ctx, departmentID, req.Name, "")
		if err != nil {
			return internalError(err, "failed to check classroom name")
		}
		if exists {
			report.Classrooms.Skipped++
			continue
		}
		if err := s.classrooms.CreateWithTx(ctx, tx, &models.Classroom{DepartmentID: departmentID, Name: req.Name, Capacity: req.Capacity}); err != nil {
			return internalError(err, "failed to create classroom")
		}
		report.Classrooms.Created++
	}
	return nil
}

func (s *RosterImportService) importStaff(ctx context.Context, tx *sqlx.Tx, departmentID string, rows []roster.StaffRow, report *dto.RosterImportReport) error {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		req := dto.StaffRequest{Name: row.Name, StaffRole: models.StaffRole(row.Role)}
		if row.Email != "" {
			email := strings.ToLower(row.Email)
			req.Email = &email
		}
		if err := s.validator.Struct(req); err != nil {
			addRowError(report, roster.SheetStaff, row.Row, err)
			continue
		}
		if req.Email != nil {
			if _, dup := seen[*req.Email]; dup {
				report.Staff.Skipped++
				continue
			}
			seen[*req.Email] = struct{}{}
			exists, err := s.staff.ExistsByEmail(ctx, *req.Email, "")
			if err != nil {
				return internalError(err, "failed to check staff email")
			}
			if exists {
				report.Staff.Skipped++
				continue
			}
		}
		member := &models.StaffMember{DepartmentID: departmentID, Name: req.Name, Email: req.Email, StaffRole: req.StaffRole}
		if err := s.staff.CreateWithTx(ctx, tx, member); err != nil {
			return internalError(err, "failed to create staff member")
		}
		report.Staff.Created++
	}
	return nil
}

func addRowError(report *dto.RosterImportReport, sheet string, row int, err error) {
	message := err.Error()
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		message = fmt.Sprintf("%s failed %s", strings.ToLower(fieldErrs[0].Field()), fieldErrs[0].Tag())
	}
	report.Errors = append(report.Errors, dto.RosterImportRowError{Sheet: sheet, Row: row, Message: message})
}
