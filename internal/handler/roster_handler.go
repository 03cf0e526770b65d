package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type rosterImporter interface {
	Import(ctx context.Context, actor *models.JWTClaims, departmentID string, file io.Reader, size int64) (*dto.RosterImportReport, error)
	MaxBytes() int64
}

// RosterHandler accepts roster spreadsheet uploads.
type RosterHandler struct {
	service rosterImporter
}

// NewRosterHandler constructs a roster handler.
func NewRosterHandler(svc rosterImporter) *RosterHandler {
	return &RosterHandler{service: svc}
}

// Import godoc
// @Summary Import subjects, classrooms and staff from an .xlsx workbook
// @Tags Roster
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Department ID"
// @Param file formData file true "Workbook with Subjects, Classrooms and Staff sheets"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /departments/{id}/roster/import [post]
func (h *RosterHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.MaxBytes()+1<<20)
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "only .xlsx workbooks are accepted"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unable to read upload"))
		return
	}
	defer file.Close()

	report, err := h.service.Import(c.Request.Context(), claimsFromContext(c), c.Param("id"), file, header.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
