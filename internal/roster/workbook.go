// Package roster reads department rosters from spreadsheets.
package roster

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names recognised in a roster workbook, matched case-insensitively.
const (
	SheetSubjects   = "Subjects"
	SheetClassrooms = "Classrooms"
	SheetStaff      = "Staff"
)

// SubjectRow is one line of the Subjects sheet.
type SubjectRow struct {
	Row     int
	Name    string
	Code    string
	Credits *int
}

// ClassroomRow is one line of the Classrooms sheet.
type ClassroomRow struct {
	Row      int
	Name     string
	Capacity int
}

// StaffRow is one line of the Staff sheet. Subjects holds subject codes and
// is only consumed by offline generation.
type StaffRow struct {
	Row      int
	Name     string
	Email    string
	Role     string
	Subjects []string
}

// RowError reports a line that could not be read.
type RowError struct {
	Sheet   string
	Row     int
	Message string
}

// Workbook is the parsed content of a roster file.
type Workbook struct {
	Subjects   []SubjectRow
	Classrooms []ClassroomRow
	Staff      []StaffRow
	Errors     []RowError
}

// Parse reads an .xlsx roster. Missing sheets are treated as empty; rows
// that cannot be read are reported in Errors rather than failing the parse.
func Parse(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		switch {
		case strings.EqualFold(name, SheetSubjects):
			wb.parseSubjects(rows)
		case strings.EqualFold(name, SheetClassrooms):
			wb.parseClassrooms(rows)
		case strings.EqualFold(name, SheetStaff):
			wb.parseStaff(rows)
		}
	}
	return wb, nil
}

func (wb *Workbook) parseSubjects(rows [][]string) {
	forEachRow(rows, func(line int, get func(string) string) {
		row := SubjectRow{Row: line, Name: get("name"), Code: get("code")}
		if raw := get("credits"); raw != "" {
			credits, err := strconv.Atoi(raw)
			if err != nil {
				wb.fail(SheetSubjects, line, "credits must be a whole number")
				return
			}
			row.Credits = &credits
		}
		wb.Subjects = append(wb.Subjects, row)
	})
}

func (wb *Workbook) parseClassrooms(rows [][]string) {
	forEachRow(rows, func(line int, get func(string) string) {
		capacity, err := strconv.Atoi(get("capacity"))
		if err != nil {
			wb.fail(SheetClassrooms, line, "capacity must be a whole number")
			return
		}
		wb.Classrooms = append(wb.Classrooms, ClassroomRow{Row: line, Name: get("name"), Capacity: capacity})
	})
}

func (wb *Workbook) parseStaff(rows [][]string) {
	forEachRow(rows, func(line int, get func(string) string) {
		row := StaffRow{
			Row:   line,
			Name:  get("name"),
			Email: get("email"),
			Role:  strings.ToLower(get("role")),
		}
		for _, code := range strings.Split(get("subjects"), ",") {
			if code = strings.TrimSpace(code); code != "" {
				row.Subjects = append(row.Subjects, strings.ToUpper(code))
			}
		}
		wb.Staff = append(wb.Staff, row)
	})
}

func (wb *Workbook) fail(sheet string, line int, message string) {
	wb.Errors = append(wb.Errors, RowError{Sheet: sheet, Row: line, Message: message})
}

// forEachRow maps the header row to column positions and calls fn for every
// non-blank data row with its 1-based spreadsheet line number.
func forEachRow(rows [][]string, fn func(line int, get func(string) string)) {
	if len(rows) == 0 {
		return
	}
	columns := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for i, cells := range rows[1:] {
		if blank(cells) {
			continue
		}
		get := func(column string) string {
			idx, ok := columns[column]
			if !ok || idx >= len(cells) {
				return ""
			}
			return strings.TrimSpace(cells[idx])
		}
		fn(i+2, get)
	}
}

func blank(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
