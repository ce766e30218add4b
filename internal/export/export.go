// Package export writes a planner week as an xlsx workbook: one row per
// employee, one column per day, the assigned project's name in each cell
// filled with the project's color.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/plannerhq/planner/internal/dateparse"
	"github.com/plannerhq/planner/internal/i18n"
	"github.com/plannerhq/planner/internal/models"
	"github.com/plannerhq/planner/internal/tui"
)

// Plan is one week of assignments ready to be written.
type Plan struct {
	Week        dateparse.Week
	Employees   []models.Employee
	Projects    []models.Project
	Assignments []models.Assignment
	Locale      i18n.Locale
}

const (
	employeeColWidth = 28
	dayColWidth      = 18
	weekendFill      = "#E7E6E6"
	headerFill       = "#D9E1F2"
)

// SheetName is the ISO week, e.g. "2024-W10".
func (p Plan) SheetName() string {
	return p.Week.String()
}

// Write encodes the workbook to w.
func Write(w io.Writer, p Plan) error {
	f, err := build(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Save writes the workbook to path.
func Save(path string, p Plan) error {
	f, err := build(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

func build(p Plan) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := p.SheetName()
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	w := &sheetWriter{f: f, sheet: sheet, styles: map[string]int{}}
	w.header(p)
	w.rows(p)
	w.layout(len(p.Employees))

	if w.err != nil {
		_ = f.Close()
		return nil, w.err
	}
	return f, nil
}

// sheetWriter keeps the first error so the layout code reads straight.
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	styles map[string]int
	err    error
}

func (w *sheetWriter) set(col, row int, value any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err == nil {
		err = w.f.SetCellValue(w.sheet, cell, value)
	}
	w.err = err
}

func (w *sheetWriter) style(col, row int, fill string, bold bool) {
	if w.err != nil {
		return
	}
	id, err := w.styleID(fill, bold)
	if err != nil {
		w.err = err
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err == nil {
		err = w.f.SetCellStyle(w.sheet, cell, cell, id)
	}
	w.err = err
}

func (w *sheetWriter) styleID(fill string, bold bool) (int, error) {
	key := fmt.Sprintf("%s/%t", fill, bold)
	if id, ok := w.styles[key]; ok {
		return id, nil
	}
	s := &excelize.Style{
		Font:      &excelize.Font{Bold: bold},
		Alignment: &excelize.Alignment{Vertical: "center"},
	}
	if fill != "" {
		s.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}}
	}
	id, err := w.f.NewStyle(s)
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	w.styles[key] = id
	return id, nil
}

func (w *sheetWriter) header(p Plan) {
	w.set(1, 1, "Employee")
	w.style(1, 1, headerFill, true)
	for i, day := range p.Week.Days() {
		w.set(i+2, 1, p.Locale.FormatShortDate(day.Time))
		fill := headerFill
		if day.IsWeekend() {
			fill = weekendFill
		}
		w.style(i+2, 1, fill, true)
	}
}

func (w *sheetWriter) rows(p Plan) {
	projects := make(map[string]models.Project, len(p.Projects))
	for _, pr := range p.Projects {
		projects[pr.ID] = pr
	}
	cells := make(map[string]models.Assignment, len(p.Assignments))
	for _, a := range p.Assignments {
		cells[a.EmployeeID+"|"+a.Date.String()] = a
	}

	for r, e := range p.Employees {
		row := r + 2
		w.set(1, row, e.FullName())
		for i, day := range p.Week.Days() {
			col := i + 2
			a, ok := cells[e.ID+"|"+day.String()]
			if !ok {
				if day.IsWeekend() {
					w.style(col, row, weekendFill, false)
				}
				continue
			}
			pr, known := projects[a.ProjectID]
			if !known {
				w.set(col, row, a.ProjectID)
				continue
			}
			w.set(col, row, pr.Name)
			if tui.IsHexColor(pr.Color) {
				w.style(col, row, strings.ToUpper(pr.Color), false)
			}
		}
	}
}

func (w *sheetWriter) layout(employees int) {
	if w.err != nil {
		return
	}
	if err := w.f.SetColWidth(w.sheet, "A", "A", employeeColWidth); err != nil {
		w.err = err
		return
	}
	if err := w.f.SetColWidth(w.sheet, "B", "H", dayColWidth); err != nil {
		w.err = err
		return
	}
	if employees == 0 {
		return
	}
	w.err = w.f.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	})
}
