// Package report формирует PDF отчёт об использовании колонки с QR-кодом.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"column-tracker/internal/models"
)

const dateLayout = "2006-01-02"

// Summary: всё, что попадает в отчёт. Строится из записи с подгруженными User и Column.
type Summary struct {
	EntryID      uint
	EmployeeID   string
	UserName     string
	ColumnNumber string
	SerialNumber string
	Reference    string
	Project      string
	Technique    string
	MobilePhaseA string
	MobilePhaseB string
	Date         string
}

func Summarize(e models.UsageEntry) Summary {
	s := Summary{
		EntryID:      e.ID,
		EmployeeID:   "N/A",
		UserName:     "N/A",
		ColumnNumber: "N/A",
		SerialNumber: "N/A",
		Reference:    "N/A",
		Project:      e.Project,
		Technique:    e.Technique,
		MobilePhaseA: e.MobilePhaseA,
		MobilePhaseB: e.MobilePhaseB,
		Date:         e.UsedOn().Format(dateLayout),
	}
	if e.User.ID != 0 {
		s.EmployeeID = e.User.EmployeeID
		s.UserName = e.User.Name
	}
	if e.Column.ID != 0 {
		s.ColumnNumber = strconv.Itoa(e.Column.ColumnNumber)
		s.SerialNumber = e.Column.SerialNumber
		s.Reference = e.Column.Reference
	}
	return s
}

type Field struct {
	Label string
	Value string
}

// Fields: строки тела отчёта в порядке вывода.
func (s Summary) Fields() []Field {
	return []Field{
		{"Employee ID", s.EmployeeID},
		{"Column Number", s.ColumnNumber},
		{"Project", s.Project},
		{"Technique", s.Technique},
		{"Mobile Phase A", s.MobilePhaseA},
		{"Mobile Phase B", s.MobilePhaseB},
		{"Date", s.Date},
	}
}

// QRPayload: текст, зашиваемый в QR-код.
func (s Summary) QRPayload() string {
	var b strings.Builder
	for _, f := range []Field{
		{"Column Number", s.ColumnNumber},
		{"Serial Number", s.SerialNumber},
		{"Reference", s.Reference},
		{"Last Used", s.Date},
		{"User", s.UserName},
		{"Project", s.Project},
		{"Technique", s.Technique},
	} {
		fmt.Fprintf(&b, "%s: %s\n", f.Label, f.Value)
	}
	return b.String()
}
