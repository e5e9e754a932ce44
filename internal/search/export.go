package search

import (
	"encoding/csv"
	"io"
	"strconv"
)

var (
	InventoryHeader = []string{"Column Number", "Serial Number", "Supplier", "Chemistry", "Dimension", "Total Times Used", "Status"}
	HistoryHeader   = []string{"Column Number", "Employee ID", "Project", "Mobile Phase A", "Mobile Phase B", "Technique", "Date Used"}
)

func WriteInventoryCSV(w io.Writer, rows []InventoryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(InventoryHeader); err != nil {
		return err
	}
	for _, r := range rows {
		c := r.Column
		if err := cw.Write([]string{
			strconv.Itoa(c.ColumnNumber),
			c.SerialNumber,
			c.Supplier,
			c.Chemistry,
			c.Dimension,
			strconv.FormatInt(r.TimesUsed, 10),
			c.Status(),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteHistoryCSV(w io.Writer, rows []HistoryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(HistoryHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			strconv.Itoa(r.ColumnNumber),
			r.EmployeeID,
			r.Project,
			r.MobilePhaseA,
			r.MobilePhaseB,
			r.Technique,
			r.Date.Format("2006-01-02"),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
