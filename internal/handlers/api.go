package handlers

import (
	"net/http"
	"strconv"

	"column-tracker/internal/report"

	"github.com/gin-gonic/gin"
)

type apiColumn struct {
	ColumnNumber int    `json:"column_number"`
	SerialNumber string `json:"serial_number"`
	Reference    string `json:"reference"`
	Supplier     string `json:"supplier"`
	Dimension    string `json:"dimension"`
	Chemistry    string `json:"chemistry"`
	Status       string `json:"status"`
	TimesUsed    int64  `json:"times_used"`
}

// APIColumns: GET /api/v1/columns, те же фильтры, что у /overview.
func (h *Handler) APIColumns(c *gin.Context) {
	rows, err := h.search.Inventory(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": h.message(c, err)})
		return
	}

	data := make([]apiColumn, 0, len(rows))
	for _, r := range rows {
		data = append(data, apiColumn{
			ColumnNumber: r.Column.ColumnNumber,
			SerialNumber: r.Column.SerialNumber,
			Reference:    r.Column.Reference,
			Supplier:     r.Column.Supplier,
			Dimension:    r.Column.Dimension,
			Chemistry:    r.Column.Chemistry,
			Status:       r.Column.Status(),
			TimesUsed:    r.TimesUsed,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data": data,
		"meta": gin.H{"total": len(data)},
	})
}

func (h *Handler) APIUsageCounts(c *gin.Context) {
	usage, err := h.search.UsageByColumnNumber(c.Request.Context())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": h.message(c, err)})
		return
	}

	data := make([]gin.H, 0, len(usage))
	for _, u := range usage {
		data = append(data, gin.H{"column_number": u.ColumnNumber, "count": u.Count})
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *Handler) APIUsageEntry(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	entry, err := h.usage.History(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": h.message(c, err)})
		return
	}

	s := report.Summarize(entry)
	c.JSON(http.StatusOK, gin.H{
		"id":             s.EntryID,
		"employee_id":    s.EmployeeID,
		"user":           s.UserName,
		"column_number":  s.ColumnNumber,
		"serial_number":  s.SerialNumber,
		"reference":      s.Reference,
		"project":        s.Project,
		"technique":      s.Technique,
		"mobile_phase_a": s.MobilePhaseA,
		"mobile_phase_b": s.MobilePhaseB,
		"date":           s.Date,
		"report_url":     "/reports/" + strconv.FormatUint(id, 10) + ".pdf",
	})
}
