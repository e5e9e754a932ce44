package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"column-tracker/internal/common"
	"column-tracker/internal/report"
	"column-tracker/internal/usage"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

func (h *Handler) ShowUsage(c *gin.Context) {
	h.renderUsage(c, http.StatusOK, gin.H{"error": ""})
}

// renderUsage подставляет список колонок, суженный параметром q.
func (h *Handler) renderUsage(c *gin.Context, status int, data gin.H) {
	query := strings.TrimSpace(c.Query("q"))

	cols, err := h.usage.SelectableColumns(c.Request.Context(), query)
	if err != nil {
		data["error"] = h.message(c, err)
		status = http.StatusInternalServerError
	}

	data["q"] = query
	data["columns"] = cols
	if _, ok := data["selected"]; !ok {
		data["selected"] = ""
	}
	if _, ok := data["date"]; !ok {
		data["date"] = time.Now().Format(dateLayout)
	}
	render(c, status, "usage.html", data)
}

func (h *Handler) LogUsage(c *gin.Context) {
	in := usage.UsageInput{
		ColumnQuery:  c.PostForm("column"),
		Project:      c.PostForm("project"),
		Technique:    c.PostForm("technique"),
		MobilePhaseA: c.PostForm("mobile_phase_a"),
		MobilePhaseB: c.PostForm("mobile_phase_b"),
	}
	rawDate := strings.TrimSpace(c.PostForm("date"))
	form := gin.H{
		"error":    "",
		"form":     in,
		"date":     rawDate,
		"selected": strings.TrimSpace(in.ColumnQuery),
	}

	if rawDate != "" {
		d, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			form["error"] = "Date must be in YYYY-MM-DD format."
			h.renderUsage(c, http.StatusBadRequest, form)
			return
		}
		in.Date = d
	}

	res, err := h.usage.LogUsage(c.Request.Context(), in)
	if err != nil {
		msg := h.message(c, err)
		switch {
		case errors.Is(err, common.ErrValidationEmpty):
			msg = "Project and Technique are required."
		case errors.Is(err, common.ErrNotFound):
			msg = "No active column matches \"" + in.ColumnQuery + "\"."
		}
		form["error"] = msg
		h.renderUsage(c, statusFor(err), form)
		return
	}

	data := gin.H{
		"error":  "",
		"logged": res.Entry,
		"column": res.Column,
	}
	if res.ReportErr != nil {
		data["reportError"] = "Usage saved, but the report is unavailable."
	} else {
		data["reportURL"] = "/reports/" + strconv.FormatUint(uint64(res.Entry.ID), 10) + ".pdf"
	}
	h.renderUsage(c, http.StatusCreated, data)
}

// DownloadReport отдаёт /reports/:id.pdf.
func (h *Handler) DownloadReport(c *gin.Context) {
	raw := strings.TrimSuffix(c.Param("file"), ".pdf")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.String(http.StatusBadRequest, "invalid report id")
		return
	}

	rc, name, err := h.usage.OpenReport(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.String(http.StatusNotFound, "usage entry not found")
			return
		}
		if errors.Is(err, common.ErrRenderFailure) {
			_ = h.message(c, err)
			c.String(http.StatusServiceUnavailable, "report is unavailable")
			return
		}
		c.String(http.StatusInternalServerError, h.message(c, err))
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, report.ContentType, rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + name + `"`,
	})
}
