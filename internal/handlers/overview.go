package handlers

import (
	"net/http"

	"column-tracker/internal/search"

	"github.com/gin-gonic/gin"
)

func filterFromQuery(c *gin.Context) search.ColumnFilter {
	return search.ColumnFilter{
		ColumnNumber: c.Query("column"),
		Chemistry:    c.Query("chemistry"),
		Reference:    c.Query("reference"),
		Supplier:     c.Query("supplier"),
		EmployeeID:   c.Query("employee"),
	}
}

func columnIDs(rows []search.InventoryRow) []uint {
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.Column.ID)
	}
	return ids
}

func (h *Handler) Overview(c *gin.Context) {
	ctx := c.Request.Context()
	filter := filterFromQuery(c)

	rows, err := h.search.Inventory(ctx, filter)
	if err != nil {
		render(c, http.StatusInternalServerError, "overview.html", gin.H{"error": h.message(c, err), "filter": filter})
		return
	}
	history, err := h.search.UsageHistory(ctx, columnIDs(rows))
	if err != nil {
		render(c, http.StatusInternalServerError, "overview.html", gin.H{"error": h.message(c, err), "filter": filter})
		return
	}

	suffix := ""
	if q := c.Request.URL.RawQuery; q != "" {
		suffix = "?" + q
	}

	render(c, http.StatusOK, "overview.html", gin.H{
		"error":        "",
		"filter":       filter,
		"inventory":    rows,
		"history":      history,
		"inventoryCSV": "/overview/inventory.csv" + suffix,
		"historyCSV":   "/overview/history.csv" + suffix,
	})
}

func attachment(c *gin.Context, name string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
}

func (h *Handler) InventoryCSV(c *gin.Context) {
	rows, err := h.search.Inventory(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		c.String(http.StatusInternalServerError, h.message(c, err))
		return
	}

	attachment(c, "column_inventory.csv")
	if err := search.WriteInventoryCSV(c.Writer, rows); err != nil {
		_ = h.message(c, err)
	}
}

func (h *Handler) HistoryCSV(c *gin.Context) {
	ctx := c.Request.Context()

	rows, err := h.search.Inventory(ctx, filterFromQuery(c))
	if err != nil {
		c.String(http.StatusInternalServerError, h.message(c, err))
		return
	}
	history, err := h.search.UsageHistory(ctx, columnIDs(rows))
	if err != nil {
		c.String(http.StatusInternalServerError, h.message(c, err))
		return
	}

	attachment(c, "column_usage_history.csv")
	if err := search.WriteHistoryCSV(c.Writer, history); err != nil {
		_ = h.message(c, err)
	}
}

type usageBar struct {
	ColumnNumber int
	Count        int64
	Percent      int
}

func (h *Handler) Dashboard(c *gin.Context) {
	usage, err := h.search.UsageByColumnNumber(c.Request.Context())
	if err != nil {
		render(c, http.StatusInternalServerError, "dashboard.html", gin.H{"error": h.message(c, err)})
		return
	}

	var top int64
	for _, u := range usage {
		if u.Count > top {
			top = u.Count
		}
	}
	bars := make([]usageBar, 0, len(usage))
	for _, u := range usage {
		bars = append(bars, usageBar{
			ColumnNumber: u.ColumnNumber,
			Count:        u.Count,
			Percent:      int(u.Count * 100 / top),
		})
	}

	render(c, http.StatusOK, "dashboard.html", gin.H{
		"error": "",
		"bars":  bars,
	})
}
