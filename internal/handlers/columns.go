package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"column-tracker/internal/common"
	"column-tracker/internal/inventory"
	"column-tracker/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListColumns(c *gin.Context) {
	cols, err := h.columns.ListColumns(c.Request.Context())
	if err != nil {
		render(c, http.StatusInternalServerError, "columns_list.html", gin.H{"error": h.message(c, err)})
		return
	}

	render(c, http.StatusOK, "columns_list.html", gin.H{
		"columns": cols,
		"updated": c.Query("updated"),
		"error":   "",
	})
}

func (h *Handler) ShowNewColumn(c *gin.Context) {
	h.renderNewColumn(c, http.StatusOK, gin.H{"error": ""})
}

func (h *Handler) renderNewColumn(c *gin.Context, status int, data gin.H) {
	next, err := h.columns.NextColumnNumber(c.Request.Context())
	if err != nil {
		data["error"] = h.message(c, err)
		status = http.StatusInternalServerError
	}
	data["nextNumber"] = next
	render(c, status, "columns_new.html", data)
}

func columnInput(c *gin.Context) inventory.ColumnInput {
	return inventory.ColumnInput{
		SerialNumber: c.PostForm("serial_number"),
		Reference:    c.PostForm("reference"),
		Supplier:     c.PostForm("supplier"),
		Dimension:    c.PostForm("dimension"),
		Chemistry:    c.PostForm("chemistry"),
	}
}

func (h *Handler) CreateColumn(c *gin.Context) {
	in := columnInput(c)

	col, err := h.columns.RegisterColumn(c.Request.Context(), in)
	if err != nil {
		msg := h.message(c, err)
		switch {
		case errors.Is(err, common.ErrValidationEmpty):
			msg = "All fields are required."
		case errors.Is(err, common.ErrConflict):
			msg = "A column with serial number " + in.SerialNumber + " already exists."
		}
		h.renderNewColumn(c, statusFor(err), gin.H{"error": msg, "form": in})
		return
	}

	h.renderNewColumn(c, http.StatusCreated, gin.H{
		"error":   "",
		"success": "Column " + col.SerialNumber + " registered. Assigned Column Number: " + strconv.Itoa(col.ColumnNumber),
	})
}

func columnNumberParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil || n <= 0 {
		c.String(http.StatusBadRequest, "invalid column number")
		return 0, false
	}
	return n, true
}

func (h *Handler) ShowEditColumn(c *gin.Context) {
	number, ok := columnNumberParam(c)
	if !ok {
		return
	}

	col, err := h.columns.GetColumn(c.Request.Context(), number)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.String(http.StatusNotFound, "column not found")
			return
		}
		c.String(http.StatusInternalServerError, h.message(c, err))
		return
	}

	render(c, http.StatusOK, "columns_edit.html", gin.H{
		"column": col,
		"error":  "",
	})
}

func (h *Handler) UpdateColumn(c *gin.Context) {
	number, ok := columnNumberParam(c)
	if !ok {
		return
	}

	reference := c.PostForm("reference")
	supplier := c.PostForm("supplier")
	dimension := c.PostForm("dimension")
	chemistry := c.PostForm("chemistry")
	obsolete := c.PostForm("is_obsolete") != ""

	col, err := h.columns.ModifyColumn(c.Request.Context(), number, inventory.ColumnPatch{
		Reference:  &reference,
		Supplier:   &supplier,
		Dimension:  &dimension,
		Chemistry:  &chemistry,
		IsObsolete: &obsolete,
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.String(http.StatusNotFound, "column not found")
			return
		}
		msg := h.message(c, err)
		if errors.Is(err, common.ErrValidationEmpty) {
			msg = "Reference, supplier, dimension and chemistry must not be empty."
		}
		// показываем введённое, а не сохранённое
		render(c, statusFor(err), "columns_edit.html", gin.H{
			"column": models.Column{
				SerialNumber: c.PostForm("serial_number"),
				ColumnNumber: number,
				Reference:    reference,
				Supplier:     supplier,
				Dimension:    dimension,
				Chemistry:    chemistry,
				IsObsolete:   obsolete,
			},
			"error": msg,
		})
		return
	}

	c.Redirect(http.StatusFound, "/columns?updated="+strconv.Itoa(col.ColumnNumber))
}
