package handlers

import (
	"net/http"

	"column-tracker/internal/session"

	"github.com/gin-gonic/gin"
)

func (h *Handler) IndexPage(c *gin.Context) {
	_, ok := session.FromContext(c.Request.Context())

	render(c, http.StatusOK, "index.html", gin.H{
		"isAuthed": ok,
	})
}
