package handlers

import (
	"errors"
	"net/http"

	"column-tracker/internal/common"
	"column-tracker/internal/inventory"
	"column-tracker/internal/middleware"
	"column-tracker/internal/search"
	"column-tracker/internal/session"
	"column-tracker/internal/usage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	gate    *session.Gate
	columns *inventory.Service
	usage   *usage.Service
	search  *search.Service
	log     *zap.Logger
}

func New(gate *session.Gate, columns *inventory.Service, usage *usage.Service, search *search.Service, log *zap.Logger) *Handler {
	return &Handler{gate: gate, columns: columns, usage: usage, search: search, log: log}
}

// render — обёртка над c.HTML, которая во все шаблоны прокидывает CurrentUser.
func render(c *gin.Context, status int, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	if v, ok := c.Get(middleware.CurrentUserKey); ok {
		if id, ok := v.(session.Identity); ok {
			data["CurrentUser"] = id
			data["IsAdmin"] = id.IsAdmin
		}
	}

	c.HTML(status, tmpl, data)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidationEmpty):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// message: текст ошибки для формы. Внутренние ошибки пишутся в лог,
// пользователю уходит общий текст.
func (h *Handler) message(c *gin.Context, err error) string {
	switch statusFor(err) {
	case http.StatusBadRequest:
		return "Please fill in all required fields."
	case http.StatusUnauthorized:
		return "Please log in first."
	case http.StatusForbidden:
		return "Access denied."
	case http.StatusNotFound:
		return "Not found."
	case http.StatusConflict:
		return "Already exists."
	}

	h.log.Error("request failed",
		zap.String("request_id", c.GetString("request_id")),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	_ = c.Error(err)
	return "Internal error, please try again."
}
