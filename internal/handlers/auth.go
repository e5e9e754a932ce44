package handlers

import (
	"errors"
	"net/http"
	"strings"

	"column-tracker/internal/common"
	"column-tracker/internal/middleware"
	"column-tracker/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func (h *Handler) ShowLogin(c *gin.Context) {
	if _, ok := session.FromContext(c.Request.Context()); ok {
		c.Redirect(http.StatusFound, "/usage")
		return
	}
	render(c, http.StatusOK, "login.html", gin.H{"error": "", "employeeID": ""})
}

func (h *Handler) Login(c *gin.Context) {
	employeeID := strings.TrimSpace(c.PostForm("employee_id"))

	id, err := h.gate.Authenticate(c.Request.Context(), employeeID)
	if err != nil {
		status, msg := http.StatusBadRequest, "Invalid Employee ID."
		if !errors.Is(err, common.ErrNotFound) && !errors.Is(err, common.ErrValidationEmpty) {
			status, msg = http.StatusInternalServerError, h.message(c, err)
		}
		render(c, status, "login.html", gin.H{"error": msg, "employeeID": employeeID})
		return
	}

	sess := sessions.Default(c)
	sess.Clear()
	sess.Set(middleware.SessionUserKey, id.UserID)
	if err := sess.Save(); err != nil {
		render(c, http.StatusInternalServerError, "login.html", gin.H{"error": h.message(c, err), "employeeID": employeeID})
		return
	}

	c.Redirect(http.StatusFound, "/usage")
}

func (h *Handler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = sess.Save()
	c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) ShowNewUser(c *gin.Context) {
	render(c, http.StatusOK, "users_new.html", gin.H{"error": ""})
}

func (h *Handler) CreateUser(c *gin.Context) {
	in := session.NewUser{
		Name:       strings.TrimSpace(c.PostForm("name")),
		EmployeeID: strings.TrimSpace(c.PostForm("employee_id")),
		IsAdmin:    c.PostForm("is_admin") != "",
	}

	user, err := h.gate.RegisterUser(c.Request.Context(), in)
	if err != nil {
		msg := h.message(c, err)
		switch {
		case errors.Is(err, common.ErrValidationEmpty):
			msg = "Name and Employee ID are required."
		case errors.Is(err, common.ErrConflict):
			msg = "A user with this Employee ID already exists."
		}
		render(c, statusFor(err), "users_new.html", gin.H{"error": msg, "form": in})
		return
	}

	render(c, http.StatusCreated, "users_new.html", gin.H{
		"error":   "",
		"success": "User " + user.Name + " registered.",
	})
}
