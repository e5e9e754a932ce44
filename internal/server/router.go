package server

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"column-tracker/internal/config"
	"column-tracker/internal/handlers"
	"column-tracker/internal/inventory"
	"column-tracker/internal/logging"
	"column-tracker/internal/middleware"
	"column-tracker/internal/search"
	"column-tracker/internal/session"
	"column-tracker/internal/usage"
	"column-tracker/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Services struct {
	Gate    *session.Gate
	Columns *inventory.Service
	Usage   *usage.Service
	Search  *search.Service
}

func templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"date": func(t time.Time) string { return t.Format("2006-01-02") },
	}).ParseFS(web.Templates, "templates/*.html")
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowMethods = []string{"GET", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	cfg.AllowCredentials = true
	return cfg
}

func NewRouter(cfg *config.Config, svc Services, log *zap.Logger) (*gin.Engine, error) {
	r := gin.New()
	r.Use(logging.Requests(log), gin.Recovery())

	// без списка origins API доступно только с того же хоста
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	}

	tmpl, err := templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	store, err := middleware.NewCookieStore(cfg.SessionSecret, cfg.GinMode == gin.ReleaseMode)
	if err != nil {
		return nil, err
	}
	r.Use(sessions.Sessions(middleware.SessionName, store))
	r.Use(middleware.InjectUser(svc.Gate, log))

	h := handlers.New(svc.Gate, svc.Columns, svc.Usage, svc.Search, log)

	// ГЛАВНАЯ
	r.GET("/", h.IndexPage)

	// AUTH
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)

	auth := r.Group("/")
	auth.Use(middleware.RequireAuth())

	// ИСПОЛЬЗОВАНИЕ
	auth.GET("/usage", h.ShowUsage)
	auth.POST("/usage", h.LogUsage)
	auth.GET("/reports/:file", h.DownloadReport)

	// КОЛОНКИ
	auth.GET("/columns", h.ListColumns)
	auth.GET("/columns/new", h.ShowNewColumn)
	auth.POST("/columns/new", h.CreateColumn)
	auth.GET("/columns/:number/edit", h.ShowEditColumn)
	auth.POST("/columns/:number/edit", h.UpdateColumn)

	// ПОИСК
	auth.GET("/overview", h.Overview)
	auth.GET("/overview/inventory.csv", h.InventoryCSV)
	auth.GET("/overview/history.csv", h.HistoryCSV)
	auth.GET("/dashboard", h.Dashboard)

	// ПОЛЬЗОВАТЕЛИ — только админ
	auth.GET("/users/new", middleware.RequireAdmin(), h.ShowNewUser)
	auth.POST("/users/new", middleware.RequireAdmin(), h.CreateUser)

	// JSON API
	api := r.Group("/api/v1")
	api.Use(middleware.RequireAPIAuth())
	api.GET("/columns", h.APIColumns)
	api.GET("/columns/usage-counts", h.APIUsageCounts)
	api.GET("/usage/:id", h.APIUsageEntry)

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r, nil
}
