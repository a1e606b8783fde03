// Package ui serves a small HTML browser over stored dataset profiles.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"goeda/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// App is the report browser
type App struct {
	router    *chi.Mux
	service   *app.ProfileService
	templates *template.Template
	logger    *zap.Logger
	pageSize  int
}

// Config holds report browser settings
type Config struct {
	// PageSize is the number of datasets listed on the index page
	PageSize int
	// RequestLogging enables chi's request logger
	RequestLogging bool
}

// NewApp creates the report browser
func NewApp(service *app.ProfileService, config Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.PageSize <= 0 {
		config.PageSize = 100
	}

	funcMap := template.FuncMap{
		"pct": func(f float64) string { return fmt.Sprintf("%.2f%%", f) },
		"date": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04")
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:    chi.NewRouter(),
		service:   service,
		templates: templates,
		logger:    logger.Named("ui"),
		pageSize:  config.PageSize,
	}
	a.setupMiddleware(config)
	a.setupRoutes()
	return a, nil
}

// ServeHTTP implements http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) setupMiddleware(config Config) {
	if config.RequestLogging {
		a.router.Use(middleware.Logger)
	}
	a.router.Use(middleware.Recoverer)
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/datasets/{id}", a.handleDatasetDetail)
}
