// Package ui serves the dashboard: chi-routed HTML pages over embedded
// templates, a JSON data API mounted under /api, and the optional
// /admin monitor.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tseda/adapters/excel"
	"tseda/app"
	"tseda/internal"
	"tseda/internal/errors"
	"tseda/ports"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// App is the dashboard application.
type App struct {
	router    *chi.Mux
	store     *app.DataStore
	templates *template.Template
	exporter  ports.TableExporter
	log       *internal.Logger

	admin     bool
	startedAt time.Time
	requests  atomic.Int64
}

// NewApp builds the dashboard over a loaded data store. When admin is
// set the /admin monitor is exposed on the same port.
func NewApp(store *app.DataStore, logger *internal.Logger, admin bool) (*App, error) {
	funcMap := template.FuncMap{
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },
		"fmtFloat": func(v float64) string { return fmt.Sprintf("%.4g", v) },
		"inc":      func(i int) int { return i + 1 },
		"deref": func(p *float64) float64 {
			if p == nil {
				return 0
			}
			return *p
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parsing templates")
	}

	a := &App{
		router:    chi.NewRouter(),
		store:     store,
		templates: templates,
		exporter:  excel.NewExporter(),
		log:       logger.Component("UI"),
		admin:     admin,
		startedAt: time.Now(),
	}

	a.setupMiddleware()
	a.setupRoutes()
	return a, nil
}

// Router returns the http handler.
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
	a.router.Use(a.countRequests)

	staticFS := http.FileServer(http.FS(embeddedFiles))
	a.router.Handle("/static/*", staticFS)
}

func (a *App) setupRoutes() {
	for _, page := range a.pages() {
		a.router.Get(page.Path, a.pageHandler(page))
	}

	// Gin matches on r.URL.Path, which chi's Mount leaves intact, so
	// the prefix has to be stripped before the engine sees the request.
	a.router.Mount("/api", http.StripPrefix("/api", a.apiEngine()))

	if a.admin {
		a.router.Get("/admin", a.handleAdmin)
	}
}

func (a *App) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}
