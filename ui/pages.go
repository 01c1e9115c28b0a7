package ui

import (
	"bytes"
	"html/template"
	"net/http"
)

// Page is one dashboard view: a navigation entry, the content
// template, and optional sidebar help rendered from markdown.
type Page struct {
	Key      string
	Title    string
	Path     string
	Template string
	Help     string
	Data     func() interface{}
}

// pages returns the page registry in navigation order.
func (a *App) pages() []Page {
	return []Page{
		{
			Key: "overview", Title: "Overview", Path: "/", Template: "overview.html",
			Help: overviewHelp,
			Data: func() interface{} { return a.store.Overview() },
		},
		{
			Key: "individuals", Title: "Individuals", Path: "/individuals", Template: "individuals.html",
			Help: individualsHelp,
			Data: func() interface{} {
				return map[string]interface{}{
					"Individuals": a.store.Individuals(),
					"SampleSets":  a.store.SampleSets(),
				}
			},
		},
		{
			Key: "sample-sets", Title: "Sample sets", Path: "/sample-sets", Template: "sample_sets.html",
			Help: sampleSetsHelp,
			Data: func() interface{} {
				return map[string]interface{}{"SampleSets": a.store.SampleSets()}
			},
		},
		{
			Key: "stats", Title: "Statistics", Path: "/stats", Template: "stats.html",
			Help: statsHelp,
			Data: func() interface{} {
				return map[string]interface{}{"Info": a.store.Info()}
			},
		},
		{
			Key: "structure", Title: "Structure", Path: "/structure", Template: "structure.html",
			Help: structureHelp,
			Data: func() interface{} {
				return map[string]interface{}{"SampleSets": a.store.SampleSets()}
			},
		},
		{
			Key: "ignn", Title: "Individual GNN", Path: "/ignn", Template: "ignn.html",
			Help: ignnHelp,
			Data: func() interface{} {
				return map[string]interface{}{"Individuals": a.store.Individuals()}
			},
		},
		{
			Key: "map", Title: "Map", Path: "/map", Template: "map.html",
			Help: mapHelp,
			Data: func() interface{} {
				return map[string]interface{}{"Geolocated": a.store.SelectedGeolocated()}
			},
		},
		{
			Key: "trees", Title: "Trees", Path: "/trees", Template: "trees.html",
			Help: treesHelp,
			Data: func() interface{} {
				return map[string]interface{}{"Info": a.store.Info()}
			},
		},
	}
}

type pageView struct {
	Key     string
	Title   string
	Nav     []Page
	Help    template.HTML
	Data    interface{}
	Session string
	Admin   bool
}

func (a *App) pageHandler(page Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := pageView{
			Key:     page.Key,
			Title:   page.Title,
			Nav:     a.pages(),
			Help:    renderHelp(page.Help),
			Data:    page.Data(),
			Session: a.store.Session().String(),
			Admin:   a.admin,
		}
		a.render(w, page.Template, view)
	}
}

// render executes into a buffer first so template errors return a
// clean 500 instead of a half-written page.
func (a *App) render(w http.ResponseWriter, name string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		a.log.Error("template %s: %v", name, err)
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
