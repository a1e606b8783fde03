package ui

import (
	"bytes"
	"net/http"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/internal/report"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type indexPage struct {
	Datasets []*dataset.Dataset
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	datasets, err := a.service.List(r.Context(), a.pageSize, 0)
	if err != nil {
		a.logger.Error("failed to list datasets", zap.Error(err))
		http.Error(w, "failed to list datasets", http.StatusInternalServerError)
		return
	}
	a.render(w, http.StatusOK, "index.html", indexPage{Datasets: datasets})
}

func (a *App) handleDatasetDetail(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseDatasetID(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ds, err := a.service.Get(r.Context(), id)
	if err != nil {
		if core.IsNotFoundError(err) {
			http.NotFound(w, r)
			return
		}
		a.logger.Error("failed to load dataset", zap.String("dataset_id", id.String()), zap.Error(err))
		http.Error(w, "failed to load dataset", http.StatusInternalServerError)
		return
	}

	if ds.Profile == nil {
		a.render(w, http.StatusConflict, "failed.html", ds)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(report.HTML(ds.Profile))
}

// render executes into a buffer so template errors never leave a half-written page
func (a *App) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, name, data); err != nil {
		a.logger.Error("template error", zap.String("template", name), zap.Error(err))
		http.Error(w, "template rendering failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
