package store

import (
	"sort"
	"sync"
	"time"

	"goeda/domain/core"
	"goeda/domain/ingestion"
	"goeda/internal/analysis"

	"go.uber.org/zap"
)

// Workspace pairs a store with its identity
type Workspace struct {
	ID        core.WorkspaceID `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Store     *Store           `json:"-"`
}

// Registry tracks the live workspaces of the server
type Registry struct {
	mu         sync.RWMutex
	workspaces map[core.WorkspaceID]*Workspace
	analyzer   *analysis.Analyzer
	opts       []Option
}

// NewRegistry creates a registry whose stores share analyzer and opts
func NewRegistry(analyzer *analysis.Analyzer, opts ...Option) *Registry {
	return &Registry{
		workspaces: make(map[core.WorkspaceID]*Workspace),
		analyzer:   analyzer,
		opts:       opts,
	}
}

// Create opens a workspace with rows loaded as its dataset
func (r *Registry) Create(datasetID core.DatasetID, label string, rows []ingestion.Row) (*Workspace, error) {
	s := New(r.analyzer, r.opts...)
	if err := s.Load(datasetID, label, rows); err != nil {
		return nil, err
	}

	ws := &Workspace{
		ID:        core.WorkspaceID(core.NewID()),
		CreatedAt: time.Now().UTC(),
		Store:     s,
	}

	r.mu.Lock()
	r.workspaces[ws.ID] = ws
	r.mu.Unlock()

	s.logger.Info("workspace opened",
		zap.String("workspace_id", ws.ID.String()),
		zap.String("dataset_id", datasetID.String()))
	return ws, nil
}

// Get returns the workspace with the given ID
func (r *Registry) Get(id core.WorkspaceID) (*Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ws, ok := r.workspaces[id]
	if !ok {
		return nil, core.NewNotFoundError("workspace", id.String())
	}
	return ws, nil
}

// Delete closes a workspace
func (r *Registry) Delete(id core.WorkspaceID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workspaces[id]; !ok {
		return core.NewNotFoundError("workspace", id.String())
	}
	delete(r.workspaces, id)
	return nil
}

// List returns workspaces oldest first
func (r *Registry) List() []*Workspace {
	r.mu.RLock()
	out := make([]*Workspace, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		out = append(out, ws)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// DropDataset closes every workspace bound to the dataset and returns how
// many were closed
func (r *Registry) DropDataset(datasetID core.DatasetID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	dropped := 0
	for id, ws := range r.workspaces {
		if ws.Store.DatasetID() == datasetID {
			delete(r.workspaces, id)
			dropped++
		}
	}
	return dropped
}
