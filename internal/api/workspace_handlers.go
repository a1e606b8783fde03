package api

import (
	"net/http"

	"goeda/domain/core"
	"goeda/domain/profile"
	"goeda/internal/errors"
	"goeda/internal/store"

	"github.com/gin-gonic/gin"
)

type createWorkspaceRequest struct {
	DatasetID string `json:"dataset_id" binding:"required"`
}

type workspaceResponse struct {
	ID core.WorkspaceID `json:"id"`
	store.Snapshot
}

// handleCreateWorkspace opens a workspace over the cleaned rows of a stored dataset
func (s *Server) handleCreateWorkspace(c *gin.Context) {
	var req createWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "dataset_id is required")
		return
	}

	id, err := core.ParseDatasetID(req.DatasetID)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	ds, err := s.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ds.IsReady() || ds.Profile == nil {
		respondError(c, errors.WithCode(errors.CodeConflict, core.ErrNoDataset))
		return
	}

	ws, err := s.workspaces.Create(ds.ID, ds.GetDisplayName(), ds.Profile.Data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, workspaceResponse{ID: ws.ID, Snapshot: ws.Store.Snapshot()})
}

func (s *Server) handleGetWorkspace(c *gin.Context) {
	ws, ok := s.loadWorkspace(c)
	if !ok {
		return
	}
	s.respondSnapshot(c, ws, http.StatusOK)
}

func (s *Server) handleDeleteWorkspace(c *gin.Context) {
	id, err := core.ParseWorkspaceID(c.Param("id"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := s.workspaces.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAddFilter(c *gin.Context) {
	ws, ok := s.loadWorkspace(c)
	if !ok {
		return
	}
	var f store.Filter
	if err := c.ShouldBindJSON(&f); err != nil {
		badRequest(c, "invalid filter body: "+err.Error())
		return
	}
	added, err := ws.Store.AddFilter(f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"filter": added, "workspace": ws.Store.Snapshot()})
}

func (s *Server) handleRemoveFilter(c *gin.Context) {
	ws, ok := s.loadWorkspace(c)
	if !ok {
		return
	}
	if err := ws.Store.RemoveFilter(core.ID(c.Param("filter"))); err != nil {
		respondError(c, err)
		return
	}
	s.respondSnapshot(c, ws, http.StatusOK)
}

func (s *Server) handleClearFilters(c *gin.Context) {
	ws, ok := s.loadWorkspace(c)
	if !ok {
		return
	}
	if err := ws.Store.ClearFilters(); err != nil {
		respondError(c, err)
		return
	}
	s.respondSnapshot(c, ws, http.StatusOK)
}

// addChartRequest either names a chart directly or picks a suggestion by index
type addChartRequest struct {
	Suggestion *int              `json:"suggestion"`
	Type       profile.ChartType `json:"type"`
	Title      string            `json:"title"`
	X          string            `json:"x"`
	Y          string            `json:"y"`
}

func (s *Server) handleAddChart(c *gin.Context) {
	ws, ok := s.loadWorkspace(c)
	if !ok {
		return
	}
	var req addChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid chart body: "+err.Error())
		return
	}

	var (
		chart store.Chart
		err   error
	)
	if req.Suggestion != nil {
		chart, err = ws.Store.AddChartFromSuggestion(*req.Suggestion)
	} else {
		chart, err = ws.Store.AddChart(store.Chart{Type: req.Type, Title: req.Title, X: req.X, Y: req.Y})
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chart": chart, "workspace": ws.Store.Snapshot()})
}

func (s *Server) handleRemoveChart(c *gin.Context) {
	ws, ok := s.loadWorkspace(c)
	if !ok {
		return
	}
	id, err := core.ParseChartID(c.Param("chart"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := ws.Store.RemoveChart(id); err != nil {
		respondError(c, err)
		return
	}
	s.respondSnapshot(c, ws, http.StatusOK)
}

func (s *Server) handleUndo(c *gin.Context) {
	ws, ok := s.loadWorkspace(c)
	if !ok {
		return
	}
	if err := ws.Store.Undo(); err != nil {
		respondError(c, err)
		return
	}
	s.respondSnapshot(c, ws, http.StatusOK)
}

func (s *Server) handleRedo(c *gin.Context) {
	ws, ok := s.loadWorkspace(c)
	if !ok {
		return
	}
	if err := ws.Store.Redo(); err != nil {
		respondError(c, err)
		return
	}
	s.respondSnapshot(c, ws, http.StatusOK)
}

// handleWorkspaceProfile returns the profile of the filtered rows
func (s *Server) handleWorkspaceProfile(c *gin.Context) {
	ws, ok := s.loadWorkspace(c)
	if !ok {
		return
	}
	p, err := ws.Store.Profile()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) loadWorkspace(c *gin.Context) (*store.Workspace, bool) {
	id, err := core.ParseWorkspaceID(c.Param("id"))
	if err != nil {
		badRequest(c, err.Error())
		return nil, false
	}
	ws, err := s.workspaces.Get(id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return ws, true
}

func (s *Server) respondSnapshot(c *gin.Context, ws *store.Workspace, status int) {
	c.JSON(status, workspaceResponse{ID: ws.ID, Snapshot: ws.Store.Snapshot()})
}
