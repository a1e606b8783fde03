package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/domain/ingestion"
	"goeda/internal/errors"
	"goeda/internal/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type analyzeRequest struct {
	Label string          `json:"label"`
	Rows  []ingestion.Row `json:"rows"`
}

// handleAnalyze profiles rows from the request body without storing them
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Label == "" {
		req.Label = "inline"
	}

	if c.Query("persist") == "true" {
		ds, err := s.service.ProfileRows(c.Request.Context(), req.Label, req.Rows, dataset.SourceAPI)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, summarizeDataset(ds))
		return
	}

	p, err := s.service.Analyze(c.Request.Context(), req.Label, req.Rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// handleUploadDataset profiles a multipart file upload and stores the result
func (s *Server) handleUploadDataset(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "multipart field 'file' is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	ds, err := s.service.ProfileUpload(c.Request.Context(), header.Filename, file)
	if err != nil {
		if ds != nil {
			s.logger.Warn("stored dataset as failed",
				zap.String("dataset_id", ds.ID.String()),
				zap.Error(err))
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, summarizeDataset(ds))
}

func (s *Server) handleListDatasets(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	datasets, err := s.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]datasetSummary, 0, len(datasets))
	for _, ds := range datasets {
		out = append(out, summarizeDataset(ds))
	}
	c.JSON(http.StatusOK, gin.H{"datasets": out})
}

func (s *Server) handleGetDataset(c *gin.Context) {
	ds, ok := s.loadDataset(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ds)
}

func (s *Server) handleDeleteDataset(c *gin.Context) {
	id, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := s.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	if dropped := s.workspaces.DropDataset(id); dropped > 0 {
		s.logger.Info("closed workspaces of deleted dataset",
			zap.String("dataset_id", id.String()),
			zap.Int("workspaces", dropped))
	}
	c.Status(http.StatusNoContent)
}

// handleDatasetReport renders the stored profile as a standalone HTML page
func (s *Server) handleDatasetReport(c *gin.Context) {
	ds, ok := s.loadDataset(c)
	if !ok {
		return
	}
	if !ds.IsReady() || ds.Profile == nil {
		respondError(c, errors.WithCode(errors.CodeConflict,
			fmt.Errorf("dataset has no profile: status %s", ds.Status)))
		return
	}

	if c.Query("format") == "markdown" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(ds.Profile)))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(ds.Profile))
}

func (s *Server) loadDataset(c *gin.Context) (*dataset.Dataset, bool) {
	id, err := core.ParseDatasetID(c.Param("id"))
	if err != nil {
		badRequest(c, err.Error())
		return nil, false
	}
	ds, err := s.service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return ds, true
}

// datasetSummary is the list view of a dataset, without its profile
type datasetSummary struct {
	ID               core.DatasetID        `json:"id"`
	OriginalFilename string                `json:"original_filename"`
	Label            string                `json:"label"`
	Source           dataset.Source        `json:"source"`
	Status           dataset.DatasetStatus `json:"status"`
	RecordCount      int                   `json:"record_count"`
	FieldCount       int                   `json:"field_count"`
	MissingRate      float64               `json:"missing_rate"`
	Verdict          string                `json:"verdict,omitempty"`
	ErrorMessage     string                `json:"error_message,omitempty"`
	CreatedAt        string                `json:"created_at"`
}

func summarizeDataset(ds *dataset.Dataset) datasetSummary {
	return datasetSummary{
		ID:               ds.ID,
		OriginalFilename: ds.OriginalFilename,
		Label:            ds.GetDisplayName(),
		Source:           ds.Source,
		Status:           ds.Status,
		RecordCount:      ds.RecordCount,
		FieldCount:       ds.FieldCount,
		MissingRate:      ds.MissingRate,
		Verdict:          string(ds.Verdict),
		ErrorMessage:     ds.ErrorMessage,
		CreatedAt:        ds.CreatedAt.Format(time.RFC3339),
	}
}
