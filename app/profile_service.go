package app

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/domain/ingestion"
	"goeda/domain/profile"
	"goeda/internal/errors"
	"goeda/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds ProfileBatch when the caller passes zero
const DefaultBatchConcurrency = 4

// ProfileService ingests datasets, runs the analysis engine and persists the result
type ProfileService struct {
	repo     ports.DatasetRepository
	reader   ports.TableReader
	profiler ports.Profiler
	logger   *zap.Logger
}

// NewProfileService creates a profile service. A nil logger disables logging.
func NewProfileService(repo ports.DatasetRepository, reader ports.TableReader, profiler ports.Profiler, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		repo:     repo,
		reader:   reader,
		profiler: profiler,
		logger:   logger.Named("profile_service"),
	}
}

// Analyze profiles rows without persisting anything
func (s *ProfileService) Analyze(ctx context.Context, label string, rows []ingestion.Row) (*profile.DatasetProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.profiler.Analyze(rows, label)
}

// ProfileRows analyzes in-memory rows and stores the dataset. An empty input
// is rejected before anything is stored.
func (s *ProfileService) ProfileRows(ctx context.Context, label string, rows []ingestion.Row, source dataset.Source) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.WithCode(errors.CodeEmptyDataset, core.ErrEmptyDataset)
	}

	ds := dataset.NewDataset(label, source)
	return s.analyzeAndStore(ctx, ds, rows)
}

// ProfileFile reads a file from disk and profiles it
func (s *ProfileService) ProfileFile(ctx context.Context, path string) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := s.reader.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", filepath.Base(path))
	}
	return s.profileTable(ctx, table, dataset.SourceCLI)
}

// ProfileUpload reads an uploaded file and profiles it
func (s *ProfileService) ProfileUpload(ctx context.Context, filename string, r io.Reader) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	table, err := s.reader.Read(r, filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", filename)
	}
	return s.profileTable(ctx, table, dataset.SourceUpload)
}

// profileTable stores the dataset even when analysis fails, since the file
// itself was read. Both the failed record and the error are returned then.
func (s *ProfileService) profileTable(ctx context.Context, table *ingestion.Table, source dataset.Source) (*dataset.Dataset, error) {
	ds := dataset.NewDataset(table.Name, source)
	ds.Metadata = metadataFromTable(table)

	if len(table.Errors) > 0 {
		s.logger.Warn("reader reported unusable rows",
			zap.String("filename", table.Name),
			zap.Int("count", len(table.Errors)))
	}
	return s.analyzeAndStore(ctx, ds, table.Rows)
}

func (s *ProfileService) analyzeAndStore(ctx context.Context, ds *dataset.Dataset, rows []ingestion.Row) (*dataset.Dataset, error) {
	start := time.Now()
	p, analyzeErr := s.profiler.Analyze(rows, ds.OriginalFilename)
	if analyzeErr != nil {
		ds.MarkFailed(analyzeErr)
		s.logger.Warn("analysis failed",
			zap.String("dataset_id", ds.ID.String()),
			zap.String("filename", ds.OriginalFilename),
			zap.Error(analyzeErr))
	} else {
		ds.MarkReady(p)
	}

	if err := s.repo.Create(ctx, ds); err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to store dataset"))
	}
	if analyzeErr != nil {
		return ds, analyzeErr
	}

	s.logger.Info("dataset profiled",
		zap.String("dataset_id", ds.ID.String()),
		zap.String("filename", ds.OriginalFilename),
		zap.Int("rows", ds.RecordCount),
		zap.Int("columns", ds.FieldCount),
		zap.String("verdict", string(ds.Verdict)),
		zap.Duration("elapsed", time.Since(start)))
	return ds, nil
}

// Get returns a stored dataset
func (s *ProfileService) Get(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	ds, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOrWrap(err, "failed to load dataset")
	}
	return ds, nil
}

// List returns stored datasets newest first
func (s *ProfileService) List(ctx context.Context, limit, offset int) ([]*dataset.Dataset, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	datasets, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list datasets")
	}
	return datasets, nil
}

// Delete removes a stored dataset
func (s *ProfileService) Delete(ctx context.Context, id core.DatasetID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOrWrap(err, "failed to delete dataset")
	}
	s.logger.Info("dataset deleted", zap.String("dataset_id", id.String()))
	return nil
}

// BatchResult is the outcome of one file in a batch
type BatchResult struct {
	Path    string           `json:"path"`
	Dataset *dataset.Dataset `json:"dataset,omitempty"`
	Err     error            `json:"-"`
}

// Error returns the failure message, or "" on success
func (r BatchResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// ProfileBatch profiles files concurrently with at most concurrency analyses
// in flight. Per-file failures are reported in the results; only context
// cancellation fails the batch. Results keep the order of paths.
func (s *ProfileService) ProfileBatch(ctx context.Context, paths []string, concurrency int) ([]BatchResult, error) {
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	results := make([]BatchResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ds, err := s.ProfileFile(gctx, path)
			results[i] = BatchResult{Path: path, Dataset: ds, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.Info("batch finished",
		zap.Int("files", len(paths)),
		zap.Int("failed", failed),
		zap.Int("concurrency", concurrency))
	return results, nil
}

func notFoundOrWrap(err error, message string) error {
	if core.IsNotFoundError(err) {
		return errors.WithCode(errors.CodeNotFound, err)
	}
	return errors.Wrap(err, message)
}

func metadataFromTable(table *ingestion.Table) dataset.DatasetMetadata {
	meta := dataset.DatasetMetadata{
		FileInfo: dataset.FileInfo{
			Format:      table.FileInfo.Format,
			Delimiter:   table.FileInfo.Delimiter,
			SheetName:   table.FileInfo.SheetName,
			HasHeaders:  len(table.Headers) > 0,
			SkippedRows: len(table.Errors),
		},
	}
	for _, h := range table.Hints {
		meta.Hints = append(meta.Hints, dataset.Hint{
			Column: h.Column,
			Type:   string(h.Type),
			Ratio:  hintRatio(h),
		})
	}
	return meta
}

// hintRatio is the share of values that supported the hinted type
func hintRatio(h ingestion.ColumnHint) float64 {
	switch h.Type {
	case ingestion.ValueTypeFloat, ingestion.ValueTypeInteger:
		return h.NumericRatio
	case ingestion.ValueTypeBoolean:
		return h.BooleanRatio
	case ingestion.ValueTypeTimestamp:
		return h.TimestampRatio
	case ingestion.ValueTypeMissing:
		return 0
	}
	return 1
}
