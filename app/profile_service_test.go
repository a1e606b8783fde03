package app

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"goeda/adapters/excel"
	"goeda/adapters/memory"
	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/domain/ingestion"
	"goeda/domain/profile"
	"goeda/internal/analysis"
	"goeda/internal/errors"
	"goeda/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	return m.Called(ctx, ds).Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	args := m.Called(ctx, id)
	ds, _ := args.Get(0).(*dataset.Dataset)
	return ds, args.Error(1)
}

func (m *mockRepository) List(ctx context.Context, limit, offset int) ([]*dataset.Dataset, error) {
	args := m.Called(ctx, limit, offset)
	list, _ := args.Get(0).([]*dataset.Dataset)
	return list, args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, ds *dataset.Dataset) error {
	return m.Called(ctx, ds).Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, id core.DatasetID) error {
	return m.Called(ctx, id).Error(0)
}

func newTestService(repo ports.DatasetRepository) *ProfileService {
	reader := excel.NewDataReader(excel.DefaultReaderConfig(), nil)
	return NewProfileService(repo, reader, analysis.NewAnalyzer(), nil)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func sampleRows() []ingestion.Row {
	order := []string{"a", "b"}
	return []ingestion.Row{
		ingestion.RowFromMap(order, map[string]interface{}{"a": 1, "b": "x"}),
		ingestion.RowFromMap(order, map[string]interface{}{"a": 2, "b": "y"}),
		ingestion.RowFromMap(order, map[string]interface{}{"a": 3, "b": "x"}),
	}
}

func TestProfileRowsStoresReadyDataset(t *testing.T) {
	repo := memory.NewDatasetRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	ds, err := svc.ProfileRows(ctx, "inline", sampleRows(), dataset.SourceAPI)
	require.NoError(t, err)
	assert.Equal(t, dataset.StatusReady, ds.Status)
	assert.Equal(t, 3, ds.RecordCount)
	assert.Equal(t, 2, ds.FieldCount)
	assert.Equal(t, dataset.SourceAPI, ds.Source)

	stored, err := svc.Get(ctx, ds.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Profile)
	assert.Equal(t, "inline", stored.Profile.Filename)
	assert.Equal(t, profile.TypeInteger, stored.Profile.Columns[0].Type)
}

func TestProfileRowsRejectsEmptyInput(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo)

	_, err := svc.ProfileRows(context.Background(), "empty", nil, dataset.SourceAPI)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, core.ErrEmptyDataset))
	assert.Equal(t, errors.CodeEmptyDataset, errors.GetCode(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProfileRowsHonorsCancelledContext(t *testing.T) {
	svc := newTestService(memory.NewDatasetRepository())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ProfileRows(ctx, "x", sampleRows(), dataset.SourceAPI)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProfileFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "people.csv", "name;age\nAda;36\nLin;41\n")

	svc := newTestService(memory.NewDatasetRepository())
	ds, err := svc.ProfileFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "people.csv", ds.OriginalFilename)
	assert.Equal(t, dataset.SourceCLI, ds.Source)
	assert.Equal(t, "csv", ds.Metadata.FileInfo.Format)
	assert.Equal(t, ";", ds.Metadata.FileInfo.Delimiter)
	assert.True(t, ds.Metadata.FileInfo.HasHeaders)
	require.Len(t, ds.Metadata.Hints, 2)
	assert.Equal(t, "age", ds.Metadata.Hints[1].Column)
}

func TestProfileFileHeaderOnlyStoresFailedDataset(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.csv", "a,b\n")

	repo := memory.NewDatasetRepository()
	svc := newTestService(repo)
	ds, err := svc.ProfileFile(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEmptyDataset)
	require.NotNil(t, ds)
	assert.Equal(t, dataset.StatusFailed, ds.Status)
	assert.Nil(t, ds.Profile)

	stored, err := repo.GetByID(context.Background(), ds.ID)
	require.NoError(t, err)
	assert.Equal(t, dataset.StatusFailed, stored.Status)
	assert.NotEmpty(t, stored.ErrorMessage)
}

func TestProfileFileReadErrorStoresNothing(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo)

	_, err := svc.ProfileFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = svc.ProfileFile(context.Background(), writeFile(t, t.TempDir(), "notes.pdf", "x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProfileUpload(t *testing.T) {
	svc := newTestService(memory.NewDatasetRepository())
	ds, err := svc.ProfileUpload(context.Background(), "upload.tsv", strings.NewReader("k\tv\n1\ta\n2\tb\n"))
	require.NoError(t, err)
	assert.Equal(t, dataset.SourceUpload, ds.Source)
	assert.Equal(t, "\t", ds.Metadata.FileInfo.Delimiter)
	assert.Equal(t, 2, ds.RecordCount)
}

func TestRepositoryFailureIsDatabaseError(t *testing.T) {
	repo := &mockRepository{}
	repo.On("Create", mock.Anything, mock.AnythingOfType("*dataset.Dataset")).Return(stderrors.New("connection refused"))
	svc := newTestService(repo)

	_, err := svc.ProfileRows(context.Background(), "x", sampleRows(), dataset.SourceAPI)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
	repo.AssertExpectations(t)
}

func TestGetAndDeleteNotFound(t *testing.T) {
	svc := newTestService(memory.NewDatasetRepository())
	ctx := context.Background()
	id := core.DatasetID(core.NewID())

	_, err := svc.Get(ctx, id)
	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	err = svc.Delete(ctx, id)
	assert.True(t, core.IsNotFoundError(err))
}

func TestListDefaultsAndDelete(t *testing.T) {
	repo := &mockRepository{}
	repo.On("List", mock.Anything, 50, 0).Return([]*dataset.Dataset{}, nil).Once()
	svc := newTestService(repo)

	list, err := svc.List(context.Background(), 0, -3)
	require.NoError(t, err)
	assert.Empty(t, list)
	repo.AssertExpectations(t)

	mem := newTestService(memory.NewDatasetRepository())
	ds, err := mem.ProfileRows(context.Background(), "gone", sampleRows(), dataset.SourceAPI)
	require.NoError(t, err)
	require.NoError(t, mem.Delete(context.Background(), ds.ID))
	all, err := mem.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProfileBatch(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "one.csv", "x,y\n1,2\n3,4\n"),
		filepath.Join(dir, "missing.csv"),
		writeFile(t, dir, "three.csv", "c\nred\nblue\n"),
		writeFile(t, dir, "four.txt", "a|b\n1|2\n"),
	}

	svc := newTestService(memory.NewDatasetRepository())
	results, err := svc.ProfileBatch(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, results, len(paths))

	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
	}
	assert.NoError(t, results[0].Err)
	assert.Equal(t, 2, results[0].Dataset.RecordCount)
	assert.Error(t, results[1].Err)
	assert.NotEmpty(t, results[1].Error())
	assert.Empty(t, results[2].Error())
	assert.Equal(t, 1, results[2].Dataset.FieldCount)
	assert.Equal(t, "|", results[3].Dataset.Metadata.FileInfo.Delimiter)

	all, err := svc.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProfileBatchCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "one.csv", "x\n1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := newTestService(memory.NewDatasetRepository())
	_, err := svc.ProfileBatch(ctx, []string{path, path}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeDoesNotPersist(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo)

	p, err := svc.Analyze(context.Background(), "preview", sampleRows())
	require.NoError(t, err)
	assert.Equal(t, 3, p.Summary.Rows)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
