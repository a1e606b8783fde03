package postgres

import (
	"context"
	"os"
	"testing"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/domain/ingestion"
	"goeda/domain/profile"
	"goeda/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() *dataset.Dataset {
	ds := dataset.NewDataset("sales.csv", dataset.SourceUpload)
	ds.Metadata.FileInfo = dataset.FileInfo{Format: "csv", Delimiter: ";", HasHeaders: true}
	row := ingestion.NewRow(1)
	row.Set("amount", ingestion.NewIntegerValue(3))
	ds.MarkReady(&profile.DatasetProfile{
		Filename: "sales.csv",
		Data:     []ingestion.Row{row},
		Summary:  profile.Summary{Rows: 1, Columns: 1, AverageMissingPercentage: 12.5},
		QualityAssessment: profile.QualityAssessment{
			Issues:   []string{},
			Warnings: []string{},
			Overall:  profile.VerdictExcellent,
		},
	})
	return ds
}

func TestRowConversion(t *testing.T) {
	ds := sampleDataset()

	row, err := toRow(ds)
	require.NoError(t, err)
	assert.True(t, row.Profile.Valid)
	assert.Equal(t, "excellent", row.Verdict)

	back, err := fromRow(row)
	require.NoError(t, err)
	assert.Equal(t, ds.ID, back.ID)
	assert.Equal(t, ds.Metadata, back.Metadata)
	assert.Equal(t, 1, back.RecordCount)
	assert.Equal(t, 12.5, back.MissingRate)
	require.NotNil(t, back.Profile)
	assert.Equal(t, int64(3), *back.Profile.Data[0].Value("amount").IntegerVal)
}

func TestRowConversionWithoutProfile(t *testing.T) {
	ds := dataset.NewDataset("broken.csv", dataset.SourceCLI)

	row, err := toRow(ds)
	require.NoError(t, err)
	assert.False(t, row.Profile.Valid)

	back, err := fromRow(row)
	require.NoError(t, err)
	assert.Nil(t, back.Profile)
	assert.Equal(t, dataset.StatusProcessing, back.Status)
}

func TestDatasetRepositoryIntegration(t *testing.T) {
	url := os.Getenv("GOEDA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("GOEDA_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := sqlx.Connect("postgres", url)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migration.NewRunner().Run(ctx, db))

	repo := NewDatasetRepository(db)
	ds := sampleDataset()
	require.NoError(t, repo.Create(ctx, ds))
	defer repo.Delete(ctx, ds.ID)

	got, err := repo.GetByID(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.Label, got.Label)
	require.NotNil(t, got.Profile)

	ds.Label = "renamed"
	require.NoError(t, repo.Update(ctx, ds))

	list, err := repo.List(ctx, 100, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, list)

	require.NoError(t, repo.Delete(ctx, ds.ID))
	_, err = repo.GetByID(ctx, ds.ID)
	assert.True(t, core.IsNotFoundError(err))
}
