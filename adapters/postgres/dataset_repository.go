package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/domain/profile"
	"goeda/ports"

	"github.com/jmoiron/sqlx"
)

// datasetRepository implements the DatasetRepository interface
type datasetRepository struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &datasetRepository{db: db}
}

// datasetRow mirrors the datasets table. JSON columns travel as text so
// lib/pq does not encode them as bytea.
type datasetRow struct {
	ID               string         `db:"id"`
	OriginalFilename string         `db:"original_filename"`
	Label            string         `db:"label"`
	Source           string         `db:"source"`
	RecordCount      int            `db:"record_count"`
	FieldCount       int            `db:"field_count"`
	MissingRate      float64        `db:"missing_rate"`
	Verdict          string         `db:"verdict"`
	Status           string         `db:"status"`
	ErrorMessage     string         `db:"error_message"`
	Metadata         string         `db:"metadata"`
	Profile          sql.NullString `db:"profile"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

const selectColumns = `id, original_filename, label, source,
	COALESCE(record_count, 0) AS record_count, COALESCE(field_count, 0) AS field_count,
	COALESCE(missing_rate, 0.0) AS missing_rate, COALESCE(verdict, '') AS verdict,
	status, COALESCE(error_message, '') AS error_message,
	metadata, profile, created_at, updated_at`

// Create inserts a new dataset into the database
func (r *datasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	row, err := toRow(ds)
	if err != nil {
		return err
	}

	query := `INSERT INTO datasets (
		id, original_filename, label, source, record_count, field_count, missing_rate,
		verdict, status, error_message, metadata, profile, created_at, updated_at
	) VALUES (
		:id, :original_filename, :label, :source, :record_count, :field_count, :missing_rate,
		:verdict, :status, :error_message, :metadata, :profile, :created_at, :updated_at
	)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}
	return nil
}

// GetByID retrieves a dataset by its ID
func (r *datasetRepository) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	query := `SELECT ` + selectColumns + ` FROM datasets WHERE id = $1`

	var row datasetRow
	if err := r.db.GetContext(ctx, &row, query, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.NewNotFoundError("dataset", id.String())
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	return fromRow(row)
}

// List retrieves datasets newest first with pagination
func (r *datasetRepository) List(ctx context.Context, limit, offset int) ([]*dataset.Dataset, error) {
	query := `SELECT ` + selectColumns + ` FROM datasets
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2`

	var rows []datasetRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}

	datasets := make([]*dataset.Dataset, 0, len(rows))
	for _, row := range rows {
		ds, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}
	return datasets, nil
}

// Update modifies an existing dataset
func (r *datasetRepository) Update(ctx context.Context, ds *dataset.Dataset) error {
	row, err := toRow(ds)
	if err != nil {
		return err
	}

	query := `UPDATE datasets SET
		original_filename = :original_filename, label = :label, source = :source,
		record_count = :record_count, field_count = :field_count, missing_rate = :missing_rate,
		verdict = :verdict, status = :status, error_message = :error_message,
		metadata = :metadata, profile = :profile, updated_at = :updated_at
	WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("failed to update dataset: %w", err)
	}
	return expectAffected(result, ds.ID)
}

// Delete removes a dataset from the database
func (r *datasetRepository) Delete(ctx context.Context, id core.DatasetID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	return expectAffected(result, id)
}

func expectAffected(result sql.Result, id core.DatasetID) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return core.NewNotFoundError("dataset", id.String())
	}
	return nil
}

func toRow(ds *dataset.Dataset) (datasetRow, error) {
	metadataJSON, err := json.Marshal(ds.Metadata)
	if err != nil {
		return datasetRow{}, fmt.Errorf("failed to marshal metadata: %w", err)
	}

	var profileJSON []byte
	if ds.Profile != nil {
		profileJSON, err = json.Marshal(ds.Profile)
		if err != nil {
			return datasetRow{}, fmt.Errorf("failed to marshal profile: %w", err)
		}
	}

	return datasetRow{
		ID:               string(ds.ID),
		OriginalFilename: ds.OriginalFilename,
		Label:            ds.Label,
		Source:           string(ds.Source),
		RecordCount:      ds.RecordCount,
		FieldCount:       ds.FieldCount,
		MissingRate:      ds.MissingRate,
		Verdict:          string(ds.Verdict),
		Status:           string(ds.Status),
		ErrorMessage:     ds.ErrorMessage,
		Metadata:         string(metadataJSON),
		Profile:          sql.NullString{String: string(profileJSON), Valid: profileJSON != nil},
		CreatedAt:        ds.CreatedAt,
		UpdatedAt:        ds.UpdatedAt,
	}, nil
}

func fromRow(row datasetRow) (*dataset.Dataset, error) {
	ds := &dataset.Dataset{
		ID:               core.DatasetID(row.ID),
		OriginalFilename: row.OriginalFilename,
		Label:            row.Label,
		Source:           dataset.Source(row.Source),
		RecordCount:      row.RecordCount,
		FieldCount:       row.FieldCount,
		MissingRate:      row.MissingRate,
		Verdict:          profile.Verdict(row.Verdict),
		Status:           dataset.DatasetStatus(row.Status),
		ErrorMessage:     row.ErrorMessage,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}

	if row.Metadata != "" {
		if err := json.Unmarshal([]byte(row.Metadata), &ds.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	if row.Profile.Valid && row.Profile.String != "null" {
		var p profile.DatasetProfile
		if err := json.Unmarshal([]byte(row.Profile.String), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
		}
		ds.Profile = &p
	}

	return ds, nil
}
