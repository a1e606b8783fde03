package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/ports"
)

// datasetRepository keeps datasets in process memory. Records are copied
// through JSON on the way in and out so callers never share state with the
// store, matching what a database round trip would give them.
type datasetRepository struct {
	mu       sync.RWMutex
	datasets map[core.DatasetID][]byte
	created  map[core.DatasetID]int
	seq      int
}

// NewDatasetRepository creates an empty in-memory repository
func NewDatasetRepository() ports.DatasetRepository {
	return &datasetRepository{
		datasets: make(map[core.DatasetID][]byte),
		created:  make(map[core.DatasetID]int),
	}
}

// Create stores a new dataset
func (r *datasetRepository) Create(ctx context.Context, ds *dataset.Dataset) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.datasets[ds.ID]; exists {
		return fmt.Errorf("dataset already exists: %s", ds.ID)
	}
	r.seq++
	r.datasets[ds.ID] = data
	r.created[ds.ID] = r.seq
	return nil
}

// GetByID retrieves a dataset by its ID
func (r *datasetRepository) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	r.mu.RLock()
	data, ok := r.datasets[id]
	r.mu.RUnlock()

	if !ok {
		return nil, core.NewNotFoundError("dataset", id.String())
	}
	return decode(data)
}

// List returns datasets newest first with pagination
func (r *datasetRepository) List(ctx context.Context, limit, offset int) ([]*dataset.Dataset, error) {
	r.mu.RLock()
	ids := make([]core.DatasetID, 0, len(r.datasets))
	for id := range r.datasets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return r.created[ids[i]] > r.created[ids[j]]
	})

	if offset > len(ids) {
		offset = len(ids)
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}

	payloads := make([][]byte, len(ids))
	for i, id := range ids {
		payloads[i] = r.datasets[id]
	}
	r.mu.RUnlock()

	out := make([]*dataset.Dataset, 0, len(payloads))
	for _, data := range payloads {
		ds, err := decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}

// Update replaces an existing dataset
func (r *datasetRepository) Update(ctx context.Context, ds *dataset.Dataset) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.datasets[ds.ID]; !ok {
		return core.NewNotFoundError("dataset", ds.ID.String())
	}
	r.datasets[ds.ID] = data
	return nil
}

// Delete removes a dataset
func (r *datasetRepository) Delete(ctx context.Context, id core.DatasetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.datasets[id]; !ok {
		return core.NewNotFoundError("dataset", id.String())
	}
	delete(r.datasets, id)
	delete(r.created, id)
	return nil
}

func decode(data []byte) (*dataset.Dataset, error) {
	var ds dataset.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dataset: %w", err)
	}
	return &ds, nil
}
