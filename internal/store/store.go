package store

import (
	"fmt"
	"sync"
	"time"

	"goeda/domain/core"
	"goeda/domain/ingestion"
	"goeda/domain/profile"
	"goeda/internal/analysis"

	"go.uber.org/zap"
)

// DefaultHistoryLimit bounds the undo stack when no limit is configured
const DefaultHistoryLimit = 50

// Chart is a visualization the user pinned to the workspace
type Chart struct {
	ID        core.ChartID      `json:"id"`
	Type      profile.ChartType `json:"type"`
	Title     string            `json:"title"`
	X         string            `json:"x,omitempty"`
	Y         string            `json:"y,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

var chartColumns = map[profile.ChartType]struct{ x, y bool }{
	profile.ChartHistogram: {x: true},
	profile.ChartBoxplot:   {x: true},
	profile.ChartScatter:   {x: true, y: true},
	profile.ChartHeatmap:   {},
	profile.ChartBar:       {x: true, y: true},
	profile.ChartPie:       {x: true},
	profile.ChartLine:      {x: true, y: true},
}

// state is the undoable part of the store
type state struct {
	filters []Filter
	charts  []Chart
}

func (s state) clone() state {
	return state{
		filters: append([]Filter(nil), s.filters...),
		charts:  append([]Chart(nil), s.charts...),
	}
}

// Snapshot is a read-only view of the store
type Snapshot struct {
	DatasetID    core.DatasetID `json:"dataset_id"`
	Label        string         `json:"label"`
	Columns      []string       `json:"columns"`
	Filters      []Filter       `json:"filters"`
	Charts       []Chart        `json:"charts"`
	TotalRows    int            `json:"total_rows"`
	FilteredRows int            `json:"filtered_rows"`
	CanUndo      bool           `json:"can_undo"`
	CanRedo      bool           `json:"can_redo"`
	HistoryDepth int            `json:"history_depth"`
}

// Store holds the interactive state of one workspace: the active dataset,
// filters, pinned charts and undo history. All methods are safe for
// concurrent use. The analysis engine is only ever called with copies.
type Store struct {
	mu           sync.Mutex
	analyzer     *analysis.Analyzer
	logger       *zap.Logger
	historyLimit int

	datasetID core.DatasetID
	label     string
	columns   []string
	rows      []ingestion.Row

	current state
	undo    []state
	redo    []state

	// cached profile of the filtered rows; nil when stale
	profile *profile.DatasetProfile
}

// Option configures a Store
type Option func(*Store)

// WithHistoryLimit bounds the undo stack
func WithHistoryLimit(limit int) Option {
	return func(s *Store) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// WithLogger sets the store logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty store
func New(analyzer *analysis.Analyzer, opts ...Option) *Store {
	s := &Store{
		analyzer:     analyzer,
		logger:       zap.NewNop(),
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("store")
	return s
}

// Load makes rows the active dataset and resets filters, charts and history.
// Column order is taken from the rows.
func (s *Store) Load(id core.DatasetID, label string, rows []ingestion.Row) error {
	if len(rows) == 0 {
		return core.ErrEmptyDataset
	}

	columns := make([]string, 0)
	seen := make(map[string]bool)
	copied := make([]ingestion.Row, len(rows))
	for i, row := range rows {
		copied[i] = row.Clone()
		for _, k := range row.Keys() {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.datasetID = id
	s.label = label
	s.columns = columns
	s.rows = copied
	s.current = state{}
	s.undo = nil
	s.redo = nil
	s.profile = nil

	s.logger.Debug("dataset loaded", zap.String("dataset_id", id.String()), zap.Int("rows", len(copied)))
	return nil
}

// AddFilter validates and appends a filter, returning it with its ID
func (s *Store) AddFilter(f Filter) (Filter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDataset(); err != nil {
		return Filter{}, err
	}
	if err := f.Validate(s.columns); err != nil {
		return Filter{}, err
	}

	f.ID = core.NewID()
	s.mutate(func(st *state) {
		st.filters = append(st.filters, f)
	})
	return f, nil
}

// RemoveFilter drops the filter with the given ID
func (s *Store) RemoveFilter(id core.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, f := range s.current.filters {
		if f.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.NewNotFoundError("filter", id.String())
	}

	s.mutate(func(st *state) {
		st.filters = append(st.filters[:idx:idx], st.filters[idx+1:]...)
	})
	return nil
}

// ClearFilters removes every filter as one undoable step
func (s *Store) ClearFilters() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDataset(); err != nil {
		return err
	}
	if len(s.current.filters) == 0 {
		return nil
	}
	s.mutate(func(st *state) {
		st.filters = nil
	})
	return nil
}

// AddChart pins a chart after checking its columns exist
func (s *Store) AddChart(c Chart) (Chart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireDataset(); err != nil {
		return Chart{}, err
	}
	if err := s.validateChart(c); err != nil {
		return Chart{}, err
	}

	c.ID = core.ChartID(core.NewID())
	c.CreatedAt = time.Now().UTC()
	if c.Title == "" {
		c.Title = string(c.Type)
	}
	s.mutate(func(st *state) {
		st.charts = append(st.charts, c)
	})
	return c, nil
}

// AddChartFromSuggestion pins the suggestion at index of the current profile
func (s *Store) AddChartFromSuggestion(index int) (Chart, error) {
	p, err := s.Profile()
	if err != nil {
		return Chart{}, err
	}
	if index < 0 || index >= len(p.ChartSuggestions) {
		return Chart{}, fmt.Errorf("%w: suggestion %d", core.ErrChartNotFound, index)
	}

	suggestion := p.ChartSuggestions[index]
	return s.AddChart(Chart{
		Type:  suggestion.Type,
		Title: suggestion.Title,
		X:     suggestion.X,
		Y:     suggestion.Y,
	})
}

// RemoveChart unpins a chart
func (s *Store) RemoveChart(id core.ChartID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, c := range s.current.charts {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.NewNotFoundError("chart", id.String())
	}

	s.mutate(func(st *state) {
		st.charts = append(st.charts[:idx:idx], st.charts[idx+1:]...)
	})
	return nil
}

// Undo reverts the last filter or chart change
func (s *Store) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) == 0 {
		return core.ErrNothingToUndo
	}
	prev := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, s.current.clone())
	s.current = prev
	s.profile = nil
	return nil
}

// Redo reapplies the last undone change
func (s *Store) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redo) == 0 {
		return core.ErrNothingToRedo
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, s.current.clone())
	s.current = next
	s.profile = nil
	return nil
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.clone()
	snap := Snapshot{
		DatasetID:    s.datasetID,
		Label:        s.label,
		Columns:      append([]string(nil), s.columns...),
		Filters:      cur.filters,
		Charts:       cur.charts,
		TotalRows:    len(s.rows),
		FilteredRows: len(applyFilters(s.rows, cur.filters)),
		CanUndo:      len(s.undo) > 0,
		CanRedo:      len(s.redo) > 0,
		HistoryDepth: len(s.undo),
	}
	if snap.Filters == nil {
		snap.Filters = []Filter{}
	}
	if snap.Charts == nil {
		snap.Charts = []Chart{}
	}
	return snap
}

// FilteredRows returns copies of the rows passing every filter
func (s *Store) FilteredRows() []ingestion.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return applyFilters(s.rows, s.current.filters)
}

// Profile returns the profile of the filtered rows, computing it when the
// cached one is stale
func (s *Store) Profile() (*profile.DatasetProfile, error) {
	s.mu.Lock()
	if s.profile != nil {
		p := s.profile
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()
	return s.Refresh()
}

// Refresh re-runs the full analysis over the filtered rows. Every call
// produces a new profile.
func (s *Store) Refresh() (*profile.DatasetProfile, error) {
	s.mu.Lock()
	if err := s.requireDataset(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	rows := applyFilters(s.rows, s.current.filters)
	label := s.label
	generation := s.current
	s.mu.Unlock()

	// analysis runs outside the lock on private copies
	p, err := s.analyzer.Analyze(rows, label)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if sameState(generation, s.current) {
		s.profile = p
	}
	s.mu.Unlock()
	return p, nil
}

// mutate records the current state for undo, applies fn and clears redo.
// Callers hold the lock.
func (s *Store) mutate(fn func(*state)) {
	s.undo = append(s.undo, s.current.clone())
	if len(s.undo) > s.historyLimit {
		s.undo = s.undo[len(s.undo)-s.historyLimit:]
	}
	s.redo = nil

	next := s.current.clone()
	fn(&next)
	s.current = next
	s.profile = nil
}

func (s *Store) requireDataset() error {
	if s.rows == nil {
		return core.ErrNoDataset
	}
	return nil
}

func (s *Store) validateChart(c Chart) error {
	need, ok := chartColumns[c.Type]
	if !ok {
		return fmt.Errorf("%w: unknown chart type %q", core.ErrInvalidChart, c.Type)
	}
	for _, col := range []struct {
		name     string
		required bool
	}{{c.X, need.x}, {c.Y, need.y}} {
		if col.required && col.name == "" {
			return fmt.Errorf("%w: %s chart is missing a required column", core.ErrInvalidChart, c.Type)
		}
		if col.name != "" && !contains(s.columns, col.name) {
			return fmt.Errorf("%w: unknown column %q", core.ErrInvalidChart, col.name)
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// sameState compares filter and chart identities
func sameState(a, b state) bool {
	if len(a.filters) != len(b.filters) || len(a.charts) != len(b.charts) {
		return false
	}
	for i := range a.filters {
		if a.filters[i].ID != b.filters[i].ID {
			return false
		}
	}
	for i := range a.charts {
		if a.charts[i].ID != b.charts[i].ID {
			return false
		}
	}
	return true
}

// DatasetID returns the ID of the loaded dataset
func (s *Store) DatasetID() core.DatasetID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.datasetID
}
