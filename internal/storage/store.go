package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/gwbsim/internal/config"
	"github.com/san-kum/gwbsim/internal/grid"
	"github.com/san-kum/gwbsim/internal/metrics"
	"github.com/san-kum/gwbsim/internal/sim"
)

const metadataFile = "metadata.json"

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) BaseDir() string { return s.baseDir }

// Dir is the directory holding run id.
func (s *Store) Dir(id string) string { return filepath.Join(s.baseDir, id) }

// KindTotals sums one kind over the whole grid.
type KindTotals struct {
	Omega float64 `json:"omega"`
	N     float64 `json:"n"`
}

type RunMetadata struct {
	ID          string                `json:"id"`
	Tag         string                `json:"tag,omitempty"`
	Timestamp   time.Time             `json:"timestamp"`
	Mode        string                `json:"mode"`
	SFH         string                `json:"sfh"`
	Catalog     string                `json:"catalog"`
	Systems     int                   `json:"systems"`
	Binned      int                   `json:"binned"`
	Elapsed     float64               `json:"elapsed_seconds"`
	ZBins       int                   `json:"z_bins"`
	FBins       int                   `json:"f_bins"`
	Totals      map[string]KindTotals `json:"totals"`
	Diagnostics map[string]int64      `json:"diagnostics"`
	Config      *config.Config        `json:"config,omitempty"`
}

// NewMetadata fills the run summary fields from a finished result.
func NewMetadata(cfg *config.Config, sfhName, catalog string, res *sim.Result) RunMetadata {
	meta := RunMetadata{
		Timestamp:   time.Now().UTC(),
		SFH:         sfhName,
		Catalog:     catalog,
		Systems:     res.Systems,
		Binned:      res.Binned,
		Elapsed:     res.Elapsed.Seconds(),
		ZBins:       res.Grid.NZ(),
		FBins:       res.Grid.NF(),
		Totals:      make(map[string]KindTotals, len(grid.Kinds)),
		Diagnostics: res.Diagnostics.Snapshot(),
		Config:      cfg,
	}
	if cfg != nil {
		meta.Mode = cfg.Mode
		meta.Tag = cfg.Output.Tag
	}
	for _, k := range grid.Kinds {
		o, n := res.Grid.Totals(k)
		meta.Totals[k.String()] = KindTotals{Omega: o, N: n}
	}
	return meta
}

// Save writes a run directory and returns its id. An empty meta.ID gets a
// fresh uuid.
func (s *Store) Save(meta RunMetadata, res *sim.Result) (string, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now().UTC()
	}
	runDir := s.Dir(meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeGrid(runDir, res.Grid, res.Epochs); err != nil {
		return "", fmt.Errorf("run %s: %w", meta.ID, err)
	}
	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadResult rebuilds the grid and epochs of a stored run.
func (s *Store) LoadResult(runID string) (*sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	g, epochs, err := readGrid(s.Dir(runID))
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &sim.Result{
		Grid:        g,
		Epochs:      epochs,
		Diagnostics: metrics.FromSnapshot(meta.Diagnostics),
		Systems:     meta.Systems,
		Binned:      meta.Binned,
		Elapsed:     time.Duration(meta.Elapsed * float64(time.Second)),
	}, nil
}
