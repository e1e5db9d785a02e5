// internal/processor/dashboard.go
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"rms-dashboard-go/internal/actionable"
	"rms-dashboard-go/internal/dataset"
	"rms-dashboard-go/internal/logger"
	"rms-dashboard-go/internal/navigation"
	"rms-dashboard-go/internal/pipeline"
	"rms-dashboard-go/internal/source"
	"rms-dashboard-go/internal/store"
	"rms-dashboard-go/internal/types"
)

// ErrNoData is returned by read operations before any dataset was loaded.
var ErrNoData = errors.New("no dataset loaded")

// StateStore persists the snapshot and the sound preference.
type StateStore interface {
	SaveSnapshot(ctx context.Context, snap store.Snapshot) error
	LoadSnapshot(ctx context.Context) (store.Snapshot, error)
	ClearSnapshot(ctx context.Context) error
	SoundMuted(ctx context.Context) (bool, error)
	SetSoundMuted(ctx context.Context, muted bool) error
}

// Fetcher supplies the default dataset.
type Fetcher interface {
	Fetch(ctx context.Context) (source.Payload, error)
}

// LoadResult is returned by every load trigger.
type LoadResult struct {
	SnapshotID string               `json:"snapshot_id"`
	Source     string               `json:"source"`
	Rows       int                  `json:"rows"`
	Analysis   types.AnalysisResult `json:"analysis"`
	DurationMs int64                `json:"duration_ms"`
}

// Dashboard owns the current raw grid. A load swaps the whole snapshot;
// readers always analyze one consistent snapshot.
type Dashboard struct {
	mu    sync.RWMutex
	snap  *store.Snapshot
	muted bool

	store   StateStore
	fetcher Fetcher
	now     func() time.Time
}

// New builds a dashboard. Either collaborator may be nil: without a store
// nothing is persisted, without a fetcher there is no default dataset.
func New(st StateStore, f Fetcher) *Dashboard {
	return &Dashboard{store: st, fetcher: f, now: time.Now}
}

// Start restores persisted state and falls back to the default dataset when
// there is nothing usable to restore.
func (d *Dashboard) Start(ctx context.Context) error {
	restored, err := d.Restore(ctx)
	if err != nil {
		logger.Component("processor").WithError(err).Warn("restore failed")
	}
	if restored {
		return nil
	}
	_, err = d.FetchDefault(ctx)
	return err
}

// Upload parses a user-supplied workbook. On failure the previous snapshot
// stays in place and nothing is persisted.
func (d *Dashboard) Upload(ctx context.Context, name string, data []byte) (LoadResult, error) {
	return d.load(ctx, name, data)
}

// Restore installs the persisted snapshot. A corrupt payload is cleared and
// reported as "nothing restored".
func (d *Dashboard) Restore(ctx context.Context) (bool, error) {
	if d.store == nil {
		return false, nil
	}
	log := logger.Component("processor")

	snap, err := d.store.LoadSnapshot(ctx)
	switch {
	case errors.Is(err, store.ErrNoSnapshot):
		return false, nil
	case errors.Is(err, store.ErrCorrupt):
		log.WithError(err).Warn("discarding corrupt persisted snapshot")
		if cerr := d.store.ClearSnapshot(ctx); cerr != nil {
			return false, fmt.Errorf("clear snapshot: %w", cerr)
		}
		return false, nil
	case err != nil:
		return false, err
	}

	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	d.install(snap)
	log.WithField("snapshot_id", snap.ID).WithField("rows", snap.Grid.DataRows()).Info("restored persisted snapshot")
	return true, nil
}

// FetchDefault loads the default workbook. A missing default is not an
// error: the dashboard simply waits for an upload.
func (d *Dashboard) FetchDefault(ctx context.Context) (bool, error) {
	if d.fetcher == nil {
		return false, nil
	}
	p, err := d.fetcher.Fetch(ctx)
	if errors.Is(err, source.ErrNotFound) {
		logger.Component("processor").Info("no default dataset, waiting for upload")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if _, err := d.load(ctx, p.Name, p.Data); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Dashboard) load(ctx context.Context, name string, data []byte) (LoadResult, error) {
	log := logger.Component("processor").WithField("source", name)
	start := time.Now()

	res, grid, err := pipeline.LoadAndAnalyze(name, data, "")
	if err != nil {
		log.WithError(err).Warn("dataset rejected")
		return LoadResult{}, err
	}

	snap := store.Snapshot{
		ID:       uuid.New().String(),
		Source:   name,
		LoadedAt: d.now().UTC(),
		Grid:     grid,
	}
	d.install(snap)

	if d.store != nil {
		if err := d.store.SaveSnapshot(ctx, snap); err != nil {
			// the in-memory snapshot is still valid
			log.WithError(err).Warn("could not persist snapshot")
		}
	}

	stamp(&res, snap)
	out := LoadResult{
		SnapshotID: snap.ID,
		Source:     name,
		Rows:       grid.DataRows(),
		Analysis:   res,
		DurationMs: time.Since(start).Milliseconds(),
	}
	log.WithField("snapshot_id", snap.ID).WithField("rows", out.Rows).WithField("duration_ms", out.DurationMs).Info("dataset loaded")
	return out, nil
}

func (d *Dashboard) install(snap store.Snapshot) {
	d.mu.Lock()
	d.snap = &snap
	d.mu.Unlock()
}

func (d *Dashboard) current() (*store.Snapshot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.snap == nil {
		return nil, ErrNoData
	}
	return d.snap, nil
}

func stamp(res *types.AnalysisResult, snap store.Snapshot) {
	res.SnapshotID = snap.ID
	res.Source = snap.Source
	res.LoadedAt = snap.LoadedAt
}

// Loaded reports whether a snapshot is installed.
func (d *Dashboard) Loaded() bool {
	_, err := d.current()
	return err == nil
}

// Analysis analyzes the current snapshot, scoped to region when non-empty.
func (d *Dashboard) Analysis(region string) (types.AnalysisResult, error) {
	snap, err := d.current()
	if err != nil {
		return types.AnalysisResult{}, err
	}
	res := pipeline.Analyze(snap.Grid, region)
	stamp(&res, *snap)
	return res, nil
}

// View is Analysis plus the cards and charts the page renders.
func (d *Dashboard) View(region string) (types.DashboardView, error) {
	res, err := d.Analysis(region)
	if err != nil {
		return types.DashboardView{}, err
	}
	return actionable.Generate(res), nil
}

// RegionCards returns the per-region cards of the whole-network page.
func (d *Dashboard) RegionCards(regions []string) ([]types.StatCard, error) {
	snap, err := d.current()
	if err != nil {
		return nil, err
	}
	var out []types.StatCard
	for _, r := range regions {
		res := pipeline.Analyze(snap.Grid, r)
		out = append(out, actionable.RegionCards(r, res.Summary)...)
	}
	return out, nil
}

// Rows returns the table-view rows for q.
func (d *Dashboard) Rows(q navigation.Query) (types.Grid, error) {
	snap, err := d.current()
	if err != nil {
		return nil, err
	}
	return dataset.Select(snap.Grid, q), nil
}

// SoundMuted reads the persisted preference, or the in-memory one when no
// store is configured.
func (d *Dashboard) SoundMuted(ctx context.Context) (bool, error) {
	if d.store == nil {
		d.mu.RLock()
		defer d.mu.RUnlock()
		return d.muted, nil
	}
	return d.store.SoundMuted(ctx)
}

func (d *Dashboard) SetSoundMuted(ctx context.Context, muted bool) error {
	if d.store == nil {
		d.mu.Lock()
		d.muted = muted
		d.mu.Unlock()
		return nil
	}
	return d.store.SetSoundMuted(ctx, muted)
}
