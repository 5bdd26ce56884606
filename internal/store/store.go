// Package store owns the session-scoped normalized table. The core pipeline
// stays pure; this is the one place holding mutable state, and it only ever
// replaces the table wholesale.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/crashdeck/crash-data-service/internal/domain"
	"github.com/crashdeck/crash-data-service/internal/observability"
)

// ErrNoData reports that nothing has been ingested yet and no refresh source
// is configured.
var ErrNoData = errors.New("no crash data loaded")

// Ingestion sources, used as metric labels and snapshot provenance.
const (
	SourceUpload = "upload"
	SourceSheet  = "sheet"
)

// FetchFunc retrieves a raw table from the external refresh source.
type FetchFunc func(ctx context.Context) (domain.Table, error)

// PublishFunc forwards a freshly ingested snapshot to a downstream sink.
type PublishFunc func(ctx context.Context, snap *Snapshot) error

// Snapshot is one immutable ingestion result. A new ingestion produces a new
// snapshot; nothing patches an existing one.
type Snapshot struct {
	ID          string
	Source      string
	Records     []domain.NormalizedRecord
	Columns     []string
	Dropped     int
	RefreshedAt time.Time
}

// Store caches the current snapshot with an expiry-driven refresh policy:
// reads past the TTL trigger a fresh fetch-and-normalize cycle, and a failed
// refresh keeps the previous snapshot while surfacing the error. Uploads
// replace the snapshot immediately.
type Store struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	ttl     time.Duration
	fetch   FetchFunc // nil in upload-only mode
	publish PublishFunc
	logger  *slog.Logger
	metrics *observability.Metrics

	snap  *Snapshot
	stale bool
}

// New creates a Store. fetch may be nil for upload-only deployments and
// publish may be nil when no sink is configured.
func New(fetch FetchFunc, publish PublishFunc, ttl time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Store {
	return &Store{
		clock:   clock,
		ttl:     ttl,
		fetch:   fetch,
		publish: publish,
		logger:  logger,
		metrics: metrics,
	}
}

// Current returns the live snapshot, refreshing from the sheet source first
// when the cached one has expired or been invalidated. When a refresh fails
// but an earlier snapshot exists, both the stale snapshot and the error are
// returned so callers can keep serving data while reporting the failure.
func (s *Store) Current(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap != nil && !s.expiredLocked() {
		return s.snap, nil
	}
	if s.fetch == nil {
		if s.snap != nil {
			return s.snap, nil
		}
		return nil, ErrNoData
	}

	start := s.clock.Now()
	table, err := s.fetch(ctx)
	if err != nil {
		s.metrics.FetchErrors.Inc()
		s.logger.Error("sheet refresh failed", "error", err)
		if s.snap != nil {
			return s.snap, fmt.Errorf("refresh crash data: %w", err)
		}
		return nil, fmt.Errorf("refresh crash data: %w", err)
	}
	s.metrics.FetchDuration.Observe(s.clock.Since(start).Seconds())

	snap := s.installLocked(table, SourceSheet)
	s.publishSnapshot(ctx, snap)
	return snap, nil
}

// LoadUpload normalizes an uploaded table and installs it as the current
// snapshot, regardless of any configured refresh source.
func (s *Store) LoadUpload(ctx context.Context, table domain.Table) *Snapshot {
	s.mu.Lock()
	snap := s.installLocked(table, SourceUpload)
	s.mu.Unlock()

	s.publishSnapshot(ctx, snap)
	return snap
}

// Invalidate marks the cached snapshot stale, forcing the next read to
// re-fetch. The data itself stays available until the refresh succeeds.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

// Refresh invalidates and immediately re-fetches.
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	s.Invalidate()
	return s.Current(ctx)
}

// CheckReadiness reports whether the service can serve data. Upload-only
// deployments are ready immediately; sheet-backed ones once the first fetch
// has landed.
func (s *Store) CheckReadiness(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fetch == nil || s.snap != nil {
		return nil
	}
	return errors.New("sheet snapshot not yet loaded")
}

func (s *Store) expiredLocked() bool {
	if s.stale {
		return true
	}
	if s.fetch == nil {
		return false
	}
	return s.clock.Since(s.snap.RefreshedAt) >= s.ttl
}

func (s *Store) installLocked(table domain.Table, source string) *Snapshot {
	result := domain.NormalizeTable(table)
	snap := &Snapshot{
		ID:          uuid.NewString(),
		Source:      source,
		Records:     result.Records,
		Columns:     result.Columns,
		Dropped:     result.Dropped,
		RefreshedAt: s.clock.Now(),
	}
	s.snap = snap
	s.stale = false

	s.metrics.IngestsTotal.WithLabelValues(source).Inc()
	s.metrics.SnapshotRecords.Set(float64(len(snap.Records)))
	s.metrics.RowsDropped.Add(float64(snap.Dropped))

	s.logger.Info("snapshot installed",
		"snapshot_id", snap.ID,
		"source", source,
		"records", len(snap.Records),
		"dropped_rows", snap.Dropped,
	)
	return snap
}

// publishSnapshot forwards the snapshot to the sink when one is configured.
// Publishing is best-effort: a sink failure never fails the ingestion.
func (s *Store) publishSnapshot(ctx context.Context, snap *Snapshot) {
	if s.publish == nil {
		return
	}
	if err := s.publish(ctx, snap); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("snapshot publish failed", "snapshot_id", snap.ID, "error", err)
	}
}
