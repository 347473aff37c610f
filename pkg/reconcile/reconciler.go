// Package reconcile cleans up stranded writes.
//
// The two-phase write protocol (reserve, upload, commit) is not transactional
// across the metadata and blob stores. A crash or network failure between
// upload and commit leaves a permanently pending metadata entry and possibly
// an orphaned object in the blob store. Nothing on the request path recovers
// these; the reconciler is the out-of-band cleanup:
//
//  1. List pending entries older than the configured maximum age
//  2. Tombstone each one (only pending entries are eligible, so an entry
//     committed between the list and the tombstone is left alone)
//  3. Delete the reserved blob object, which may or may not exist
//
// Ready entries are never touched.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/wantpinow/sandboxdav/internal/logger"
	"github.com/wantpinow/sandboxdav/pkg/blob"
	"github.com/wantpinow/sandboxdav/pkg/metadata"
)

// Config contains configuration for the reconciler.
type Config struct {
	// Enabled controls whether background reconciliation runs at all.
	Enabled bool

	// Interval is how often to scan for stranded writes (default: 10m).
	Interval time.Duration

	// MaxAge is how old a pending entry must be before it is considered
	// stranded rather than in flight (default: 1h). Must comfortably exceed
	// the longest plausible upload.
	MaxAge time.Duration
}

// Reconciler periodically tombstones stranded pending entries and removes
// their reserved blob objects.
//
// Thread safety: safe for concurrent use; Start and Stop may each be called
// once.
type Reconciler struct {
	meta   metadata.Store
	blobs  blob.Store
	config Config
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewReconciler creates a reconciler over the two stores. It is initialized
// but not started; call Start to begin background runs.
func NewReconciler(meta metadata.Store, blobs blob.Store, config Config) *Reconciler {
	if config.Interval == 0 {
		config.Interval = 10 * time.Minute
	}
	if config.MaxAge == 0 {
		config.MaxAge = time.Hour
	}

	return &Reconciler{
		meta:   meta,
		blobs:  blobs,
		config: config,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins background reconciliation. A no-op when disabled.
func (r *Reconciler) Start() {
	if !r.config.Enabled {
		logger.Info("Write reconciliation disabled")
		return
	}

	logger.Info("Starting write reconciler: interval=%s max_age=%s",
		r.config.Interval, r.config.MaxAge)

	go r.worker()
}

// Stop stops the reconciler and waits for any in-progress run to finish, or
// for ctx to expire.
func (r *Reconciler) Stop(ctx context.Context) error {
	if !r.config.Enabled {
		return nil
	}

	close(r.stopCh)

	select {
	case <-r.doneCh:
		logger.Info("Write reconciler stopped")
		return nil
	case <-ctx.Done():
		logger.Warn("Write reconciler shutdown timeout")
		return ctx.Err()
	}
}

// RunNow triggers an immediate reconciliation pass. Useful for tests and
// manual cleanup; blocks until the pass completes or ctx is cancelled.
func (r *Reconciler) RunNow(ctx context.Context) (*Stats, error) {
	return r.reconcile(ctx)
}

func (r *Reconciler) worker() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			stats, err := r.reconcile(ctx)
			cancel()

			if err != nil {
				logger.Error("Write reconciliation failed: %v", err)
			} else if stats.StrandedCount > 0 {
				logger.Info("Write reconciliation completed: %s", stats.Summary())
			}

		case <-r.stopCh:
			return
		}
	}
}

// reconcile performs a single pass.
func (r *Reconciler) reconcile(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	cutoff := stats.StartTime.Add(-r.config.MaxAge)

	stranded, err := r.meta.ListPendingBefore(ctx, cutoff)
	if err != nil {
		return stats, fmt.Errorf("failed to list stranded writes: %w", err)
	}
	stats.StrandedCount = len(stranded)

	for i := range stranded {
		entry := &stranded[i]

		if err := ctx.Err(); err != nil {
			stats.EndTime = time.Now()
			return stats, err
		}

		if err := r.meta.TombstoneEntry(ctx, entry.ID); err != nil {
			// Most likely the write committed after we listed it.
			logger.Debug("reconcile: skipping entry %s (%s): %v", entry.ID, entry.Path, err)
			stats.SkippedCount++
			continue
		}

		if entry.ObjectKey != "" {
			if err := r.blobs.Delete(ctx, entry.ObjectKey); err != nil {
				logger.Warn("reconcile: failed to delete object %s: %v", entry.ObjectKey, err)
				stats.FailedDeletes++
			}
		}

		logger.Debug("reconcile: tombstoned stranded write %s at %s (age %s)",
			entry.ID, entry.Path, stats.StartTime.Sub(entry.Mtime).Round(time.Second))
		stats.TombstonedCount++
	}

	stats.EndTime = time.Now()
	return stats, nil
}

// Stats contains statistics from one reconciliation pass.
type Stats struct {
	StartTime       time.Time
	EndTime         time.Time
	StrandedCount   int // pending entries older than the cutoff
	TombstonedCount int // entries successfully tombstoned
	SkippedCount    int // entries no longer pending when revisited
	FailedDeletes   int // blob deletions that errored
}

// Duration returns the total pass duration.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Summary returns a human-readable summary of the pass.
func (s *Stats) Summary() string {
	return fmt.Sprintf("stranded=%d tombstoned=%d skipped=%d failed_deletes=%d duration=%s",
		s.StrandedCount, s.TombstonedCount, s.SkippedCount, s.FailedDeletes, s.Duration())
}
