package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// ArtifactStore lists and removes generated firmware files.
type ArtifactStore interface {
	PresetIDs() ([]uint, error)
	Remove(presetID uint) error
}

// PresetLister reports which presets still exist.
type PresetLister interface {
	ListPresetIDs(ctx context.Context) ([]uint, error)
}

// CleanupReporter records the outcome of a cleanup run.
type CleanupReporter interface {
	LogCleanup(action, description string, removed int64, err error)
}

// CleanupArtifactsTask removes firmware artifacts left behind by deleted presets.
type CleanupArtifactsTask struct{}

// Config returns the queue configuration for artifact cleanup tasks.
func (t CleanupArtifactsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        TaskCleanupArtifacts,
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RemoveOrphanArtifacts deletes every artifact whose preset id is not in
// the store and returns how many were removed. Artifacts are listed before
// presets so a file exported after the preset listing is never considered.
func RemoveOrphanArtifacts(ctx context.Context, artifacts ArtifactStore, presets PresetLister) (int64, error) {
	onDisk, err := artifacts.PresetIDs()
	if err != nil {
		return 0, fmt.Errorf("list artifacts: %w", err)
	}

	ids, err := presets.ListPresetIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list presets: %w", err)
	}
	live := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		live[id] = struct{}{}
	}

	var removed int64
	var errs []error
	for _, id := range onDisk {
		if _, ok := live[id]; ok {
			continue
		}
		if err := artifacts.Remove(id); err != nil {
			errs = append(errs, fmt.Errorf("remove artifact %d: %w", id, err))
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// CleanupArtifactsProcessor creates a processor function for CleanupArtifactsTask.
// reporter may be nil.
func CleanupArtifactsProcessor(artifacts ArtifactStore, presets PresetLister, reporter CleanupReporter, logger *zap.Logger) backlite.QueueProcessor[CleanupArtifactsTask] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, task CleanupArtifactsTask) error {
		if artifacts == nil || presets == nil {
			return errors.New("artifact cleanup not configured")
		}

		removed, err := RemoveOrphanArtifacts(ctx, artifacts, presets)
		if reporter != nil {
			reporter.LogCleanup(TaskCleanupArtifacts, "Removed orphaned firmware artifacts", removed, err)
		}
		if err != nil {
			return fmt.Errorf("cleanup artifacts: %w", err)
		}

		logger.Info("cleaned up firmware artifacts", zap.Int64("removed", removed))
		return nil
	}
}

// NewCleanupArtifactsQueue creates a backlite queue for artifact cleanup tasks.
func NewCleanupArtifactsQueue(artifacts ArtifactStore, presets PresetLister, reporter CleanupReporter, logger *zap.Logger) backlite.Queue {
	return backlite.NewQueue(CleanupArtifactsProcessor(artifacts, presets, reporter, logger))
}
