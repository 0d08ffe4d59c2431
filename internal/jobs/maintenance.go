package jobs

import (
	"log/slog"
	"time"

	"github.com/karloscodes/cartridge"
	"gorm.io/gorm"

	"devconnect/internal/metrics"
	"devconnect/internal/posts"
	"devconnect/internal/profiles"
	"devconnect/internal/users"
)

// Checkpointer flushes the SQLite write-ahead log.
type Checkpointer interface {
	CheckpointWAL(mode string) error
}

// CheckpointJob keeps the WAL file from growing between restarts.
func CheckpointJob(db Checkpointer, interval time.Duration) Job {
	return Job{
		Name:     "wal_checkpoint",
		Interval: interval,
		Run: func() error {
			return db.CheckpointWAL("PASSIVE")
		},
	}
}

// StatsJob publishes row counts of the main collections as gauges.
func StatsJob(dbManager cartridge.DBManager, logger *slog.Logger, interval time.Duration) Job {
	return Job{
		Name:     "entity_stats",
		Interval: interval,
		Run: func() error {
			db := dbManager.GetConnection()
			if db == nil {
				return gorm.ErrInvalidDB
			}
			return RecordEntityCounts(db, logger)
		},
	}
}

// RecordEntityCounts counts users, profiles and posts and sets metrics.Entities.
func RecordEntityCounts(db *gorm.DB, logger *slog.Logger) error {
	models := []struct {
		kind  string
		model any
	}{
		{"users", &users.User{}},
		{"profiles", &profiles.Profile{}},
		{"posts", &posts.Post{}},
	}

	for _, m := range models {
		var count int64
		if err := db.Model(m.model).Count(&count).Error; err != nil {
			return err
		}
		metrics.Entities.WithLabelValues(m.kind).Set(float64(count))
		logger.Debug("Entity count", slog.String("kind", m.kind), slog.Int64("count", count))
	}
	return nil
}
