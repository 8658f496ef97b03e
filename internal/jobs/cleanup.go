package jobs

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/rs/zerolog"
)

type CleanupStats struct {
	Expired int
	Missing int
	Errors  int
}

func (s CleanupStats) String() string {
	return fmt.Sprintf("expired=%d missing=%d errors=%d", s.Expired, s.Missing, s.Errors)
}

// Cleanup deletes managed workbooks whose expiry has passed and marks their
// jobs expired. Externally written files only lose their record. A failure
// on one file is logged and does not stop the sweep.
func Cleanup(db *DB, store *FileStore, now time.Time, log zerolog.Logger) (CleanupStats, error) {
	var stats CleanupStats

	files, err := db.ExpiredFiles(now)
	if err != nil {
		return stats, err
	}

	for _, f := range files {
		if f.StorageType == StorageLocal {
			if err := store.Remove(f.Path); err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					stats.Errors++
					log.Error().Err(err).Str("job", f.JobID).Msg("remove expired file")
					continue
				}
				stats.Missing++
				log.Warn().Str("path", f.Path).Msg("expired file already gone")
			}
		}

		if err := db.ExpireFile(f); err != nil {
			stats.Errors++
			log.Error().Err(err).Str("job", f.JobID).Msg("mark job expired")
			continue
		}
		stats.Expired++
		log.Debug().Str("job", f.JobID).Str("path", f.Path).Msg("expired")
	}

	log.Info().Int("expired", stats.Expired).Int("errors", stats.Errors).Msg("cleanup completed")
	return stats, nil
}
