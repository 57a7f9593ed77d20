// Package monitoring runs background maintenance for the post service.
package monitoring

import (
	"github.com/postdrop/postdrop-be/internal/cache"
	"github.com/postdrop/postdrop-be/internal/filestore"
	"github.com/postdrop/postdrop-be/internal/storage"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Janitor periodically purges expired cache entries and reports blobs on
// disk that no post row references. Orphans are only reported, never
// deleted; reconciling them is an operator decision.
type Janitor struct {
	postCache *cache.PostCache
	store     storage.PostStore
	files     *filestore.DiskStore
	cron      *cron.Cron
}

// NewJanitor creates a new Janitor.
func NewJanitor(postCache *cache.PostCache, store storage.PostStore, files *filestore.DiskStore) *Janitor {
	return &Janitor{
		postCache: postCache,
		store:     store,
		files:     files,
		cron:      cron.New(),
	}
}

// Run registers the maintenance jobs and starts the scheduler.
func (j *Janitor) Run() {
	log.Info().Msg("Starting maintenance janitor")

	j.cron.AddFunc("* * * * *", j.purgeCache)
	j.cron.AddFunc("*/10 * * * *", j.sweepOrphans)
	j.cron.Start()
}

// Stop halts the scheduler, waiting for a running job to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("Maintenance janitor stopped")
}

func (j *Janitor) purgeCache() {
	if purged := j.postCache.PurgeExpired(); purged > 0 {
		log.Info().Int("purged", purged).Msg("Dropped expired cache entries")
	}
}

// sweepOrphans flags blobs that exist on disk without a referencing row.
// Rows without blobs are caught at delete time instead.
func (j *Janitor) sweepOrphans() {
	referenced, err := j.store.ListFileNames()
	if err != nil {
		log.Error().Err(err).Msg("Orphan sweep: could not list file names")
		return
	}
	known := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		known[name] = struct{}{}
	}

	onDisk, err := j.files.ListIDs()
	if err != nil {
		log.Error().Err(err).Msg("Orphan sweep: could not list stored blobs")
		return
	}

	for _, id := range onDisk {
		if _, ok := known[id]; !ok {
			log.Warn().Str("file_id", id).Str("path", j.files.Path(id)).
				Msg("Orphaned blob: no post row references this file")
		}
	}
}
