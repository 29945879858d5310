package service

import (
	"os"
	"time"

	"adboard/utils"
)

// FileStore extends the image contract with enumeration, for the sweeper.
type FileStore interface {
	ImageStore
	List() ([]string, error)
	Stat(identifier string) (os.FileInfo, error)
}

// SweepOrphans deletes stored files no live post references. Files younger
// than grace are kept so uploads waiting for their post survive the sweep.
// Best-effort: errors are logged and the sweep moves on.
func SweepOrphans(posts PostStore, files FileStore, grace time.Duration) int {
	all, err := posts.List("")
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("orphan sweep: list posts failed: %v", err)
		}
		return 0
	}
	referenced := make(map[string]bool)
	for _, p := range all {
		for _, img := range p.Images {
			referenced[img] = true
		}
	}

	ids, err := files.List()
	if err != nil {
		if utils.Sugar != nil {
			utils.Sugar.Warnf("orphan sweep: list files failed: %v", err)
		}
		return 0
	}

	removed := 0
	cutoff := time.Now().Add(-grace)
	for _, id := range ids {
		if referenced[id] {
			continue
		}
		info, err := files.Stat(id)
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		files.Delete(id)
		removed++
	}
	if removed > 0 && utils.Sugar != nil {
		utils.Sugar.Infof("orphan sweep removed %d file(s)", removed)
	}
	return removed
}

// StartOrphanSweeper launches a background goroutine that periodically
// reclaims orphaned image files.
func StartOrphanSweeper(posts PostStore, files FileStore, interval, grace time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing immediately at startup
			time.Sleep(interval)
			SweepOrphans(posts, files, grace)
		}
	}()
}
