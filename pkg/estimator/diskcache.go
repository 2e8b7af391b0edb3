package estimator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"smartsearch/pkg/statistics"
)

// diskCache persists the last statistics snapshot as a JSON file so an
// offline client still has numbers to estimate with. Reads are
// stale-allowed; the snapshot's own generated_at dates it.
type diskCache struct {
	path string
}

func newDiskCache(dir string) *diskCache {
	return &diskCache{path: filepath.Join(dir, "statistics.json")}
}

func (d *diskCache) load() (*statistics.Statistics, error) {
	raw, err := os.ReadFile(d.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read statistics cache: %w", err)
	}
	var snap statistics.Statistics
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode statistics cache: %w", err)
	}
	return &snap, nil
}

func (d *diskCache) save(snap *statistics.Statistics) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode statistics cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(d.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write statistics cache: %w", err)
	}
	return os.Rename(tmp, d.path)
}
