package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/bluewater-labs/ecoindex/internal/model"
)

const (
	rawFileName       = "water_samples.json"
	processedFileName = "processed_water_samples.json"
)

// FileStore keeps samples in two flat JSON arrays on disk. Appends are
// read-modify-write guarded by an in-process mutex and committed with a
// temp-file rename, so a crashed write never truncates the store. Writers in
// other processes are not coordinated; deployments needing that should use
// the sqlite or postgres driver.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFile creates a FileStore rooted at dir ("." when empty).
func NewFile(dir string) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{dir: dir}
}

func (f *FileStore) rawPath() string       { return filepath.Join(f.dir, rawFileName) }
func (f *FileStore) processedPath() string { return filepath.Join(f.dir, processedFileName) }

func (f *FileStore) AddSample(ctx context.Context, s model.Sample) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var samples []model.Sample
	if err := readJSON(f.rawPath(), &samples); err != nil {
		return err
	}
	samples = append(samples, s)
	return writeJSON(f.rawPath(), samples)
}

func (f *FileStore) ListSamples(ctx context.Context) ([]model.Sample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var samples []model.Sample
	if err := readJSON(f.rawPath(), &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

func (f *FileStore) SaveProcessed(ctx context.Context, ps []model.ProcessedSample) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ps == nil {
		ps = []model.ProcessedSample{}
	}
	return writeJSON(f.processedPath(), ps)
}

func (f *FileStore) ListProcessed(ctx context.Context) ([]model.ProcessedSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var ps []model.ProcessedSample
	if err := readJSON(f.processedPath(), &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// Migrate ensures the store directory exists.
func (f *FileStore) Migrate(ctx context.Context) error {
	return eris.Wrap(os.MkdirAll(f.dir, 0o755), "store: create dir")
}

func (f *FileStore) Close() error { return nil }

// readJSON loads a JSON array file into dst; a missing file leaves dst empty.
func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return eris.Wrapf(err, "store: read %s", path)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return eris.Wrapf(err, "store: parse %s", path)
	}
	return nil
}

// writeJSON writes dst as indented JSON via a temp file and rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "store: marshal %s", path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return eris.Wrap(err, "store: create temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "store: write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "store: close %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return eris.Wrapf(err, "store: commit %s", path)
	}
	return nil
}
