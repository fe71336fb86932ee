package persist

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/peterbourgon/diskv/v3"
)

// DiskStore keeps one file per key under a base directory.
type DiskStore struct {
	d        *diskv.Diskv
	basePath string
}

func NewDiskStore(basePath string) (*DiskStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	d := diskv.New(diskv.Options{
		BasePath:     basePath,
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 1024 * 1024, // 1MB
		FilePerm:     0o644,
		PathPerm:     0o755,
	})
	return &DiskStore{d: d, basePath: basePath}, nil
}

func (s *DiskStore) BasePath() string {
	return s.basePath
}

func (s *DiskStore) Save(key string, v any) error {
	if key == "" {
		return ErrEmptyKey
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.d.Write(key, b); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *DiskStore) Load(key string, v any) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	if !s.d.Has(key) {
		return false, nil
	}
	b, err := s.d.Read(key)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *DiskStore) Delete(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	return s.d.Erase(key)
}
