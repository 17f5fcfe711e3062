package logging

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RotatingJSONLStore writes JSONL through lumberjack so the allocation log
// of a long running service is rotated by size and age.
type RotatingJSONLStore struct {
	mu   sync.Mutex
	path string
	w    *lumberjack.Logger
}

// NewRotatingJSONLStore sizes are in megabytes, ages in days. Zero values
// keep lumberjack's defaults.
func NewRotatingJSONLStore(path string, maxSizeMB, maxBackups, maxAgeDays int) (*RotatingJSONLStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	return &RotatingJSONLStore{
		path: path,
		w: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		},
	}, nil
}

func (s *RotatingJSONLStore) Append(_ context.Context, rec LogRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(append(b, '\n'))
	return err
}

// Query reads the backups oldest first, then the active file.
func (s *RotatingJSONLStore) Query(_ context.Context, q LogQuery) ([]LogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	backups, err := s.backups()
	if err != nil {
		return nil, err
	}
	return readFiles(q, append(backups, s.path)...)
}

// backups lists files named <base>-<timestamp><ext>. The timestamp format
// sorts lexically.
func (s *RotatingJSONLStore) backups() ([]string, error) {
	ext := filepath.Ext(s.path)
	prefix := strings.TrimSuffix(s.path, ext) + "-"
	files, err := filepath.Glob(prefix + "*" + ext)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (s *RotatingJSONLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Close()
}
