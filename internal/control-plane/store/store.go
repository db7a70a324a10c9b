package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

type opType string

const (
	opPut    opType = "put"
	opDelete opType = "delete"
)

const walFileName = "store.wal"

type walRecord struct {
	Op    opType `json:"op"`
	Key   string `json:"key"`
	Value []byte `json:"value,omitempty"`
}

// Store is a single-node, disk-backed key-value store. Every mutation is
// appended to a JSON-lines WAL and fsynced before it becomes visible.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte

	walPath string
	walFile *os.File
	// walRecords counts lines in the WAL; Compact resets it.
	walRecords int
}

// New opens the store under dataDir, replaying any existing WAL.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	s := &Store{
		data:    make(map[string][]byte),
		walPath: filepath.Join(dataDir, walFileName),
	}

	if err := s.replayWAL(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(s.walPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open wal append: %w", err)
	}
	s.walFile = f
	return s, nil
}

// replayWAL rebuilds in-memory state from the WAL, if there is one.
func (s *Store) replayWAL() error {
	f, err := os.Open(s.walPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open wal: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec walRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return fmt.Errorf("decode wal record %d: %w", s.walRecords+1, err)
		}

		switch rec.Op {
		case opPut:
			s.data[rec.Key] = append([]byte(nil), rec.Value...)
		case opDelete:
			delete(s.data, rec.Key)
		default:
			return fmt.Errorf("unknown wal op: %s", rec.Op)
		}
		s.walRecords++
	}
	return scanner.Err()
}

// Put sets a key to a value (and persists it).
func (s *Store) Put(key string, value []byte) error {
	if key == "" {
		return errors.New("empty key")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.appendRecord(walRecord{Op: opPut, Key: key, Value: value}); err != nil {
		return err
	}
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Get returns a copy of the value for a key.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// Delete removes a key (and persists it). Deleting a missing key is a no-op
// that is not logged.
func (s *Store) Delete(key string) error {
	if key == "" {
		return errors.New("empty key")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return nil
	}
	if err := s.appendRecord(walRecord{Op: opDelete, Key: key}); err != nil {
		return err
	}
	delete(s.data, key)
	return nil
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

// Keys returns a sorted snapshot of all keys.
func (s *Store) Keys() []string {
	return s.KeysWithPrefix("")
}

// KeysWithPrefix returns a sorted snapshot of the keys starting with prefix.
func (s *Store) KeysWithPrefix(prefix string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// WALRecords returns the number of records currently in the WAL.
func (s *Store) WALRecords() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.walRecords
}

// Compact rewrites the WAL so it holds exactly one put per live key. The new
// log is written beside the old one and renamed over it.
func (s *Store) Compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.walFile == nil {
		return errors.New("store closed")
	}

	tmpPath := s.walPath + ".compact"
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	if err := s.writeCompacted(tmpPath, keys); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := s.walFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close wal: %w", err)
	}
	s.walFile = nil

	if err := os.Rename(tmpPath, s.walPath); err != nil {
		_ = os.Remove(tmpPath)
		// Keep appending to the old log if it can still be opened.
		if f, openErr := os.OpenFile(s.walPath, os.O_WRONLY|os.O_APPEND, 0o644); openErr == nil {
			s.walFile = f
		}
		return fmt.Errorf("replace wal: %w", err)
	}
	f, err := os.OpenFile(s.walPath, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reopen wal append: %w", err)
	}
	s.walFile = f
	s.walRecords = len(keys)
	return nil
}

// writeCompacted writes one put record per key to path and syncs it.
func (s *Store) writeCompacted(path string, keys []string) error {
	tmp, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create compacted wal: %w", err)
	}

	w := bufio.NewWriter(tmp)
	for _, k := range keys {
		b, err := json.Marshal(walRecord{Op: opPut, Key: k, Value: s.data[k]})
		if err != nil {
			_ = tmp.Close()
			return fmt.Errorf("marshal wal record: %w", err)
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("write compacted wal: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush compacted wal: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync compacted wal: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close compacted wal: %w", err)
	}
	return nil
}

// Close closes the underlying WAL file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.walFile != nil {
		if err := s.walFile.Close(); err != nil {
			return err
		}
		s.walFile = nil
	}
	return nil
}

// appendRecord writes a single WAL record and fsyncs it. Callers hold s.mu.
func (s *Store) appendRecord(rec walRecord) error {
	if s.walFile == nil {
		return errors.New("store closed")
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal wal record: %w", err)
	}
	b = append(b, '\n')

	if _, err := s.walFile.Write(b); err != nil {
		return fmt.Errorf("write wal: %w", err)
	}
	if err := s.walFile.Sync(); err != nil {
		return fmt.Errorf("sync wal: %w", err)
	}
	s.walRecords++
	return nil
}
