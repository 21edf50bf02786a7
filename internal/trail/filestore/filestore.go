// Package filestore persists the trail as line-delimited JSON: one
// entry per line, written with a single O_APPEND write so a concurrent
// reader never sees a torn entry.
package filestore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/davidahmann/jtrail/internal/trail"
)

type Store struct {
	mu   sync.Mutex
	path string
}

// Open creates the trail file if it does not exist and returns a store
// over it.
func Open(path string) (*Store, error) {
	// #nosec G304 -- path is operator-configured.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open trail file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return &Store{path: path}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

func (s *Store) Append(entry trail.StoredRecord) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	// #nosec G304 -- path is operator-configured.
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (s *Store) ReadAll() ([]trail.StoredRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// #nosec G304 -- path is operator-configured.
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []trail.StoredRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry trail.StoredRecord
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("trail file line %d: %w", lineNo, err)
		}
		out = append(out, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
