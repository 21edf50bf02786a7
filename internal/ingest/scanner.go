// Package ingest decodes line-delimited candidate records from a
// caller-supplied stream: one JSON object per line, blank lines
// skipped, decode errors reported with their line number.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/davidahmann/jtrail/pkg/types"
)

type Scanner struct {
	scanner   *bufio.Scanner
	candidate types.Candidate
	line      int
	err       error
}

func NewScanner(r io.Reader) *Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Scanner{scanner: s}
}

// Scan advances to the next candidate line. It returns false at end of
// input or on the first malformed line; Err distinguishes the two.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for s.scanner.Scan() {
		s.line++
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var cand types.Candidate
		if err := json.Unmarshal(line, &cand); err != nil {
			s.err = fmt.Errorf("line %d: %w", s.line, err)
			return false
		}
		s.candidate = cand
		return true
	}
	s.err = s.scanner.Err()
	return false
}

// Candidate returns the candidate decoded by the last successful Scan.
func (s *Scanner) Candidate() types.Candidate { return s.candidate }

// Line returns the input line number of the last candidate.
func (s *Scanner) Line() int { return s.line }

func (s *Scanner) Err() error { return s.err }
