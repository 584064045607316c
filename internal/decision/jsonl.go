package decision

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/ararabots/vsscore/internal/world"
)

// maxLine bounds one JSONL snapshot.
const maxLine = 1 << 20

// JSONLSource replays newline-delimited JSON snapshots. Fields missing from
// a line keep the values of world.New, so an absent ball is unseen rather
// than at the origin. Blank lines and lines starting with '#' are skipped.
type JSONLSource struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
	line    int
	closed  bool
}

func NewJSONLSource(r io.Reader) *JSONLSource {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &JSONLSource{scanner: s}
}

// Snapshot returns the next snapshot, or ErrSourceClosed at end of input.
// A malformed line is reported with its line number and skipped.
func (s *JSONLSource) Snapshot(ctx context.Context) (*world.BlackBoard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSourceClosed
	}
	for s.scanner.Scan() {
		s.line++
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		bb := world.New()
		if err := json.Unmarshal(line, bb); err != nil {
			return nil, fmt.Errorf("decision: jsonl line %d: %w", s.line, err)
		}
		if !bb.Side.Valid() {
			return nil, fmt.Errorf("decision: jsonl line %d: invalid side %d", s.line, int(bb.Side))
		}
		return bb, nil
	}
	s.closed = true
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("decision: jsonl read: %w", err)
	}
	return nil, ErrSourceClosed
}
