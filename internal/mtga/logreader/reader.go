package logreader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// LogEntry represents one line from the Player.log file.
// The log mixes plain-text prefixes and timestamps with JSON payloads.
type LogEntry struct {
	Raw    string // The original raw line from the log
	Prefix string // Text before the JSON payload, if any
	JSON   string // The JSON payload starting at the first '{', if any
	Line   int    // 1-based line number
}

// HasJSON reports whether the line carries a JSON object.
func (e *LogEntry) HasJSON() bool {
	return e.JSON != ""
}

// Reader reads MTGA Player.log files line by line. Lines may be arbitrarily
// long; MTGA writes whole collections on a single line.
type Reader struct {
	closer io.Closer
	br     *bufio.Reader
	line   int
}

// NewReader creates a Reader for the log file at path.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	r := NewStreamReader(file)
	r.closer = file
	return r, nil
}

// NewStreamReader creates a Reader over an arbitrary stream.
func NewStreamReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 64*1024)}
}

// Close closes the underlying log file, if the reader opened one.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// ReadEntry reads the next log entry.
// It returns io.EOF when there are no more entries to read.
func (r *Reader) ReadEntry() (*LogEntry, error) {
	line, err := r.br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read log line %d: %w", r.line+1, err)
	}
	if line == "" && errors.Is(err, io.EOF) {
		return nil, io.EOF
	}

	r.line++
	line = strings.TrimRight(line, "\r\n")
	entry := &LogEntry{Raw: line, Line: r.line}
	if i := strings.Index(line, "{"); i >= 0 {
		entry.Prefix = strings.TrimSpace(line[:i])
		entry.JSON = line[i:]
	}

	return entry, nil
}
