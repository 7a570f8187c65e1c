// Package diag reads the structured validation messages produced by the
// graphics debug layer.
package diag

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// NoMessage is reported for entries without a description.
const NoMessage = "No message was found"

// Message is a raw entry of the backend info queue.
type Message struct {
	ID          int32
	Category    int32
	Severity    int32
	Description []byte
}

// Queue is the backend info queue. Indices are stable and grow monotonically.
type Queue interface {
	NumStoredMessages() uint64
	Message(index uint64) (Message, error)
}

// Record is a decoded diagnostic message.
type Record struct {
	ID          int32
	Category    string
	Severity    string
	Description string
}

func (r Record) String() string {
	return fmt.Sprintf("[CATEGORY] %s [SEVERITY] %s [ID] %d\n[DESCRIPTION] %s",
		r.Category, r.Severity, r.ID, r.Description)
}

var categories = [...]string{
	"UNKNOWN",
	"MISCELLANEOUS",
	"INITIALIZATION",
	"CLEANUP",
	"COMPILATION",
	"STATE_CREATION",
	"STATE_SETTING",
	"STATE_GETTING",
	"RESOURCE_MANIPULATION",
	"EXECUTION",
	"SHADER",
}

var severities = [...]string{
	"CORRUPTION",
	"ERROR",
	"WARNING",
	"INFO",
	"MESSAGE",
}

// CategoryName returns the symbolic category, or its number if unknown.
func CategoryName(c int32) string {
	if c >= 0 && int(c) < len(categories) {
		return categories[c]
	}
	return strconv.Itoa(int(c))
}

// SeverityName returns the symbolic severity, or its number if unknown.
func SeverityName(s int32) string {
	if s >= 0 && int(s) < len(severities) {
		return severities[s]
	}
	return strconv.Itoa(int(s))
}

// describe decodes a NUL terminated description. Invalid UTF-8 is
// replaced and annotated instead of failing.
func describe(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	if len(b) == 0 {
		return NoMessage
	}
	if !utf8.Valid(b) {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError)) + " (lossy)"
	}
	return string(b)
}

// Log tracks which queue entries were already reported.
type Log struct {
	queue Queue
	start uint64
}

// NewLog returns a log reporting every message stored in q.
func NewLog(q Queue) *Log {
	return &Log{queue: q}
}

// Mark moves the start index past every message stored so far.
func (l *Log) Mark() {
	l.start = l.queue.NumStoredMessages()
}

// Messages returns the messages stored since the last Mark, one per id.
// It does not consume anything: calling it again without a Mark in
// between yields the same records.
func (l *Log) Messages() ([]Record, error) {
	n := l.queue.NumStoredMessages()
	if n <= l.start {
		return nil, nil
	}
	var (
		records []Record
		seen    = make(map[int32]struct{})
	)
	for i := l.start; i < n; i++ {
		m, err := l.queue.Message(i)
		if err != nil {
			return records, fmt.Errorf("reading diagnostic message %d: %w", i, err)
		}
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		records = append(records, Record{
			ID:          m.ID,
			Category:    CategoryName(m.Category),
			Severity:    SeverityName(m.Severity),
			Description: describe(m.Description),
		})
	}
	return records, nil
}

// Strings renders the pending records one per line. The fallback line is
// appended when there is nothing to report.
func (l *Log) Strings() ([]string, error) {
	records, err := l.Messages()
	lines := make([]string, 0, len(records)+1)
	for _, r := range records {
		lines = append(lines, r.String())
	}
	if len(lines) == 0 {
		lines = append(lines, "[DESCRIPTION] "+NoMessage)
	}
	return lines, err
}
