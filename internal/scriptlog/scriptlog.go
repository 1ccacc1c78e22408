// Session console for script output. console_log and the console.* script
// functions append here; the sink is fire-and-forget and never fails the
// calling script.

package scriptlog

import (
	"strings"
	"sync"
	"time"

	"apitest/internal/ringbuffer"
)

const defaultLimit = 1000

// Entry is one console line produced by a script.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Source    string `json:"source"`
	Message   string `json:"message"`
}

// Buffer is a bounded, concurrency-safe console log.
type Buffer struct {
	mu      sync.Mutex
	entries *ringbuffer.Buffer[Entry]
}

// New creates a Buffer retaining at most limit entries; limit <= 0 uses the
// default.
func New(limit int) *Buffer {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Buffer{entries: ringbuffer.New[Entry](limit)}
}

// Append records one console line. Empty messages are dropped.
func (b *Buffer) Append(level, source, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	if source == "" {
		source = "script"
	}
	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     strings.ToLower(level),
		Source:    source,
		Message:   message,
	}
	b.mu.Lock()
	b.entries.Push(entry)
	b.mu.Unlock()
}

// Entries returns a copy of the retained log, oldest first.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entries.Items()
}

// Clear wipes the console buffer.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.entries.Clear()
	b.mu.Unlock()
}
