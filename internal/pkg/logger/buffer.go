package logger

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBufferSize is the number of entries kept when no size is configured
const DefaultBufferSize = 1000

// Entry is one buffered log record
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Category  string                 `json:"category"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Sink mirrors buffered entries to durable storage
type Sink interface {
	Push(ctx context.Context, entry Entry) error
	Load(ctx context.Context) ([]Entry, error)
	Clear(ctx context.Context) error
}

// Filter narrows Buffer.Entries. Level keeps entries at least as severe;
// a zero Limit returns everything.
type Filter struct {
	Level    *logrus.Level
	Category string
	Limit    int
}

// Buffer is a logrus hook keeping the most recent entries in memory
type Buffer struct {
	mu      sync.RWMutex
	entries []Entry
	size    int
	sink    Sink
	timeout time.Duration
}

// NewBuffer creates a capped buffer; sink may be nil
func NewBuffer(size int, sink Sink) *Buffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Buffer{
		entries: make([]Entry, 0, size),
		size:    size,
		sink:    sink,
		timeout: 2 * time.Second,
	}
}

// Restore loads previously persisted entries from the sink
func (b *Buffer) Restore(ctx context.Context) error {
	if b.sink == nil {
		return nil
	}
	entries, err := b.sink.Load(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(entries) > b.size {
		entries = entries[len(entries)-b.size:]
	}
	b.entries = append(b.entries[:0], entries...)
	return nil
}

// Levels implements logrus.Hook
func (b *Buffer) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook
func (b *Buffer) Fire(e *logrus.Entry) error {
	entry := Entry{
		Timestamp: e.Time.UTC(),
		Level:     e.Level.String(),
		Message:   e.Message,
	}
	for key, value := range e.Data {
		if key == FieldCategory {
			entry.Category, _ = value.(string)
			continue
		}
		if entry.Data == nil {
			entry.Data = make(map[string]interface{}, len(e.Data))
		}
		if err, ok := value.(error); ok {
			value = err.Error()
		}
		entry.Data[key] = value
	}
	if entry.Category == "" {
		entry.Category = "APP"
	}

	b.append(entry)

	if b.sink == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	return b.sink.Push(ctx, entry)
}

func (b *Buffer) append(entry Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) >= b.size {
		copy(b.entries, b.entries[len(b.entries)-b.size+1:])
		b.entries = b.entries[:b.size-1]
	}
	b.entries = append(b.entries, entry)
}

// Len returns the number of buffered entries
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Entries returns a copy of the buffered entries matching f, oldest first
func (b *Buffer) Entries(f Filter) []Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]Entry, 0, len(b.entries))
	for _, entry := range b.entries {
		if f.Level != nil {
			level, err := logrus.ParseLevel(entry.Level)
			if err != nil || level > *f.Level {
				continue
			}
		}
		if f.Category != "" && entry.Category != f.Category {
			continue
		}
		result = append(result, entry)
	}

	if f.Limit > 0 && len(result) > f.Limit {
		result = result[len(result)-f.Limit:]
	}
	return result
}

// Clear drops all entries from memory and the sink
func (b *Buffer) Clear(ctx context.Context) error {
	b.mu.Lock()
	b.entries = b.entries[:0]
	b.mu.Unlock()

	if b.sink == nil {
		return nil
	}
	return b.sink.Clear(ctx)
}

// Export returns all entries as indented JSON
func (b *Buffer) Export() ([]byte, error) {
	return json.MarshalIndent(b.Entries(Filter{}), "", "  ")
}
