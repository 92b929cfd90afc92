package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/your-org/donate-storefront/internal/pkg/logger"
)

// LogsKey holds the rolling log buffer
const LogsKey = "app_logs"

// LogSink mirrors the log buffer to a capped Redis list. It implements logger.Sink.
type LogSink struct {
	client *Client
	max    int64
}

// NewLogSink creates a sink keeping at most max entries
func NewLogSink(client *Client, max int) *LogSink {
	if max <= 0 {
		max = logger.DefaultBufferSize
	}
	return &LogSink{client: client, max: int64(max)}
}

// Push appends an entry and trims the list to the newest max entries
func (s *LogSink) Push(ctx context.Context, entry logger.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode log entry: %w", err)
	}

	pipe := s.client.Redis.Pipeline()
	pipe.RPush(ctx, LogsKey, data)
	pipe.LTrim(ctx, LogsKey, -s.max, -1)
	_, err = pipe.Exec(ctx)
	return err
}

// Load returns the stored entries oldest first, skipping undecodable ones
func (s *LogSink) Load(ctx context.Context) ([]logger.Entry, error) {
	values, err := s.client.Redis.LRange(ctx, LogsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load logs: %w", err)
	}

	entries := make([]logger.Entry, 0, len(values))
	for _, value := range values {
		var entry logger.Entry
		if err := json.Unmarshal([]byte(value), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Clear removes the stored entries
func (s *LogSink) Clear(ctx context.Context) error {
	return s.client.Redis.Del(ctx, LogsKey).Err()
}
