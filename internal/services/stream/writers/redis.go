package writers

import (
	"context"

	"github.com/kp666/twitter-stream/internal/models"
	"github.com/kp666/twitter-stream/internal/services/stream/contracts"

	"github.com/redis/go-redis/v9"
)

var _ contracts.StreamWriter = (*RedisStreamWriter)(nil)

// RedisStreamWriter appends lines to a capped list and publishes them on a
// channel. Commands are queued on a pipeline and sent on Flush.
type RedisStreamWriter struct {
	ctx       context.Context
	pipe      redis.Pipeliner
	config    models.RedisConfig
	sessionID string
	queued    int
	lines     int64
}

// NewRedisStreamWriter creates a writer bound to ctx for all commands
func NewRedisStreamWriter(ctx context.Context, client redis.Cmdable, config models.RedisConfig, sessionID string) *RedisStreamWriter {
	return &RedisStreamWriter{
		ctx:       ctx,
		pipe:      client.Pipeline(),
		config:    config,
		sessionID: sessionID,
	}
}

// Write queues the line
func (w *RedisStreamWriter) Write(line []byte) error {
	payload := string(line)
	if w.config.ListKey != "" {
		w.pipe.RPush(w.ctx, w.config.ListKey, payload)
		if w.config.MaxLen > 0 {
			w.pipe.LTrim(w.ctx, w.config.ListKey, -w.config.MaxLen, -1)
		}
	}
	if w.config.Channel != "" {
		w.pipe.Publish(w.ctx, w.config.Channel, payload)
	}
	w.queued++
	return nil
}

// Flush sends the queued commands
func (w *RedisStreamWriter) Flush() error {
	if w.queued == 0 {
		return nil
	}
	n := w.queued
	w.queued = 0

	if _, err := w.pipe.Exec(w.ctx); err != nil {
		return contracts.NewInternalError(w.sessionID, "redis pipeline failed", err)
	}
	w.lines += int64(n)
	return nil
}

// Close sends anything still queued
func (w *RedisStreamWriter) Close() error {
	return w.Flush()
}

// Lines returns the number of lines sent
func (w *RedisStreamWriter) Lines() int64 {
	return w.lines
}
