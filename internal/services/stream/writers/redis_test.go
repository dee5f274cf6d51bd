package writers

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/kp666/twitter-stream/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisStreamWriterCapsList(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	w := NewRedisStreamWriter(ctx, client, models.RedisConfig{ListKey: "tweets", MaxLen: 2}, "test")
	for _, line := range []string{"a", "b", "c"} {
		if err := w.Write([]byte(line)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if err := w.Flush(); err != nil {
			t.Fatalf("Flush() error = %v", err)
		}
	}

	got, err := mr.List("tweets")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !slices.Equal(got, []string{"b", "c"}) {
		t.Fatalf("list = %q, want [b c]", got)
	}
	if w.Lines() != 3 {
		t.Fatalf("Lines() = %d, want 3", w.Lines())
	}
}

func TestRedisStreamWriterQueuesUntilFlush(t *testing.T) {
	mr, client := newTestRedis(t)
	w := NewRedisStreamWriter(context.Background(), client, models.RedisConfig{ListKey: "tweets"}, "test")

	w.Write([]byte("a"))
	w.Write([]byte("b"))
	if mr.Exists("tweets") {
		t.Fatal("list written before Flush")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got, _ := mr.List("tweets")
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("list = %q, want [a b]", got)
	}
}

func TestRedisStreamWriterPublishes(t *testing.T) {
	_, client := newTestRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "tweets")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	w := NewRedisStreamWriter(ctx, client, models.RedisConfig{Channel: "tweets"}, "test")
	if err := w.Write([]byte("{\"id\":1}")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	select {
	case msg := <-sub.Channel():
		if msg.Payload != "{\"id\":1}" {
			t.Fatalf("payload = %q", msg.Payload)
		}
	case <-ctx.Done():
		t.Fatal("no message published")
	}
}

func TestRedisStreamWriterFailure(t *testing.T) {
	mr, client := newTestRedis(t)
	w := NewRedisStreamWriter(context.Background(), client, models.RedisConfig{ListKey: "tweets"}, "test")

	mr.Close()
	w.Write([]byte("a"))
	if err := w.Flush(); err == nil {
		t.Fatal("Flush() succeeded against a stopped server")
	}
	if w.Lines() != 0 {
		t.Fatalf("Lines() = %d, want 0", w.Lines())
	}
}
