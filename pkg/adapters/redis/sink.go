package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// entryField is the stream field holding the JSON-encoded entry.
const entryField = "entry"

// Sink implements ports.LogSink by appending entries to a Redis stream and
// publishing them on a channel, so remote panels can follow a run live.
type Sink struct {
	client  *backend.Client
	stream  string
	channel string
	maxLen  int64
	logger  *slog.Logger
}

// Option configures a Sink.
type Option func(*Sink)

// WithStream sets the stream key.
func WithStream(key string) Option {
	return func(s *Sink) {
		s.stream = key
	}
}

// WithChannel sets the pub/sub channel. An empty channel disables publishing.
func WithChannel(name string) Option {
	return func(s *Sink) {
		s.channel = name
	}
}

// WithMaxLen caps the stream length; 0 keeps everything.
func WithMaxLen(n int64) Option {
	return func(s *Sink) {
		s.maxLen = n
	}
}

// WithLogger sets where delivery failures are reported.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Sink connected to the given server.
func New(address, password string, db int, opts ...Option) *Sink {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Sink from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Sink {
	s := &Sink{
		client:  client,
		stream:  "weft:log",
		channel: "weft:log:live",
		maxLen:  10000,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Log appends the entry to the stream and publishes it. Failures are logged, never returned.
func (s *Sink) Log(ctx context.Context, e domain.LogEntry) {
	data, err := json.Marshal(e)
	if err != nil {
		s.logger.WarnContext(ctx, "log entry not encodable", "err", err)
		return
	}

	args := &backend.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Values: map[string]any{entryField: data},
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		s.logger.WarnContext(ctx, "redis stream append failed", "stream", s.stream, "err", err)
	}

	if s.channel == "" {
		return
	}
	if err := s.client.Publish(ctx, s.channel, data).Err(); err != nil {
		s.logger.WarnContext(ctx, "redis publish failed", "channel", s.channel, "err", err)
	}
}

// Tail returns up to n of the most recent entries, oldest first.
func (s *Sink) Tail(ctx context.Context, n int64) ([]domain.LogEntry, error) {
	msgs, err := s.client.XRevRangeN(ctx, s.stream, "+", "-", n).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read stream %s: %w", s.stream, err)
	}

	out := make([]domain.LogEntry, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		e, err := decodeEntry(msgs[i].Values[entryField])
		if err != nil {
			return nil, fmt.Errorf("failed to decode stream entry %s: %w", msgs[i].ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Subscribe delivers live entries until ctx is canceled.
func (s *Sink) Subscribe(ctx context.Context) (<-chan domain.LogEntry, error) {
	if s.channel == "" {
		return nil, fmt.Errorf("publishing disabled: no channel configured")
	}
	sub := s.client.Subscribe(ctx, s.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.channel, err)
	}

	out := make(chan domain.LogEntry)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e domain.LogEntry
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					s.logger.Debug("dropping undecodable live entry", "err", err)
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the underlying client.
func (s *Sink) Close() error {
	return s.client.Close()
}

func decodeEntry(v any) (domain.LogEntry, error) {
	var e domain.LogEntry
	var raw []byte
	switch val := v.(type) {
	case string:
		raw = []byte(val)
	case []byte:
		raw = val
	default:
		return e, fmt.Errorf("unexpected field type %T", v)
	}
	err := json.Unmarshal(raw, &e)
	return e, err
}
