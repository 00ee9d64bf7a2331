package linkverify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/studysite/internal/config"
	ferrors "git.home.luguber.info/inful/studysite/internal/foundation/errors"
)

// NATSClient is a Cache backed by a JetStream key-value bucket. Broken link
// events are published to a JetStream subject.
type NATSClient struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	kv      jetstream.KeyValue
	subject string
	bucket  string
}

// NewNATSClient connects to the configured server and opens (or creates)
// the cache bucket.
func NewNATSClient(ctx context.Context, cfg config.NATSConfig) (*NATSClient, error) {
	if !cfg.Enabled() {
		return nil, ferrors.ConfigError("link_verification.nats.url is not set").Build()
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("studysite-linkverify"))
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to connect to NATS").
			WithContext("url", cfg.URL).
			Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to create JetStream context").Build()
	}

	client := &NATSClient{conn: conn, js: js, subject: cfg.Subject, bucket: cfg.KVBucket}
	if err := client.initKVBucket(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	slog.Info("NATS client initialized for link verification",
		"url", cfg.URL,
		"subject", cfg.Subject,
		"kv_bucket", cfg.KVBucket)
	return client, nil
}

func (c *NATSClient) initKVBucket(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	kv, err := c.js.KeyValue(ctx, c.bucket)
	if err == nil {
		c.kv = kv
		return nil
	}

	kv, err = c.js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      c.bucket,
		Description: "External link verification cache",
		MaxBytes:    16 * 1024 * 1024,
		History:     1,
	})
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNetwork, "failed to create KV bucket").
			WithContext("bucket", c.bucket).
			Build()
	}
	c.kv = kv
	slog.Info("Created KV bucket for link cache", "bucket", c.bucket)
	return nil
}

// PublishBrokenLink publishes a broken link event to the configured subject.
func (c *NATSClient) PublishBrokenLink(ctx context.Context, event *BrokenLinkEvent) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := c.js.Publish(ctx, c.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	slog.Debug("Published broken link event", "url", event.URL, "sources", len(event.Sources))
	return nil
}

// Get returns the cached result for url, or nil when there is none.
func (c *NATSClient) Get(ctx context.Context, url string) (*CacheEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	entry, err := c.kv.Get(ctx, cacheKey(url))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	var cached CacheEntry
	if err := json.Unmarshal(entry.Value(), &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return &cached, nil
}

// Put stores a verification result.
func (c *NATSClient) Put(ctx context.Context, entry *CacheEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if _, err := c.kv.Put(ctx, cacheKey(entry.URL), data); err != nil {
		return fmt.Errorf("failed to put cache entry: %w", err)
	}
	return nil
}

func (c *NATSClient) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}
