// Package cache implements the Cache Protocol shared by the gateway and the
// worker (spec §4.4): SETEX key layout, the `data-portal` pub/sub channel,
// and TLS-with-client-cert connection options. Grounded on
// Kaikei-e-Alt/mq-hub's RedisDriver constructor shape, adapted from Redis
// Streams (XAdd/XRead) to plain pub/sub (Publish/Subscribe) because the
// spec's wire contract is `SUBSCRIBE "data-portal"`, not a consumer-group
// stream.
package cache

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel is the pub/sub channel name carrying load-job and chunk requests.
const Channel = "data-portal"

const dsetSuffix = "-dset"

// Options configures a Client.
type Options struct {
	Addr          string
	User          string
	Password      string
	SSLCertFile   string
	SSLKeyFile    string
	DefaultExpiry time.Duration
	ChunkTTL      time.Duration
}

// Client wraps a pooled go-redis client with the key-layout and TTL policy
// the cache protocol defines.
type Client struct {
	rdb           *redis.Client
	defaultExpiry time.Duration
	chunkTTL      time.Duration
}

// NewClient builds a Client from Options. When both SSLCertFile and
// SSLKeyFile are set, TLS is used with the configured client certificate;
// the server certificate is never verified, matching spec §4.4's framing of
// the TLS channel as in-band credential transport rather than PKI trust.
func NewClient(opts Options) (*Client, error) {
	redisOpts := &redis.Options{
		Addr:     opts.Addr,
		Username: opts.User,
		Password: opts.Password,
	}

	if opts.SSLCertFile != "" && opts.SSLKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(opts.SSLCertFile, opts.SSLKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		redisOpts.TLSConfig = &tls.Config{
			Certificates:       []tls.Certificate{cert},
			InsecureSkipVerify: true,
			RootCAs:            x509.NewCertPool(),
		}
	}

	rdb := redis.NewClient(redisOpts)
	return &Client{
		rdb:           rdb,
		defaultExpiry: opts.DefaultExpiry,
		chunkTTL:      opts.ChunkTTL,
	}, nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// SetJSON stores v as JSON under key with the default cache expiry
// (SETEX semantics).
func (c *Client) SetJSON(ctx context.Context, key string, v interface{}) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value for %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, buf, c.defaultExpiry).Err()
}

// GetJSON reads key and unmarshals it into dest. Returns (false, nil) if the
// key is absent, matching the UNKNOWN job-status case.
func (c *Client) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	buf, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(buf, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value for %s: %w", key, err)
	}
	return true, nil
}

// SetChunk stores raw chunk bytes under key with the shorter chunk TTL.
func (c *Client) SetChunk(ctx context.Context, key string, data []byte) error {
	return c.rdb.Set(ctx, key, data, c.chunkTTL).Err()
}

// GetChunk reads raw chunk bytes. Returns (nil, false, nil) if absent.
func (c *Client) GetChunk(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// SetDatasetHandleRef stores an opaque handle reference (e.g. a serialized
// pointer/descriptor id the worker process keeps in memory) under the
// "-dset" key so the gateway can tell whether a dataset has already been
// opened without asking the worker directly.
func (c *Client) SetDatasetHandleRef(ctx context.Context, token, ref string) error {
	return c.rdb.Set(ctx, token+dsetSuffix, ref, c.defaultExpiry).Err()
}

func (c *Client) GetDatasetHandleRef(ctx context.Context, token string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, token+dsetSuffix).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Publish publishes a JSON-encoded message on the data-portal channel.
func (c *Client) Publish(ctx context.Context, msg interface{}) error {
	buf, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal pub/sub message: %w", err)
	}
	return c.rdb.Publish(ctx, Channel, buf).Err()
}

// Subscribe returns a pub/sub handle on the data-portal channel; the
// caller is responsible for closing it.
func (c *Client) Subscribe(ctx context.Context) *redis.PubSub {
	return c.rdb.Subscribe(ctx, Channel)
}

// ChunkKey builds the cache key for one variable/chunk pair under token.
func ChunkKey(token, variable, chunkID string) string {
	return token + "-" + variable + "-" + chunkID
}
