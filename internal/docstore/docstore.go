// Package docstore wraps the MongoDB-compatible document store used for
// query statistics, custom flavors, and pre-signed share records (spec
// §3). Grounded on the teacher's driver/alt_db connection-pool shape
// (driver/alt_db/init.go: parse config, construct client, ping before
// returning) adapted to mongo-driver's client/ping idiom, and on the
// other_examples manifests (AleutianAI, cs3org-reva, grafana-tempo,
// moby-moby) that confirm go.mongodb.org/mongo-driver as the pack's
// document-store client.
package docstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collFlavors    = "flavours"
	collShares     = "shares"
	collQueryStats = "query_stats"
)

// Client wraps a connected *mongo.Client scoped to one database.
type Client struct {
	db *mongo.Database
}

// Options configures a Client.
type Options struct {
	Host     string
	User     string
	Password string
	Database string
}

// Connect dials the document store and pings it before returning, matching
// the teacher's connect-then-ping-before-use convention.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	uri := fmt.Sprintf("mongodb://%s", opts.Host)
	clientOpts := options.Client().ApplyURI(uri)
	if opts.User != "" {
		clientOpts.SetAuth(options.Credential{Username: opts.User, Password: opts.Password})
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping document store: %w", err)
	}

	return &Client{db: client.Database(opts.Database)}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Client().Disconnect(ctx)
}

// HashID derives a stable document id from an arbitrary string, used for
// share records (keyed by path) and user-data upserts (keyed by file/uri).
func HashID(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (c *Client) flavors() *mongo.Collection    { return c.db.Collection(collFlavors) }
func (c *Client) shares() *mongo.Collection     { return c.db.Collection(collShares) }
func (c *Client) queryStats() *mongo.Collection { return c.db.Collection(collQueryStats) }

// flavorDoc is the bson-tagged wire shape stored for a custom flavor.
type flavorDoc struct {
	ID       string            `bson:"_id"`
	Name     string            `bson:"flavour_name"`
	Owner    string            `bson:"owner"`
	IsGlobal bool              `bson:"is_global"`
	Mapping  map[string]string `bson:"mapping"`
}

func flavorID(name, owner string) string {
	return owner + ":" + name
}
