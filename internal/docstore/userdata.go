package docstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

const collUserData = "user_data"

// UpsertUserData mirrors one user-ingested dataset document into the
// document store, keyed the same way as the index side: a stable id over
// (file, uri) so re-ingesting the same dataset overwrites rather than
// duplicates (spec §4.6).
func (c *Client) UpsertUserData(ctx context.Context, d domain.Dataset) error {
	id := userDataID(d)
	doc := bson.M{"_id": id, "file": d.File, "uri": d.URI, "facets": d.Facets}
	_, err := c.db.Collection(collUserData).ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert user data document: %w", err)
	}
	return nil
}

// DeleteUserData removes every user-ingested document whose facets match
// the given key/value constraints exactly (after lowercasing, as the
// caller already did for non-file values per spec §4.6).
func (c *Client) DeleteUserData(ctx context.Context, user string, match map[string]string) (int64, error) {
	filter := bson.M{"facets.user": user}
	for k, v := range match {
		if k == "user" {
			continue
		}
		filter["facets."+k] = v
	}
	res, err := c.db.Collection(collUserData).DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user data documents: %w", err)
	}
	return res.DeletedCount, nil
}

func userDataID(d domain.Dataset) string {
	key := d.File
	if key == "" {
		key = d.URI
	}
	return HashID(key)
}
