package docstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

// PutShare records a freshly-minted pre-signed share; _id is derived from
// the path so re-minting the same path's share overwrites the prior record
// rather than accumulating duplicates.
func (c *Client) PutShare(ctx context.Context, rec domain.ShareRecord) error {
	_, err := c.shares().ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to store share record: %w", err)
	}
	return nil
}

// GetShare looks up a share record by id; returns nil if absent or
// revoked, implementing the spec §4.2/§9 doc-store-backed revocation path:
// "reject 403 if no matching doc-store record".
func (c *Client) GetShare(ctx context.Context, id string) (*domain.ShareRecord, error) {
	var rec domain.ShareRecord
	err := c.shares().FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up share record: %w", err)
	}
	if rec.Revoked {
		return nil, nil
	}
	return &rec, nil
}

// RevokeShare marks a share record revoked without deleting it, so a
// revoked share's expiry/audit trail stays inspectable.
func (c *Client) RevokeShare(ctx context.Context, id string) error {
	_, err := c.shares().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"revoked": true}})
	if err != nil {
		return fmt.Errorf("failed to revoke share record: %w", err)
	}
	return nil
}
