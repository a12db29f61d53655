package docstore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

// GetGlobal returns the global (admin-owned) custom flavor named name, or
// nil if none exists. Implements translate.FlavorStore.
func (c *Client) GetGlobal(ctx context.Context, name string) (*domain.CustomFlavor, error) {
	return c.getOne(ctx, flavorID(name, domain.GlobalOwner))
}

// GetPersonal returns owner's personal custom flavor named name, or nil if
// none exists. Implements translate.FlavorStore.
func (c *Client) GetPersonal(ctx context.Context, name, owner string) (*domain.CustomFlavor, error) {
	return c.getOne(ctx, flavorID(name, owner))
}

func (c *Client) getOne(ctx context.Context, id string) (*domain.CustomFlavor, error) {
	var doc flavorDoc
	err := c.flavors().FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up flavor %q: %w", id, err)
	}
	return &domain.CustomFlavor{Name: doc.Name, Owner: doc.Owner, IsGlobal: doc.IsGlobal, Mapping: doc.Mapping}, nil
}

// ListNames returns every known custom flavor's bare name, global and
// personal alike (no owner qualification), used for unknown-flavor
// suggestions.
// Implements translate.FlavorStore.
func (c *Client) ListNames(ctx context.Context) ([]string, error) {
	cur, err := c.flavors().Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list flavors: %w", err)
	}
	defer cur.Close(ctx)

	var names []string
	for cur.Next(ctx) {
		var doc flavorDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode flavor document: %w", err)
		}
		names = append(names, doc.Name)
	}
	return names, cur.Err()
}

// ListAll returns every custom flavor, global and personal, for the
// flavours-listing endpoint.
func (c *Client) ListAll(ctx context.Context) ([]domain.CustomFlavor, error) {
	cur, err := c.flavors().Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list flavors: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.CustomFlavor
	for cur.Next(ctx) {
		var doc flavorDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode flavor document: %w", err)
		}
		out = append(out, domain.CustomFlavor{Name: doc.Name, Owner: doc.Owner, IsGlobal: doc.IsGlobal, Mapping: doc.Mapping})
	}
	return out, cur.Err()
}

// CreateFlavor inserts a new custom flavor. If (name, owner) already exists
// the insert fails and the wrapped mongo duplicate key error is returned.
// The caller is responsible for existence, admin and built-in checks before
// calling this.
func (c *Client) CreateFlavor(ctx context.Context, f domain.CustomFlavor) error {
	doc := flavorDoc{ID: flavorID(f.Name, f.Owner), Name: f.Name, Owner: f.Owner, IsGlobal: f.IsGlobal, Mapping: f.Mapping}
	_, err := c.flavors().InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create flavor %q: %w", f.Name, err)
	}
	return nil
}

// DeleteFlavor removes the flavor identified by (name, owner). Returns
// false if no matching document existed.
func (c *Client) DeleteFlavor(ctx context.Context, name, owner string) (bool, error) {
	res, err := c.flavors().DeleteOne(ctx, bson.M{"_id": flavorID(name, owner)})
	if err != nil {
		return false, fmt.Errorf("failed to delete flavor %q: %w", name, err)
	}
	return res.DeletedCount > 0, nil
}

// UpdateFlavor replaces an existing custom flavor's mapping in place,
// preserving IsGlobal/Owner.
func (c *Client) UpdateFlavor(ctx context.Context, f domain.CustomFlavor) error {
	id := flavorID(f.Name, f.Owner)
	_, err := c.flavors().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"mapping": f.Mapping}})
	if err != nil {
		return fmt.Errorf("failed to update flavor %q: %w", f.Name, err)
	}
	return nil
}
