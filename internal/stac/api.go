package stac

import (
	"fmt"
	"strings"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
)

// PageToken is the `next|prev:<collection_id>:<item_id>` pagination token
// format for `/stacapi/collections/{id}/items` (spec §6).
type PageToken struct {
	Direction string // "next" or "prev"
	ItemID    string
}

// Encode renders a PageToken to its wire string.
func (t PageToken) Encode(collectionID string) string {
	return fmt.Sprintf("%s:%s:%s", t.Direction, collectionID, t.ItemID)
}

// DecodeToken parses a PageToken, enforcing that the embedded collection id
// matches the collection the caller is actually paging.
func DecodeToken(raw, collectionID string) (PageToken, error) {
	if raw == "" {
		return PageToken{}, nil
	}
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 {
		return PageToken{}, apperr.Validation("malformed pagination token", nil)
	}
	direction, coll, itemID := parts[0], parts[1], parts[2]
	if direction != "next" && direction != "prev" {
		return PageToken{}, apperr.Validation("malformed pagination token direction", nil)
	}
	if coll != collectionID {
		return PageToken{}, apperr.Validation("pagination token does not match collection", nil)
	}
	return PageToken{Direction: direction, ItemID: itemID}, nil
}

// LandingPage is the `GET /stacapi/` response body.
type LandingPage struct {
	Type        string `json:"type"`
	StacVersion string `json:"stac_version"`
	ID          string `json:"id"`
	Description string `json:"description"`
	Links       []Link `json:"links"`
}

// Conformance is the `GET /stacapi/conformance` response body.
type Conformance struct {
	ConformsTo []string `json:"conformsTo"`
}

// DefaultConformance lists the STAC API conformance classes this minimal
// implementation satisfies.
func DefaultConformance() Conformance {
	return Conformance{ConformsTo: []string{
		"https://api.stacspec.org/v1.0.0/core",
		"https://api.stacspec.org/v1.0.0/ogcapi-features",
		"https://api.stacspec.org/v1.0.0/item-search",
	}}
}
