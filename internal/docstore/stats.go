package docstore

import (
	"context"
	"fmt"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

// InsertQueryStat records one search's statistics record (spec §3 "Query
// statistics record"); inserted after every search, best-effort from the
// caller's point of view (a failure here must never fail the search
// itself).
func (c *Client) InsertQueryStat(ctx context.Context, rec domain.QueryStatRecord) error {
	_, err := c.queryStats().InsertOne(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to insert query statistics record: %w", err)
	}
	return nil
}
