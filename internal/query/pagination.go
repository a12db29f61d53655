package query

// DefaultBatchSize is the default `rows` value for cursor-mark pagination.
const DefaultBatchSize = 150

// CursorState tracks cursor-mark pagination across repeated index calls;
// pagination terminates when NextCursor equals Cursor (spec §4.1
// "Pagination").
type CursorState struct {
	Cursor     string
	NextCursor string
}

// Done reports whether the cursor has stopped advancing.
func (c CursorState) Done() bool {
	return c.Cursor != "" && c.Cursor == c.NextCursor
}

// Advance returns the next CursorState after the backend returns
// nextCursor.
func (c CursorState) Advance(nextCursor string) CursorState {
	return CursorState{Cursor: c.NextCursor, NextCursor: nextCursor}
}

// KeysetState tracks RDBMS keyset ("last_id") pagination.
type KeysetState struct {
	LastID interface{}
	Done   bool
}

// SearchAfterState tracks OpenSearch/Elasticsearch-style search_after
// pagination.
type SearchAfterState struct {
	SortValues []interface{}
	Done       bool
}
