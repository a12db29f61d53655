// Package rdbms implements the RDBMS search backend: a pgx/v5 connection
// pool querying a flattened dataset-facet table with key-set ("last_id")
// pagination, grounded on the teacher's driver/alt_db pgxpool usage.
package rdbms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
	"github.com/freva-org/freva-nextgen-sub000/internal/searchindex"
)

// Backend implements searchindex.Backend against a Postgres-shaped table of
// dataset facets, one row per dataset with canonical facet columns plus a
// monotonic `id` column used as the key-set pagination cursor.
type Backend struct {
	pool  *pgxpool.Pool
	table string
}

func New(pool *pgxpool.Pool, table string) *Backend {
	return &Backend{pool: pool, table: table}
}

func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("invalid rdbms connection string: %w", err)
	}
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create rdbms connection pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping rdbms: %w", err)
	}
	return pool, nil
}

// keysetCursor is the RDBMS pagination cursor: the last row id seen.
type keysetCursor struct {
	lastID int64
	done   bool
}

func (c *keysetCursor) Done() bool { return c.done }

func (b *Backend) whereClause(req searchindex.SearchRequest) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	argN := 1

	for key, values := range req.Facets {
		if len(values) == 0 {
			continue
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			args = append(args, v)
			placeholders[i] = fmt.Sprintf("$%d", argN)
			argN++
		}
		clauses = append(clauses, fmt.Sprintf("%s IN (%s)", pgx.Identifier{key}.Sanitize(), strings.Join(placeholders, ",")))
	}
	for key, values := range req.NotFacets {
		if len(values) == 0 {
			continue
		}
		placeholders := make([]string, len(values))
		for i, v := range values {
			args = append(args, v)
			placeholders[i] = fmt.Sprintf("$%d", argN)
			argN++
		}
		clauses = append(clauses, fmt.Sprintf("%s NOT IN (%s)", pgx.Identifier{key}.Sanitize(), strings.Join(placeholders, ",")))
	}
	if req.Time != nil {
		clauses = append(clauses, fmt.Sprintf("time_start <= $%d AND time_end >= $%d", argN, argN+1))
		args = append(args, req.Time.End, req.Time.Start)
		argN += 2
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func (b *Backend) Count(ctx context.Context, req searchindex.SearchRequest) (int64, error) {
	where, args := b.whereClause(req)
	query := fmt.Sprintf("SELECT count(*) FROM %s %s", pgx.Identifier{b.table}.Sanitize(), where)
	var count int64
	if err := b.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperr.UpstreamUnavailable("rdbms count query failed", err)
	}
	return count, nil
}

func (b *Backend) queryPage(ctx context.Context, req searchindex.SearchRequest, lastID int64) (searchindex.DocumentPage, error) {
	where, args := b.whereClause(req)
	argN := len(args) + 1
	if where == "" {
		where = fmt.Sprintf("WHERE id > $%d", argN)
	} else {
		where += fmt.Sprintf(" AND id > $%d", argN)
	}
	args = append(args, lastID)
	argN++

	limit := req.BatchSize
	if limit <= 0 {
		limit = 150
	}
	query := fmt.Sprintf("SELECT id, file, uri, version, facets FROM %s %s ORDER BY id LIMIT $%d",
		pgx.Identifier{b.table}.Sanitize(), where, argN)
	args = append(args, limit)

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return searchindex.DocumentPage{}, apperr.UpstreamUnavailable("rdbms page query failed", err)
	}
	defer rows.Close()

	var docs []domain.Dataset
	var maxID int64
	for rows.Next() {
		var id int64
		var file, uri, version string
		var facets map[string]string
		if err := rows.Scan(&id, &file, &uri, &version, &facets); err != nil {
			return searchindex.DocumentPage{}, apperr.UpstreamUnavailable("rdbms row scan failed", err)
		}
		if facets == nil {
			facets = map[string]string{}
		}
		docs = append(docs, domain.Dataset{File: file, URI: uri, Version: version, Facets: facets})
		maxID = id
	}

	done := len(docs) == 0 || len(docs) < limit
	if !done {
		lastID = maxID
	}
	return searchindex.DocumentPage{
		Documents: docs,
		Cursor:    &keysetCursor{lastID: lastID, done: done},
	}, nil
}

func (b *Backend) InitStream(ctx context.Context, req searchindex.SearchRequest) (searchindex.DocumentPage, error) {
	return b.queryPage(ctx, req, 0)
}

func (b *Backend) StreamResponse(ctx context.Context, req searchindex.SearchRequest, c searchindex.StreamCursor) (searchindex.DocumentPage, error) {
	cur, ok := c.(*keysetCursor)
	if !ok || cur.done {
		return searchindex.DocumentPage{}, nil
	}
	return b.queryPage(ctx, req, cur.lastID)
}

func (b *Backend) ExtendedSearch(ctx context.Context, req searchindex.SearchRequest, facetNames []string) (map[string]searchindex.FacetCounts, error) {
	where, args := b.whereClause(req)
	out := make(map[string]searchindex.FacetCounts, len(facetNames))
	for _, name := range facetNames {
		query := fmt.Sprintf("SELECT %s, count(*) FROM %s %s GROUP BY %s",
			pgx.Identifier{name}.Sanitize(), pgx.Identifier{b.table}.Sanitize(), where, pgx.Identifier{name}.Sanitize())
		rows, err := b.pool.Query(ctx, query, args...)
		if err != nil {
			return nil, apperr.UpstreamUnavailable("rdbms facet query failed", err)
		}
		var fc searchindex.FacetCounts
		for rows.Next() {
			var value string
			var count int64
			if err := rows.Scan(&value, &count); err != nil {
				rows.Close()
				return nil, apperr.UpstreamUnavailable("rdbms facet row scan failed", err)
			}
			fc.Values = append(fc.Values, value)
			fc.Counts = append(fc.Counts, count)
		}
		rows.Close()
		out[name] = fc
	}
	return out, nil
}

func (b *Backend) InitIntakeCatalogue(ctx context.Context, req searchindex.SearchRequest) (searchindex.DocumentPage, error) {
	return b.InitStream(ctx, req)
}

func (b *Backend) IntakeCatalogue(ctx context.Context, req searchindex.SearchRequest, c searchindex.StreamCursor) (searchindex.DocumentPage, error) {
	return b.StreamResponse(ctx, req, c)
}

// UpsertDocument writes or overwrites one row keyed on whichever of
// file/uri is populated (spec §4.6 "stable _id on (file, uri)").
func (b *Backend) UpsertDocument(ctx context.Context, d domain.Dataset) error {
	conflictCol := "file"
	if d.File == "" {
		conflictCol = "uri"
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (file, uri, version, facets) VALUES ($1, $2, $3, $4) ON CONFLICT (%s) DO UPDATE SET facets = EXCLUDED.facets",
		pgx.Identifier{b.table}.Sanitize(), pgx.Identifier{conflictCol}.Sanitize())
	_, err := b.pool.Exec(ctx, query, d.File, d.URI, d.Version, d.Facets)
	if err != nil {
		return apperr.UpstreamUnavailable("rdbms upsert failed", err)
	}
	return nil
}

// DeleteDocuments removes every row owned by user matching the given
// facet-column equality constraints.
func (b *Backend) DeleteDocuments(ctx context.Context, user string, match map[string]string) (int64, error) {
	clauses := []string{fmt.Sprintf("%s = $1", pgx.Identifier{"user"}.Sanitize())}
	args := []interface{}{user}
	argN := 2
	for k, v := range match {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", pgx.Identifier{k}.Sanitize(), argN))
		args = append(args, v)
		argN++
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", pgx.Identifier{b.table}.Sanitize(), strings.Join(clauses, " AND "))
	tag, err := b.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, apperr.UpstreamUnavailable("rdbms delete failed", err)
	}
	return tag.RowsAffected(), nil
}

func (b *Backend) ZarrResponse(ctx context.Context, uniqKey domain.UniqKey, key string) (*domain.Dataset, error) {
	column := "file"
	if uniqKey == domain.UniqKeyURI {
		column = "uri"
	}
	query := fmt.Sprintf("SELECT file, uri, version, facets FROM %s WHERE %s = $1 LIMIT 1",
		pgx.Identifier{b.table}.Sanitize(), pgx.Identifier{column}.Sanitize())

	var file, uri, version string
	var facets map[string]string
	err := b.pool.QueryRow(ctx, query, key).Scan(&file, &uri, &version, &facets)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("dataset not found", nil)
		}
		return nil, apperr.UpstreamUnavailable("rdbms lookup failed", err)
	}
	if facets == nil {
		facets = map[string]string{}
	}
	return &domain.Dataset{File: file, URI: uri, Version: version, Facets: facets}, nil
}
