// Package stats orchestrates query-statistics insertion and the custom
// flavor CRUD/ownership business logic that sits above the document store
// (spec §3 "Query statistics record", §4.1 "Custom flavors", §4.5 "Admin
// claim").
package stats

import (
	"context"
	"strings"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

// StatsStore is the doc-store surface stats needs for query-statistics
// insertion.
type StatsStore interface {
	InsertQueryStat(ctx context.Context, rec domain.QueryStatRecord) error
}

// FlavorStore is the doc-store surface stats needs for flavor CRUD,
// satisfied by internal/docstore.
type FlavorStore interface {
	GetGlobal(ctx context.Context, name string) (*domain.CustomFlavor, error)
	GetPersonal(ctx context.Context, name, owner string) (*domain.CustomFlavor, error)
	ListAll(ctx context.Context) ([]domain.CustomFlavor, error)
	CreateFlavor(ctx context.Context, f domain.CustomFlavor) error
	DeleteFlavor(ctx context.Context, name, owner string) (bool, error)
	UpdateFlavor(ctx context.Context, f domain.CustomFlavor) error
}

// Service implements query-statistics recording and custom-flavor
// management.
type Service struct {
	stats   StatsStore
	flavors FlavorStore
}

func New(stats StatsStore, flavors FlavorStore) *Service {
	return &Service{stats: stats, flavors: flavors}
}

// RecordQuery inserts a query statistics record after a search completes,
// flattening the multi-value facet constraints into `"v1&v2&..."` strings
// (spec §3 "{metadata: {...}, query: {facet: 'v1&v2&…'}}`").
func (s *Service) RecordQuery(ctx context.Context, flavour, uniqKey string, numResults int64, serverStatus int, date int64, facets map[string][]string) error {
	query := make(map[string]string, len(facets))
	for k, values := range facets {
		query[k] = strings.Join(values, "&")
	}
	rec := domain.QueryStatRecord{
		Metadata: domain.QueryStatMetadata{
			NumResults:   numResults,
			Flavour:      flavour,
			UniqKey:      uniqKey,
			ServerStatus: serverStatus,
			Date:         date,
		},
		Query: query,
	}
	return s.stats.InsertQueryStat(ctx, rec)
}

// ListFlavors returns every custom flavor with collision-qualified display
// names: a personal flavor that shares its name with a global flavor is
// rendered "owner:name" (spec §4.1 "Listing namespaces collisions between
// global and personal flavors as username:flavor_name").
func (s *Service) ListFlavors(ctx context.Context) ([]domain.CustomFlavor, error) {
	all, err := s.flavors.ListAll(ctx)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("failed to list flavors", err)
	}

	globalNames := map[string]bool{}
	for _, f := range all {
		if f.IsGlobal {
			globalNames[f.Name] = true
		}
	}
	out := make([]domain.CustomFlavor, 0, len(all))
	for _, f := range all {
		qualified := f
		qualified.Name = f.QualifiedName(globalNames[f.Name])
		out = append(out, qualified)
	}
	return out, nil
}

// CreateFlavor implements `POST /flavours`: built-ins are immutable, global
// flavors require the admin claim, and (name, owner) must be unique (spec
// §4.1 "Lifecycle", §7 error table "Conflict: flavor name collision").
func (s *Service) CreateFlavor(ctx context.Context, caller string, isAdmin bool, f domain.CustomFlavor) error {
	if domain.IsBuiltin(f.Name) {
		return apperr.Validation("cannot redefine a built-in flavor", nil)
	}
	if f.IsGlobal {
		if !isAdmin {
			return apperr.Forbidden("only admins may create global flavors", nil)
		}
		f.Owner = domain.GlobalOwner
	} else {
		f.Owner = caller
	}

	existing, err := s.flavors.GetPersonal(ctx, f.Name, f.Owner)
	if err != nil {
		return apperr.UpstreamUnavailable("failed to check for existing flavor", err)
	}
	if existing != nil {
		return apperr.Conflict("flavor already exists", nil)
	}

	if err := s.flavors.CreateFlavor(ctx, f); err != nil {
		return apperr.UpstreamUnavailable("failed to create flavor", err)
	}
	return nil
}

// UpdateFlavor implements `PUT /flavours/{name}`: only the owning user (or
// an admin, for global flavors) may update the mapping.
func (s *Service) UpdateFlavor(ctx context.Context, caller string, isAdmin bool, name string, isGlobal bool, mapping map[string]string) error {
	if domain.IsBuiltin(name) {
		return apperr.Validation("cannot redefine a built-in flavor", nil)
	}
	owner := caller
	if isGlobal {
		if !isAdmin {
			return apperr.Forbidden("only admins may update global flavors", nil)
		}
		owner = domain.GlobalOwner
	}

	existing, err := s.flavors.GetPersonal(ctx, name, owner)
	if err != nil {
		return apperr.UpstreamUnavailable("failed to look up flavor", err)
	}
	if existing == nil {
		return apperr.NotFound("flavor not found", nil)
	}

	existing.Mapping = mapping
	if err := s.flavors.UpdateFlavor(ctx, *existing); err != nil {
		return apperr.UpstreamUnavailable("failed to update flavor", err)
	}
	return nil
}

// DeleteFlavor implements `DELETE /flavours/{name}?is_global=`: only the
// owning user (or an admin, for global flavors) may delete it.
func (s *Service) DeleteFlavor(ctx context.Context, caller string, isAdmin bool, name string, isGlobal bool) error {
	if domain.IsBuiltin(name) {
		return apperr.Validation("cannot delete a built-in flavor", nil)
	}
	owner := caller
	if isGlobal {
		if !isAdmin {
			return apperr.Forbidden("only admins may delete global flavors", nil)
		}
		owner = domain.GlobalOwner
	}

	found, err := s.flavors.DeleteFlavor(ctx, name, owner)
	if err != nil {
		return apperr.UpstreamUnavailable("failed to delete flavor", err)
	}
	if !found {
		return apperr.NotFound("flavor not found", nil)
	}
	return nil
}
