package translate

import (
	"context"
	"sort"
	"strings"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

// FlavorStore is the subset of the doc-store custom-flavor collection that
// the translation engine needs to resolve a flavor name to a lookup table.
// Implemented by internal/docstore against the document store.
type FlavorStore interface {
	GetGlobal(ctx context.Context, name string) (*domain.CustomFlavor, error)
	GetPersonal(ctx context.Context, name, owner string) (*domain.CustomFlavor, error)
	ListNames(ctx context.Context) ([]string, error)
}

// Resolver turns a flavor name plus the calling user into a Lookup,
// following the built-in / custom / ambiguity rules in spec §4.1.
type Resolver struct {
	store FlavorStore
}

func NewResolver(store FlavorStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve implements spec §4.1 "Custom flavors":
//   - built-in flavors resolve directly, ignoring caller/store;
//   - a name of the form "username:flavor" requires username == caller,
//     else 422;
//   - otherwise the caller's personal flavor is tried first, then the
//     global flavor of the same name; if both exist, personal wins;
//   - an unknown name yields a 422 with substring-match suggestions.
func (r *Resolver) Resolve(ctx context.Context, name, caller string) (*Lookup, error) {
	if bl := BuiltinLookup(name); bl != nil {
		return bl, nil
	}

	flavorName := name
	if idx := strings.Index(name, ":"); idx >= 0 {
		owner, rest := name[:idx], name[idx+1:]
		if owner != caller {
			return nil, apperr.Validation("flavor owner in request does not match authenticated user", nil)
		}
		flavorName = rest
	}

	personal, err := r.store.GetPersonal(ctx, flavorName, caller)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("failed to look up personal flavor", err)
	}
	if personal != nil {
		return FromMapping(personal.Mapping), nil
	}

	global, err := r.store.GetGlobal(ctx, flavorName)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("failed to look up global flavor", err)
	}
	if global != nil {
		return FromMapping(global.Mapping), nil
	}

	suggestions := r.suggest(ctx, flavorName)
	return nil, apperr.Validation("unknown flavor", nil).WithContext("suggestions", suggestions)
}

// suggest returns every known flavor name (built-in plus custom) that
// contains name as a substring, case-insensitively.
func (r *Resolver) suggest(ctx context.Context, name string) []string {
	lower := strings.ToLower(name)
	var out []string
	for builtin := range domain.BuiltinFlavors {
		if strings.Contains(string(builtin), lower) {
			out = append(out, string(builtin))
		}
	}
	if names, err := r.store.ListNames(ctx); err == nil {
		for _, n := range names {
			if strings.Contains(strings.ToLower(n), lower) {
				out = append(out, n)
			}
		}
	}
	sort.Strings(out)
	return out
}
