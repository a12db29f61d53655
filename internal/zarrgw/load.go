package zarrgw

import (
	"context"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
	"github.com/freva-org/freva-nextgen-sub000/internal/searchindex"
)

// BackendResolver resolves a uniq-key value back to its dataset's file path
// via the search backend's single-document lookup (spec §9 "zarr_response":
// "resolves a single document by its uniq key"), the production
// implementation of DatasetResolver.
type BackendResolver struct {
	Backend searchindex.Backend
}

func (r BackendResolver) ResolvePath(ctx context.Context, uniqKey domain.UniqKey, key string) (string, error) {
	d, err := r.Backend.ZarrResponse(ctx, uniqKey, key)
	if err != nil {
		return "", err
	}
	if d.File != "" {
		return d.File, nil
	}
	return d.URI, nil
}

// LoadURLs turns a list of uniq-key values (as produced by the databrowser
// search layer) into one zarr URL per key, publishing a load job for each
// path that isn't already materializing (spec §6 "streams zarr URLs",
// §3 example 2 "GET /databrowser/load/freva?dataset=cmip6-fs ... stream of
// 2 URLs"). Resolution of a uniq key back to its source path is delegated
// to resolver so this package never imports the search backend.
func (h *Handlers) LoadURLs(ctx context.Context, resolver DatasetResolver, uniqKey domain.UniqKey, keys []string) ([]string, error) {
	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		path, err := resolver.ResolvePath(ctx, uniqKey, key)
		if err != nil {
			return nil, err
		}
		_, url, err := h.PublishPath(ctx, path)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
