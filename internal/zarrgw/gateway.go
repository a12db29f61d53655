package zarrgw

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/freva-org/freva-nextgen-sub000/internal/apperr"
	"github.com/freva-org/freva-nextgen-sub000/internal/cache"
	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

// DatasetResolver resolves a uniq-key value to its backing dataset path,
// used by /zarr/convert and /databrowser/load to turn search results into
// cache tokens without the gateway importing the search backend directly.
type DatasetResolver interface {
	ResolvePath(ctx context.Context, uniqKey domain.UniqKey, key string) (string, error)
}

// Options configures a Gateway's timing behavior (spec §5 "Timeouts").
type Options struct {
	StatusTimeout time.Duration
	PollInterval  time.Duration
	BaseURL       string
	PathPrefix    string
}

// Gateway implements the Zarr Gateway HTTP surface (spec §4.2) against the
// shared cache; it never talks to the worker directly, only by publishing
// messages and polling cache state (spec §4.4).
type Gateway struct {
	cache *cache.Client
	opts  Options
}

func New(c *cache.Client, opts Options) *Gateway {
	return &Gateway{cache: c, opts: opts}
}

// EnsureMaterialized implements spec §4.2's request lifecycle steps 2-4:
// look up the job, publish an open request if absent or previously failed,
// and poll until it reaches a terminal state or times out.
func (g *Gateway) EnsureMaterialized(ctx context.Context, token string) (*domain.ZarrMetaEntry, error) {
	path, err := DecodeToken(token)
	if err != nil {
		return nil, apperr.Validation("invalid cache token", err)
	}

	job, err := g.cache.GetJob(ctx, token)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("failed to reach cache", err)
	}

	if job.Status == domain.StatusUnknown || job.Status == domain.StatusFailed {
		job.Token = token
		job.ObjPath = path
		job.Status = domain.StatusSubmitted
		if err := g.cache.SetJob(ctx, job); err != nil {
			return nil, apperr.UpstreamUnavailable("failed to submit load job", err)
		}
		if err := g.cache.PublishOpen(ctx, path, token); err != nil {
			return nil, apperr.UpstreamUnavailable("failed to publish load request", err)
		}
	}

	finalJob, terminated, err := g.cache.WaitForStatus(ctx, token, g.opts.StatusTimeout, g.opts.PollInterval)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("failed while waiting for job status", err)
	}
	if !terminated {
		return nil, apperr.UpstreamUnavailable("timed out waiting for zarr materialization", nil)
	}
	if finalJob.Status == domain.StatusFailed {
		return nil, classifyOpenFailure(finalJob.Reason)
	}

	var entry domain.ZarrMetaEntry
	found, err := g.cache.GetJSON(ctx, token, &entry)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("failed to read zarr metadata", err)
	}
	if !found {
		return nil, apperr.CacheExpired("zarr metadata expired before it could be read", nil)
	}
	return &entry, nil
}

// notFoundMarkers are substrings of errors.Error() the worker's Spawn path
// can produce when the source path itself doesn't exist, as opposed to a
// transient open/decode failure on a path that does exist.
var notFoundMarkers = []string{"no such file or directory", "file does not exist", os.ErrNotExist.Error()}

// classifyOpenFailure maps a worker failure reason to 404 (unreadable
// source file) or 503 (cache/transient) per spec §4.2 step 4.
func classifyOpenFailure(reason string) error {
	notFound := false
	for _, marker := range notFoundMarkers {
		if strings.Contains(reason, marker) {
			notFound = true
			break
		}
	}
	return apperr.WorkerOpenFailed("failed to materialize zarr view: "+reason, nil, notFound)
}

// Status reports the current job status for /zarr-utils/status.
func (g *Gateway) Status(ctx context.Context, token string) (domain.JobStatus, string, error) {
	job, err := g.cache.GetJob(ctx, token)
	if err != nil {
		return domain.StatusUnknown, "", apperr.UpstreamUnavailable("failed to reach cache", err)
	}
	return job.Status, job.Reason, nil
}

// Chunk implements spec §4.2 step 6: look up the chunk cache entry,
// publishing a chunk request and polling if it's absent.
func (g *Gateway) Chunk(ctx context.Context, token, variable, chunkID string) ([]byte, error) {
	data, found, err := g.cache.GetChunk(ctx, cache.ChunkKey(token, variable, chunkID))
	if err != nil {
		return nil, apperr.UpstreamUnavailable("failed to reach cache", err)
	}
	if found {
		return data, nil
	}

	if err := g.cache.PublishChunkRequest(ctx, token, chunkID, variable); err != nil {
		return nil, apperr.UpstreamUnavailable("failed to publish chunk request", err)
	}

	data, found, err = g.cache.WaitForChunk(ctx, token, variable, chunkID, g.opts.StatusTimeout, g.opts.PollInterval)
	if err != nil {
		return nil, apperr.UpstreamUnavailable("failed while waiting for chunk", err)
	}
	if !found {
		return nil, apperr.UpstreamUnavailable("timed out waiting for chunk encoding", nil)
	}
	return data, nil
}

// ZarrURL builds the public URL for a cache token under the configured
// base URL and path prefix (spec §4.2 Identity).
func (g *Gateway) ZarrURL(token string) string {
	return g.opts.BaseURL + g.opts.PathPrefix + "/zarr/" + token + ".zarr"
}
