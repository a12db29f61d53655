package cache

import (
	"context"
	"time"

	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
)

// UriMessage is published to request a dataset open (spec §4.3 "SUBSCRIBE
// data-portal" message {"uri": {...}}).
type UriMessage struct {
	URI UriPayload `json:"uri"`
}

type UriPayload struct {
	Path string `json:"path"`
	UUID string `json:"uuid"`
}

// ChunkMessage requests a single chunk encoding.
type ChunkMessage struct {
	Chunk ChunkPayload `json:"chunk"`
}

type ChunkPayload struct {
	UUID     string `json:"uuid"`
	Chunk    string `json:"chunk"`
	Variable string `json:"variable"`
}

// ShutdownMessage requests the worker exit (development mode only).
type ShutdownMessage struct {
	Shutdown bool `json:"shutdown"`
}

// GetJob reads the load-job entry for token; returns a job with
// StatusUnknown if absent.
func (c *Client) GetJob(ctx context.Context, token string) (*domain.LoadJob, error) {
	var job domain.LoadJob
	found, err := c.GetJSON(ctx, token, &job)
	if err != nil {
		return nil, err
	}
	if !found {
		return &domain.LoadJob{Token: token, Status: domain.StatusUnknown}, nil
	}
	return &job, nil
}

// SetJob writes the load-job entry for token with the default TTL.
func (c *Client) SetJob(ctx context.Context, job *domain.LoadJob) error {
	return c.SetJSON(ctx, job.Token, job)
}

// PublishOpen publishes a dataset-open request for (path, token).
func (c *Client) PublishOpen(ctx context.Context, path, token string) error {
	return c.Publish(ctx, UriMessage{URI: UriPayload{Path: path, UUID: token}})
}

// PublishChunkRequest publishes a chunk-encoding request.
func (c *Client) PublishChunkRequest(ctx context.Context, token, chunkID, variable string) error {
	return c.Publish(ctx, ChunkMessage{Chunk: ChunkPayload{UUID: token, Chunk: chunkID, Variable: variable}})
}

// WaitForStatus polls the job status at pollInterval until it reaches a
// terminal state, ctx is canceled, or timeout elapses. Returns the last
// observed job and whether it terminated (as opposed to timing out).
func (c *Client) WaitForStatus(ctx context.Context, token string, timeout, pollInterval time.Duration) (*domain.LoadJob, bool, error) {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		job, err := c.GetJob(ctx, token)
		if err != nil {
			return nil, false, err
		}
		if job.Status.IsTerminal() {
			return job, true, nil
		}
		if time.Now().After(deadline) {
			return job, false, nil
		}
		select {
		case <-ctx.Done():
			return job, false, ctx.Err()
		case <-ticker.C:
		}
	}
}

// WaitForChunk polls for a chunk cache entry until present, ctx is
// canceled, or timeout elapses.
func (c *Client) WaitForChunk(ctx context.Context, token, variable, chunkID string, timeout, pollInterval time.Duration) ([]byte, bool, error) {
	key := ChunkKey(token, variable, chunkID)
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		data, found, err := c.GetChunk(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if found {
			return data, true, nil
		}
		if time.Now().After(deadline) {
			return nil, false, nil
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-ticker.C:
		}
	}
}
