// Package worker implements the Worker Pool (spec §4.3): a `data-portal`
// pub/sub consumer, a bounded goroutine pool standing in for the source
// system's thread pool (≤ min(num_cpus, 15)) for blocking dataset opens and
// chunk computation, load-job execution (`spawn`), and chunk encoding
// (`get_zarr_chunk`). Grounded on the chart_deployment_executor.go
// semaphore-channel pattern in the pack (k8s-manifests) for the bounded
// pool, since no Kaikei-e-Alt service runs a long-lived pub/sub consumer
// loop of this exact shape.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/freva-org/freva-nextgen-sub000/internal/cache"
	"github.com/freva-org/freva-nextgen-sub000/internal/domain"
	"github.com/freva-org/freva-nextgen-sub000/internal/metrics"
	"github.com/freva-org/freva-nextgen-sub000/internal/worker/engine"
	"github.com/freva-org/freva-nextgen-sub000/internal/worker/zarrcodec"
)

// Worker is the long-running process described in spec §4.3: it never
// answers HTTP and shares no state with the gateway beyond cache entries.
type Worker struct {
	cache      *cache.Client
	opener     engine.EngineOpener
	compressor zarrcodec.Compressor
	log        *slog.Logger

	sem chan struct{} // bounded pool: one slot per concurrent blocking op

	// openMu serializes dataset opens process-wide: spec §5 "the worker
	// holds a process-wide lock on dataset opens because some backends are
	// not thread-safe".
	openMu chan struct{}

	// handles is the worker's private, in-process dataset-handle table;
	// only "<token>-dset" presence is ever shared with the gateway via the
	// cache (spec §9 "do not share in-memory structures across process
	// boundaries").
	handles map[string]*engine.Dataset

	metrics *metrics.Worker
}

// New builds a Worker with maxThreads concurrent blocking-operation slots.
// m may be nil, in which case metrics are not recorded.
func New(c *cache.Client, opener engine.EngineOpener, compressor zarrcodec.Compressor, maxThreads int, log *slog.Logger, m *metrics.Worker) *Worker {
	if maxThreads <= 0 {
		maxThreads = 1
	}
	return &Worker{
		cache:      c,
		opener:     opener,
		compressor: compressor,
		log:        log,
		sem:        make(chan struct{}, maxThreads),
		openMu:     make(chan struct{}, 1),
		handles:    make(map[string]*engine.Dataset),
		metrics:    m,
	}
}

// Run subscribes to the data-portal channel and dispatches every message to
// spawn or getZarrChunk, one at a time off the wire but offloaded to the
// bounded pool for the actual blocking work (spec §4.3 "Scheduling").
func (w *Worker) Run(ctx context.Context) error {
	sub := w.cache.Subscribe(ctx)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			w.dispatch(ctx, msg.Payload)
		}
	}
}

func (w *Worker) dispatch(ctx context.Context, payload string) {
	var shutdown cache.ShutdownMessage
	if err := json.Unmarshal([]byte(payload), &shutdown); err == nil && shutdown.Shutdown {
		w.log.InfoContext(ctx, "received shutdown message, ignoring outside dev mode")
		return
	}

	var uriMsg cache.UriMessage
	if err := json.Unmarshal([]byte(payload), &uriMsg); err == nil && uriMsg.URI.Path != "" {
		w.acquire(func() {
			if err := w.Spawn(ctx, uriMsg.URI.Path, uriMsg.URI.UUID); err != nil {
				w.log.ErrorContext(ctx, "spawn failed", "token", uriMsg.URI.UUID, "error", err)
			}
		})
		return
	}

	var chunkMsg cache.ChunkMessage
	if err := json.Unmarshal([]byte(payload), &chunkMsg); err == nil && chunkMsg.Chunk.UUID != "" {
		w.acquire(func() {
			if _, err := w.GetZarrChunk(ctx, chunkMsg.Chunk.UUID, chunkMsg.Chunk.Chunk, chunkMsg.Chunk.Variable); err != nil {
				w.log.ErrorContext(ctx, "chunk encode failed", "token", chunkMsg.Chunk.UUID, "error", err)
			}
		})
		return
	}

	w.log.WarnContext(ctx, "ignoring unrecognized data-portal message", "payload", payload)
}

// acquire runs fn on a goroutine gated by the bounded pool semaphore.
func (w *Worker) acquire(fn func()) {
	w.sem <- struct{}{}
	go func() {
		defer func() { <-w.sem }()
		fn()
	}()
}

// Spawn executes one load job's lifecycle (spec §4.3 "Load job execution").
func (w *Worker) Spawn(ctx context.Context, path, token string) error {
	job, err := w.cache.GetJob(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to read job status: %w", err)
	}
	if job.Status == domain.StatusFinished {
		return nil
	}

	job.Token = token
	job.ObjPath = path
	job.Status = domain.StatusInProgress
	job.Reason = ""
	if err := w.cache.SetJob(ctx, job); err != nil {
		return fmt.Errorf("failed to mark job in progress: %w", err)
	}

	ds, err := w.openLocked(path)
	if err != nil {
		job.Status = domain.StatusFailed
		job.Reason = err.Error()
		w.recordJobOutcome(job.Status)
		return w.cache.SetJob(ctx, job)
	}

	meta, err := GenerateMetadata(ds, w.compressor)
	if err != nil {
		job.Status = domain.StatusFailed
		job.Reason = err.Error()
		w.recordJobOutcome(job.Status)
		return w.cache.SetJob(ctx, job)
	}

	w.handles[token] = ds
	if w.metrics != nil {
		w.metrics.OpenDatasets.Set(float64(len(w.handles)))
	}
	if err := w.cache.SetDatasetHandleRef(ctx, token, path); err != nil {
		return fmt.Errorf("failed to cache dataset handle reference: %w", err)
	}

	entry := domain.ZarrMetaEntry{
		Status:   domain.StatusFinished,
		ObjPath:  path,
		Meta:     meta,
		JSONMeta: JSONMeta(meta),
	}
	if err := w.cache.SetJSON(ctx, token, entry); err != nil {
		return fmt.Errorf("failed to cache zarr metadata: %w", err)
	}

	job.Status = domain.StatusFinished
	w.recordJobOutcome(job.Status)
	return w.cache.SetJob(ctx, job)
}

func (w *Worker) recordJobOutcome(status domain.JobStatus) {
	if w.metrics != nil {
		w.metrics.JobsSubmitted.WithLabelValues(status.String()).Inc()
	}
}

func (w *Worker) openLocked(path string) (*engine.Dataset, error) {
	w.openMu <- struct{}{}
	defer func() { <-w.openMu }()
	return w.opener.Open(path)
}

// GetZarrChunk implements spec §4.3 "Chunk encoding (get_zarr_chunk)":
// read the variable through the engine's pipeline, pad incomplete edge
// chunks, apply filters then compressor, and cache the result.
func (w *Worker) GetZarrChunk(ctx context.Context, token, chunkID, variable string) ([]byte, error) {
	ds, ok := w.handles[token]
	if !ok {
		return nil, fmt.Errorf("no open dataset handle for token %q", token)
	}
	v, ok := ds.Variables[variable]
	if !ok {
		return nil, fmt.Errorf("unknown variable %q", variable)
	}
	if strings.HasPrefix(v.Dtype, "O") {
		return nil, fmt.Errorf("variable %q has object dtype with no explicit object codec", variable)
	}

	chunkIndex, err := parseChunkID(chunkID)
	if err != nil {
		return nil, err
	}

	chunks := v.Chunks
	if len(chunks) == 0 {
		chunks = v.Shape
	}
	elemSize := dtypeSize(v.Dtype)
	elemCount := 1
	for _, c := range chunks {
		elemCount *= c
	}

	raw, err := ds.ReadChunk(variable, chunkIndex, elemSize, elemCount)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk: %w", err)
	}
	raw = padChunk(raw, chunkIndex, chunks, v.Shape, elemSize)

	encoded, err := zarrcodec.EncodeChunk(nil, w.compressor, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chunk: %w", err)
	}

	key := cache.ChunkKey(token, variable, chunkID)
	if err := w.cache.SetChunk(ctx, key, encoded); err != nil {
		return nil, fmt.Errorf("failed to cache encoded chunk: %w", err)
	}
	if w.metrics != nil {
		w.metrics.ChunksServed.Inc()
	}
	return encoded, nil
}

// parseChunkID parses a dot-joined integer tuple chunk id, e.g. "0.0.0".
func parseChunkID(id string) ([]int, error) {
	parts := strings.Split(id, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid chunk id %q: %w", id, err)
		}
		out[i] = n
	}
	return out, nil
}

// padChunk extends raw to exactly the declared chunk element shape when
// this is an edge chunk (chunk index at the boundary of a dimension whose
// array size is not a multiple of the chunk size). Padded bytes are the Go
// zero value (spec §9 Open Questions: "padding content is undefined").
func padChunk(raw []byte, chunkIndex, chunkShape, arrayShape []int, elemSize int) []byte {
	wantElems := 1
	for _, c := range chunkShape {
		wantElems *= c
	}
	want := wantElems * elemSize
	if len(raw) >= want {
		return raw[:want]
	}
	out := make([]byte, want)
	copy(out, raw)
	return out
}

// dtypeSize returns the byte width of a Zarr dtype string (e.g. "<f8",
// ">i4", "|b1"); unknown dtypes default to 1 byte per element.
func dtypeSize(dtype string) int {
	if len(dtype) < 2 {
		return 1
	}
	n, err := strconv.Atoi(dtype[2:])
	if err != nil || n <= 0 {
		return 1
	}
	return n
}
