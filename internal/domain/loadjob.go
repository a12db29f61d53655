package domain

// JobStatus is the load job state, numbered to match the wire encoding
// stored alongside it in the cache.
type JobStatus int

const (
	StatusFinished   JobStatus = 0
	StatusFailed     JobStatus = 1
	StatusSubmitted  JobStatus = 2
	StatusInProgress JobStatus = 3
	StatusUnknown    JobStatus = 5
)

func (s JobStatus) String() string {
	switch s {
	case StatusFinished:
		return "finished"
	case StatusFailed:
		return "failed"
	case StatusSubmitted:
		return "submitted"
	case StatusInProgress:
		return "in_progress"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether s is a state the job will not leave on its own
// (FINISHED, FAILED); FAILED is retriable on the next access but the worker
// will not resume it without a fresh publish.
func (s JobStatus) IsTerminal() bool {
	return s == StatusFinished || s == StatusFailed
}

// CanTransitionTo enforces the state machine in spec §3: SUBMITTED ->
// IN_PROGRESS -> {FINISHED, FAILED}, with FAILED/SUBMITTED both re-armable
// by a fresh publish that starts the next attempt at IN_PROGRESS.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case StatusUnknown, StatusSubmitted, StatusFailed:
		return next == StatusInProgress || next == StatusSubmitted
	case StatusInProgress:
		return next == StatusFinished || next == StatusFailed
	case StatusFinished:
		return false
	default:
		return false
	}
}

// LoadJob is the cache entry keyed by cache token tracking one dataset's
// materialization attempt.
type LoadJob struct {
	Token   string    `json:"token"`
	Status  JobStatus `json:"status"`
	ObjPath string    `json:"obj_path"`
	Reason  string    `json:"reason,omitempty"`
}

// ZarrMetaEntry is the cache entry stored once a job reaches FINISHED; Meta
// holds the consolidated Zarr v2 structure, JSONMeta the JSON-safe
// projection (compressor serialized as its config dict) that is actually
// served over HTTP.
type ZarrMetaEntry struct {
	Status   JobStatus              `json:"status"`
	ObjPath  string                 `json:"obj_path"`
	Reason   string                 `json:"reason,omitempty"`
	Meta     *ConsolidatedMetadata  `json:"meta,omitempty"`
	JSONMeta map[string]interface{} `json:"json_meta,omitempty"`
	URL      string                 `json:"url,omitempty"`
}

// ConsolidatedMetadata is the `.zmetadata` document: the Zarr v2
// consolidated-metadata convention of one JSON object holding every
// per-key metadata document under a flat dotted-path map.
type ConsolidatedMetadata struct {
	ZarrConsolidatedFormat int                    `json:"zarr_consolidated_format"`
	Metadata               map[string]interface{} `json:"metadata"`
}

// ShareRecord is the doc-store record backing a pre-signed URL.
type ShareRecord struct {
	ID        string `json:"_id" bson:"_id"`
	Token     string `json:"token" bson:"token"`
	Signature string `json:"signature" bson:"signature"`
	ExpiresAt int64  `json:"expires_at" bson:"expires_at"`
	Revoked   bool   `json:"revoked" bson:"revoked"`
}

// QueryStatRecord is inserted into the doc-store after every search.
type QueryStatRecord struct {
	Metadata QueryStatMetadata `json:"metadata" bson:"metadata"`
	Query    map[string]string `json:"query" bson:"query"`
}

// QueryStatMetadata is the `metadata` sub-object of a QueryStatRecord.
type QueryStatMetadata struct {
	NumResults   int64  `json:"num_results" bson:"num_results"`
	Flavour      string `json:"flavour" bson:"flavour"`
	UniqKey      string `json:"uniq_key" bson:"uniq_key"`
	ServerStatus int    `json:"server_status" bson:"server_status"`
	Date         int64  `json:"date" bson:"date"`
}
