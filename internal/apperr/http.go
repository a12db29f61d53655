package apperr

import "net/http"

// HTTPStatusCode maps an AppError's Code to the status the REST edge should
// respond with. WorkerOpenFailed distinguishes 404/503 via its context flag;
// CacheExpired is "transparent" in the sense that callers normally retry the
// materialization rather than surface it, but when it does reach the edge it
// reads as Gone.
func (e *AppError) HTTPStatusCode() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case CodeWorkerOpenFailed:
		if notFound, _ := e.Context["not_found"].(bool); notFound {
			return http.StatusNotFound
		}
		return http.StatusServiceUnavailable
	case CodeAggregationError:
		return http.StatusInternalServerError
	case CodeCacheExpired:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// HTTPErrorResponse is the JSON body returned for any AppError.
type HTTPErrorResponse struct {
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// ToHTTPResponse renders e into the wire body the REST handlers return.
func (e *AppError) ToHTTPResponse() HTTPErrorResponse {
	return HTTPErrorResponse{
		Error:   string(e.Code),
		Message: e.Message,
		Context: e.Context,
	}
}
