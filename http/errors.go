package http

import (
	"errors"
	"net/http"

	"heartpredict/dispatch"
	"heartpredict/ingest"
	"heartpredict/record"
)

// 错误类别，返回给客户端
const (
	KindSchemaMismatch = "schema_mismatch"
	KindInputParse     = "input_parse_error"
	KindOutOfDomain    = "out_of_domain"
	KindArtifactLoad   = "artifact_load_error"
	KindInference      = "inference_error"
	KindEmptyBatch     = "empty_batch"
	KindBadRequest     = "bad_request"
	KindTooLarge       = "upload_too_large"
	KindInternal       = "internal_error"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// classify 把错误映射为HTTP状态码和类别
func classify(err error) (int, string) {
	var loadErr *dispatch.ArtifactLoadError
	var inferErr *dispatch.InferenceError
	switch {
	case errors.Is(err, ingest.ErrSchemaMismatch):
		return http.StatusUnprocessableEntity, KindSchemaMismatch
	case errors.Is(err, ingest.ErrInputParse):
		return http.StatusBadRequest, KindInputParse
	case errors.Is(err, record.ErrOutOfDomain):
		return http.StatusBadRequest, KindOutOfDomain
	case errors.As(err, &loadErr):
		return http.StatusInternalServerError, KindArtifactLoad
	case errors.As(err, &inferErr):
		return http.StatusInternalServerError, KindInference
	case errors.Is(err, dispatch.ErrEmptyBatch):
		return http.StatusBadRequest, KindEmptyBatch
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge, KindTooLarge
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, KindBadRequest
	default:
		return http.StatusInternalServerError, KindInternal
	}
}

var (
	errBadRequest = errors.New("bad request")
	errTooLarge   = errors.New("upload too large")
)
