package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"heartpredict/db"
	"heartpredict/dispatch"
	"heartpredict/ingest"
	"heartpredict/ml"
	"heartpredict/monitoring"
	"heartpredict/record"
)

// 交互来源
const (
	SourceForm   = "form"
	SourceUpload = "upload"
)

// Predictor 预测分发接口
type Predictor interface {
	Dispatch(batch record.Batch) (*dispatch.Result, error)
	Models() []dispatch.ModelSpec
}

// HistoryStore 预测历史存储
type HistoryStore interface {
	Save(ctx context.Context, entry db.Entry) error
	Recent(ctx context.Context, limit int) ([]db.Entry, error)
}

// Publisher 实时推送
type Publisher interface {
	PublishPrediction(msg monitoring.PredictionMessage) error
	PublishError(msg monitoring.ErrorMessage) error
	HandleWebSocket(w http.ResponseWriter, r *http.Request)
}

// Handler 持有所有依赖；History和Feed可以为nil
type Handler struct {
	Predictor Predictor
	History   HistoryStore
	Feed      Publisher
	Metrics   *monitoring.MetricsCollector
	Logger    *zap.Logger
	MaxUpload int64
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/models", h.handleModels)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("POST /api/predict/form", h.handlePredictForm)
	mux.HandleFunc("POST /api/predict/bulk", h.handleBulk)
	mux.HandleFunc("GET /api/history", h.handleHistory)
	mux.HandleFunc("GET /api/metrics", h.handleMetrics)
	if h.Feed != nil {
		mux.HandleFunc("GET /api/ws/predictions", h.Feed.HandleWebSocket)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ModelResponse 模型信息
type ModelResponse struct {
	ID   string  `json:"id"`
	Kind ml.Kind `json:"kind"`
	ml.Info
}

func (h *Handler) modelInfo() []ModelResponse {
	models := h.Predictor.Models()
	resp := make([]ModelResponse, 0, len(models))
	for _, m := range models {
		info, _ := ml.Describe(m.Kind)
		info.Name = m.Name
		resp = append(resp, ModelResponse{ID: m.ID, Kind: m.Kind, Info: info})
	}
	return resp
}

func (h *Handler) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.modelInfo())
}

// PredictResponse 单条预测结果
type PredictResponse struct {
	DispatchID string             `json:"dispatch_id"`
	Record     record.Record      `json:"record"`
	Results    []dispatch.Outcome `json:"results"`
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	var form record.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.writeError(w, r, SourceForm, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	resp, err := h.predictForm(r.Context(), form)
	if err != nil {
		h.writeError(w, r, SourceForm, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) predictForm(ctx context.Context, form record.Form) (*PredictResponse, error) {
	rec, err := form.Record()
	if err != nil {
		return nil, err
	}
	result, err := h.run(ctx, SourceForm, record.Batch{rec})
	if err != nil {
		return nil, err
	}
	return &PredictResponse{
		DispatchID: result.ID,
		Record:     rec,
		Results:    result.Outcomes(0),
	}, nil
}

// BulkResponse 批量预测结果
type BulkResponse struct {
	DispatchID string     `json:"dispatch_id"`
	Rows       int        `json:"rows"`
	Header     []string   `json:"header"`
	Data       [][]string `json:"data"`
}

func (h *Handler) handleBulk(w http.ResponseWriter, r *http.Request) {
	if h.MaxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	}
	file, _, err := r.FormFile("file")
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.writeError(w, r, SourceUpload, fmt.Errorf("%w: limit is %d bytes", errTooLarge, maxErr.Limit))
		return
	}
	if err != nil {
		h.writeError(w, r, SourceUpload, fmt.Errorf("%w: upload field \"file\": %v", errBadRequest, err))
		return
	}
	defer file.Close()

	table, err := ingest.ReadTable(file)
	if err != nil {
		h.writeError(w, r, SourceUpload, err)
		return
	}
	result, err := h.run(r.Context(), SourceUpload, table.Batch)
	if err != nil {
		h.writeError(w, r, SourceUpload, err)
		return
	}
	for i, m := range result.Models {
		if err := table.Augment(ingest.PredictionColumn(m.Name), result.Predictions[i]); err != nil {
			h.writeError(w, r, SourceUpload, err)
			return
		}
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ingest.DownloadName))
		if err := ingest.WriteCSV(w, table); err != nil {
			h.Logger.Warn("write csv response", zap.Error(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, BulkResponse{
		DispatchID: result.ID,
		Rows:       result.Rows,
		Header:     table.Header,
		Data:       table.Rows,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		writeJSON(w, http.StatusOK, []db.Entry{})
		return
	}
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}
	entries, err := h.History.Recent(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, "history", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Metrics.Snapshot())
}

// run 执行一次完整分发，并记录指标、历史与推送
func (h *Handler) run(ctx context.Context, source string, batch record.Batch) (*dispatch.Result, error) {
	result, err := h.Predictor.Dispatch(batch)
	if err != nil {
		return nil, err
	}
	h.Metrics.RecordDispatch(source, result.Rows, result.Elapsed)

	positives := result.Positives()
	counts := make([]db.ModelCount, len(result.Models))
	verdicts := make([]monitoring.ModelVerdict, len(result.Models))
	for i, m := range result.Models {
		counts[i] = db.ModelCount{ModelID: m.ID, ModelName: m.Name, Positives: positives[i]}
		verdicts[i] = monitoring.ModelVerdict{Model: m.Name, Positives: positives[i]}
	}

	if h.History != nil {
		entry := db.Entry{
			DispatchID: result.ID,
			Source:     source,
			Rows:       result.Rows,
			Elapsed:    result.Elapsed,
			CreatedAt:  time.Now().UTC(),
			Models:     counts,
		}
		if err := h.History.Save(ctx, entry); err != nil {
			h.Logger.Warn("failed to record prediction history", zap.String("dispatch_id", result.ID), zap.Error(err))
		}
	}
	if h.Feed != nil {
		msg := monitoring.PredictionMessage{DispatchID: result.ID, Source: source, Rows: result.Rows, Models: verdicts}
		if err := h.Feed.PublishPrediction(msg); err != nil {
			h.Logger.Warn("failed to publish prediction", zap.Error(err))
		}
	}
	return result, nil
}

// failure 记录失败交互并返回状态码和类别
func (h *Handler) failure(r *http.Request, source string, err error) (int, string) {
	status, kind := classify(err)
	h.Metrics.RecordError(kind)
	h.Logger.Warn("interaction failed",
		zap.String("request_id", GetRequestID(r.Context())),
		zap.String("source", source),
		zap.String("kind", kind),
		zap.Error(err))
	if h.Feed != nil {
		if pubErr := h.Feed.PublishError(monitoring.ErrorMessage{Kind: kind, Source: source, Message: err.Error()}); pubErr != nil {
			h.Logger.Warn("failed to publish error", zap.Error(pubErr))
		}
	}
	return status, kind
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, source string, err error) {
	status, kind := h.failure(r, source, err)
	writeJSON(w, status, ErrorResponse{Error: kind, Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
