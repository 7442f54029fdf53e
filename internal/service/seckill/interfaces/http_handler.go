// internal/service/seckill/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"seckill/internal/service/seckill/application"
	"seckill/internal/service/seckill/domain"
)

var executionCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "seckill_executions_total",
		Help: "Seckill execution outcomes by terminal state.",
	},
	[]string{"state"},
)

func init() {
	prometheus.MustRegister(executionCounter)
}

// executeFunc 抽象两条执行路径（事务路径 / 过程路径），处理器逻辑共用
type executeFunc func(ctx context.Context, seckillID, userPhone int64, md5 string) *application.SeckillExecution

// SeckillHandler 封装了 seckill 服务的 HTTP 处理器
type SeckillHandler struct {
	admission *application.AdmissionService
	engine    *application.ExecutionEngine
	query     *application.QueryService
}

// NewSeckillHandler 创建一个新的 HTTP 处理器实例
func NewSeckillHandler(admission *application.AdmissionService, engine *application.ExecutionEngine, query *application.QueryService) *SeckillHandler {
	return &SeckillHandler{admission: admission, engine: engine, query: query}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *SeckillHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /seckill/list", h.handleList)
	mux.HandleFunc("GET /seckill/{id}/detail", h.handleDetail)
	mux.HandleFunc("POST /seckill/{id}/exposer", h.handleExposer)
	mux.HandleFunc("POST /seckill/{id}/{md5}/execution", h.handleExecution)
	mux.HandleFunc("POST /seckill/{id}/{md5}/execution/procedure", h.handleExecutionByProcedure)
}

// envelope 是统一的响应包装
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (h *SeckillHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	list, err := h.query.GetSeckillList(ctx, offset, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: list})
}

func (h *SeckillHandler) handleDetail(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	seckillID, ok := parseSeckillID(w, r)
	if !ok {
		return
	}

	seckill, err := h.query.GetByID(ctx, seckillID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrSeckillNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, envelope{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: seckill})
}

func (h *SeckillHandler) handleExposer(w http.ResponseWriter, r *http.Request) {
	ctx := extractTraceContext(r)

	seckillID, ok := parseSeckillID(w, r)
	if !ok {
		return
	}

	exposer, err := h.admission.Expose(ctx, seckillID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, envelope{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: exposer})
}

func (h *SeckillHandler) handleExecution(w http.ResponseWriter, r *http.Request) {
	h.handleExecute(w, r, h.engine.Execute)
}

func (h *SeckillHandler) handleExecutionByProcedure(w http.ResponseWriter, r *http.Request) {
	h.handleExecute(w, r, h.engine.ExecuteByProcedure)
}

// handleExecute 解析路径参数和用户标识后驱动执行引擎。
// 业务终态（重复秒杀、已结束、口令无效）都以 200 返回，交给响应体区分
func (h *SeckillHandler) handleExecute(w http.ResponseWriter, r *http.Request, run executeFunc) {
	ctx := extractTraceContext(r)

	seckillID, ok := parseSeckillID(w, r)
	if !ok {
		return
	}
	md5 := r.PathValue("md5")

	userPhone, err := strconv.ParseInt(r.URL.Query().Get("phone"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "invalid user phone"})
		return
	}

	execution := run(ctx, seckillID, userPhone, md5)
	executionCounter.WithLabelValues(execution.State.String()).Inc()

	writeJSON(w, http.StatusOK, envelope{
		Success: execution.State == domain.StateSuccess,
		Data:    execution,
	})
}

func parseSeckillID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	seckillID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Error: "invalid seckill id"})
		return 0, false
	}
	return seckillID, true
}

func extractTraceContext(r *http.Request) context.Context {
	propagator := otel.GetTextMapPropagator()
	return propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
