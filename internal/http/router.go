package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Router 使用标准库 http.ServeMux
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于 /metrics）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterRiskRoutes 风险评分相关路由
func (r *Router) RegisterRiskRoutes(h *RiskHandler) {
	r.Handle("/api/v1/risk/cohort", method(http.MethodGet, h.GetCohort))
	r.Handle("/api/v1/risk/classify", method(http.MethodPost, h.Classify))
	r.Handle("/api/v1/risk/patients/validate", method(http.MethodPost, h.ValidatePatient))
	r.Handle("/api/v1/risk/roster.xlsx", method(http.MethodGet, h.ExportRoster))
}

// RegisterChangelogRoutes 变更记录路由，limiter 为 nil 时不限流
func (r *Router) RegisterChangelogRoutes(h *ChangelogHandler, limiter *rate.Limiter) {
	r.Handle("/api/v1/changelog/diff", method(http.MethodPost, r.throttle(limiter, h.Diff)))
	r.Handle("/api/v1/changelog/snapshots", method(http.MethodGet, r.throttle(limiter, h.CompareSnapshots)))
}

// RegisterMetricsRoute prometheus 指标
func (r *Router) RegisterMetricsRoute() {
	r.HandleHandler("/metrics", promhttp.Handler())
}

func method(m string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != m {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// throttle 超出速率返回 429
func (r *Router) throttle(limiter *rate.Limiter, h http.HandlerFunc) http.HandlerFunc {
	if limiter == nil {
		return h
	}
	return func(w http.ResponseWriter, req *http.Request) {
		if !limiter.Allow() {
			r.logger.Warn("Rate limit exceeded", zap.String("path", req.URL.Path))
			writeJSON(w, http.StatusTooManyRequests, Fail("too many requests"))
			return
		}
		h(w, req)
	}
}
