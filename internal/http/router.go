package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

const apiPrefix = "/sleeplog/api/v1"

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

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// method 限制请求方法
func method(m string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != m {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h(w, req)
	}
}

// RegisterHealthRoutes /healthz
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Ok("ok"))
	})
}

// RegisterSleepLogRoutes 注册睡眠记录相关路由
func (r *Router) RegisterSleepLogRoutes(h *SleepLogHandler) {
	// 应用状态
	r.Handle(apiPrefix+"/state", method(http.MethodGet, h.GetState))
	r.Handle(apiPrefix+"/state/date", method(http.MethodPost, h.SetDate))
	r.Handle(apiPrefix+"/state/subject", method(http.MethodPost, h.SelectSubject))

	// 区间
	r.Handle(apiPrefix+"/intervals", method(http.MethodGet, h.GetIntervals))
	r.Handle(apiPrefix+"/toggle", method(http.MethodPost, h.Toggle))
	r.Handle(apiPrefix+"/dates", method(http.MethodGet, h.ListDates))

	// 视图
	r.Handle(apiPrefix+"/radar", method(http.MethodGet, h.GetRadar))
	r.Handle(apiPrefix+"/trend", method(http.MethodGet, h.GetTrend))
	r.Handle(apiPrefix+"/trend/export", method(http.MethodGet, h.ExportTrend))

	// 偏好
	r.Handle(apiPrefix+"/preferences", method(http.MethodGet, h.GetPreferences))
	r.Handle(apiPrefix+"/preferences/", method(http.MethodPut, h.PutPreference))

	// 测试数据
	r.Handle(apiPrefix+"/testdata", method(http.MethodPost, h.GenerateTestData))
}
