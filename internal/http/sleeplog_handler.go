package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bw-isys-53203/Module3/internal/domain"
	"github.com/bw-isys-53203/Module3/internal/service"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 16

// SleepLogHandler 睡眠记录 HTTP Handler
type SleepLogHandler struct {
	ctl    *service.Controller
	logger *zap.Logger
}

func NewSleepLogHandler(ctl *service.Controller, logger *zap.Logger) *SleepLogHandler {
	return &SleepLogHandler{ctl: ctl, logger: logger}
}

// StateDTO 当前应用状态
type StateDTO struct {
	Date            string           `json:"date"`
	SelectedSubject domain.SubjectID `json:"selectedSubject"`
	Subjects        []domain.Subject `json:"subjects"`
}

func (h *SleepLogHandler) state(r *http.Request) StateDTO {
	return StateDTO{
		Date:            h.ctl.CurrentDate(),
		SelectedSubject: h.ctl.SelectedSubject(),
		Subjects:        h.ctl.Subjects(r.Context()),
	}
}

// GetState GET /sleeplog/api/v1/state
func (h *SleepLogHandler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.state(r)))
}

// SetDateRequest date / offset / today 三选一，优先级 date > today > offset
type SetDateRequest struct {
	Date   string `json:"date"`
	Offset int    `json:"offset"`
	Today  bool   `json:"today"`
}

// SetDate POST /sleeplog/api/v1/state/date
func (h *SleepLogHandler) SetDate(w http.ResponseWriter, r *http.Request) {
	var req SetDateRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}

	switch {
	case req.Date != "":
		if err := h.ctl.SetDate(req.Date); err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
	case req.Today:
		h.ctl.Today()
	default:
		if _, err := h.ctl.ShiftDate(req.Offset); err != nil {
			writeJSON(w, http.StatusOK, Fail(err.Error()))
			return
		}
	}
	writeJSON(w, http.StatusOK, Ok(h.state(r)))
}

// SelectSubjectRequest 选择 subject
type SelectSubjectRequest struct {
	Subject string `json:"subject"`
}

// SelectSubject POST /sleeplog/api/v1/state/subject
func (h *SleepLogHandler) SelectSubject(w http.ResponseWriter, r *http.Request) {
	var req SelectSubjectRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	if _, err := h.ctl.SelectSubject(req.Subject); err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(h.state(r)))
}

// IntervalsDTO 区间列表响应
type IntervalsDTO struct {
	Subject   domain.SubjectID    `json:"subject"`
	Date      string              `json:"date"`
	Intervals domain.IntervalList `json:"intervals"`
}

// GetIntervals GET /sleeplog/api/v1/intervals?subject=baby&date=2026-10-17
func (h *SleepLogHandler) GetIntervals(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	if subject == "" {
		subject = string(h.ctl.SelectedSubject())
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.ctl.CurrentDate()
	}

	list, err := h.ctl.Intervals(r.Context(), subject, date)
	if err != nil {
		h.logger.Warn("GetIntervals failed",
			zap.String("subject", subject),
			zap.String("date", date),
			zap.Error(err),
		)
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	id, _ := domain.ParseSubject(subject)
	writeJSON(w, http.StatusOK, Ok(IntervalsDTO{Subject: id, Date: date, Intervals: list}))
}

// ToggleRequest 小时点击；subject/date 为空时使用当前选中的 subject 和当前日期
type ToggleRequest struct {
	Hour    *int   `json:"hour"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
}

// Toggle POST /sleeplog/api/v1/toggle
func (h *SleepLogHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	if req.Hour == nil {
		writeJSON(w, http.StatusOK, Fail("hour is required"))
		return
	}
	res, err := h.ctl.ToggleClick(r.Context(), req.Subject, *req.Hour, req.Date)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(IntervalsDTO{Subject: res.Subject, Date: res.Date, Intervals: res.Intervals}))
}

// ListDates GET /sleeplog/api/v1/dates
func (h *SleepLogHandler) ListDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.ctl.ListDates(r.Context())
	if err != nil {
		h.logger.Error("ListDates failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"dates": dates}))
}

// GetRadar GET /sleeplog/api/v1/radar?date=2026-10-17
func (h *SleepLogHandler) GetRadar(w http.ResponseWriter, r *http.Request) {
	view, err := h.ctl.Radar(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(view))
}

// GetTrend GET /sleeplog/api/v1/trend?days=7
func (h *SleepLogHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	days, err := queryDays(r)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	view, err := h.ctl.Trend(r.Context(), days)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(view))
}

// ExportTrend GET /sleeplog/api/v1/trend/export?days=7
func (h *SleepLogHandler) ExportTrend(w http.ResponseWriter, r *http.Request) {
	days, err := queryDays(r)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	view, err := h.ctl.Trend(r.Context(), days)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	data, err := GenerateTrendWorkbook(view)
	if err != nil {
		h.logger.Error("ExportTrend failed", zap.Int("days", days), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to generate workbook"))
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=sleep-trend-%s-%dd.xlsx", view.To, view.Days))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// GetPreferences GET /sleeplog/api/v1/preferences
func (h *SleepLogHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(map[string]any{"subjects": h.ctl.Subjects(r.Context())}))
}

// PutPreference PUT /sleeplog/api/v1/preferences/:subject
func (h *SleepLogHandler) PutPreference(w http.ResponseWriter, r *http.Request) {
	subject := strings.TrimPrefix(r.URL.Path, apiPrefix+"/preferences/")
	if subject == "" || strings.Contains(subject, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var pref domain.Preference
	if err := readBodyJSON(r, maxBodyBytes, &pref); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	s, err := h.ctl.SetPreference(r.Context(), subject, pref)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(s))
}

// TestDataRequest 测试数据生成参数；seed 为 0 时使用当前时间
type TestDataRequest struct {
	Days int   `json:"days"`
	Seed int64 `json:"seed"`
}

// GenerateTestData POST /sleeplog/api/v1/testdata
func (h *SleepLogHandler) GenerateTestData(w http.ResponseWriter, r *http.Request) {
	req := TestDataRequest{Days: 30}
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}

	n, err := h.ctl.GenerateTestData(r.Context(), req.Days, req.Seed)
	if err != nil {
		writeJSON(w, http.StatusOK, Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"records": n, "seed": req.Seed}))
}
