package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bw-isys-53203/Module3/internal/domain"
	"github.com/bw-isys-53203/Module3/internal/repository"
	"github.com/bw-isys-53203/Module3/internal/service"
	"github.com/bw-isys-53203/Module3/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

func setupRouter(t *testing.T) (*Router, *service.Controller) {
	t.Helper()
	kv := store.NewMemoryKV()
	ctl := service.NewController(
		repository.NewKVSleepRecordsRepository(kv),
		repository.NewKVPreferencesRepository(kv),
		zap.NewNop(),
		service.WithClock(func() time.Time { return time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC) }),
	)
	r := NewRouter(zap.NewNop())
	r.RegisterHealthRoutes()
	r.RegisterSleepLogRoutes(NewSleepLogHandler(ctl, zap.NewNop()))
	return r, ctl
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) envelope {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil && env.Code == ResultSuccess {
		require.NoError(t, json.Unmarshal(env.Result, out))
	}
	return env
}

func TestHealthz(t *testing.T) {
	r, _ := setupRouter(t)
	env := decode(t, do(t, r, http.MethodGet, "/healthz", nil), nil)
	assert.Equal(t, ResultSuccess, env.Code)
}

func TestGetState(t *testing.T) {
	r, _ := setupRouter(t)
	var st StateDTO
	env := decode(t, do(t, r, http.MethodGet, apiPrefix+"/state", nil), &st)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, "2026-10-17", st.Date)
	assert.Equal(t, domain.SubjectBaby, st.SelectedSubject)
	assert.Len(t, st.Subjects, 3)
}

func TestMethodNotAllowed(t *testing.T) {
	r, _ := setupRouter(t)
	w := do(t, r, http.MethodPost, apiPrefix+"/state", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestSetDate(t *testing.T) {
	r, ctl := setupRouter(t)

	var st StateDTO
	env := decode(t, do(t, r, http.MethodPost, apiPrefix+"/state/date", SetDateRequest{Date: "2026-10-01"}), &st)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, "2026-10-01", st.Date)

	env = decode(t, do(t, r, http.MethodPost, apiPrefix+"/state/date", SetDateRequest{Offset: -1}), &st)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, "2026-09-30", st.Date)

	env = decode(t, do(t, r, http.MethodPost, apiPrefix+"/state/date", SetDateRequest{Today: true}), &st)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, "2026-10-17", ctl.CurrentDate())

	env = decode(t, do(t, r, http.MethodPost, apiPrefix+"/state/date", SetDateRequest{Date: "17/10/2026"}), nil)
	assert.Equal(t, ResultError, env.Code)
	assert.Equal(t, "2026-10-17", ctl.CurrentDate())
}

func TestSelectSubject(t *testing.T) {
	r, ctl := setupRouter(t)

	env := decode(t, do(t, r, http.MethodPost, apiPrefix+"/state/subject", SelectSubjectRequest{Subject: "user2"}), nil)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, domain.SubjectUser2, ctl.SelectedSubject())

	env = decode(t, do(t, r, http.MethodPost, apiPrefix+"/state/subject", SelectSubjectRequest{Subject: "cat"}), nil)
	assert.Equal(t, ResultError, env.Code)
	assert.Equal(t, domain.SubjectUser2, ctl.SelectedSubject())
}

func TestToggleAndGetIntervals(t *testing.T) {
	r, _ := setupRouter(t)

	for _, h := range []int{5, 6, 7} {
		hour := h
		env := decode(t, do(t, r, http.MethodPost, apiPrefix+"/toggle", map[string]any{"hour": hour}), nil)
		require.Equal(t, ResultSuccess, env.Code)
	}

	var dto IntervalsDTO
	env := decode(t, do(t, r, http.MethodGet, apiPrefix+"/intervals?subject=baby&date=2026-10-17", nil), &dto)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, domain.SubjectBaby, dto.Subject)
	assert.Equal(t, domain.IntervalList{{Start: 5, End: 8}}, dto.Intervals)

	// 中间切开
	env = decode(t, do(t, r, http.MethodPost, apiPrefix+"/toggle", map[string]any{"hour": 6, "subject": "baby"}), &dto)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, domain.IntervalList{{Start: 5, End: 6}, {Start: 7, End: 8}}, dto.Intervals)
}

func TestToggle_InvalidInput(t *testing.T) {
	r, ctl := setupRouter(t)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing hour", map[string]any{"subject": "baby"}},
		{"hour too large", map[string]any{"hour": 24}},
		{"negative hour", map[string]any{"hour": -1}},
		{"unknown subject", map[string]any{"hour": 3, "subject": "dog"}},
		{"bad date", map[string]any{"hour": 3, "date": "2026-13-01"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := decode(t, do(t, r, http.MethodPost, apiPrefix+"/toggle", tc.body), nil)
			assert.Equal(t, ResultError, env.Code)
		})
	}

	dates, err := ctl.ListDates(t.Context())
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestListDates(t *testing.T) {
	r, _ := setupRouter(t)
	decode(t, do(t, r, http.MethodPost, apiPrefix+"/toggle", map[string]any{"hour": 1, "date": "2026-10-02"}), nil)
	decode(t, do(t, r, http.MethodPost, apiPrefix+"/toggle", map[string]any{"hour": 1, "date": "2026-10-01"}), nil)

	var out struct {
		Dates []string `json:"dates"`
	}
	env := decode(t, do(t, r, http.MethodGet, apiPrefix+"/dates", nil), &out)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, []string{"2026-10-01", "2026-10-02"}, out.Dates)
}

func TestGetRadar(t *testing.T) {
	r, _ := setupRouter(t)
	decode(t, do(t, r, http.MethodPost, apiPrefix+"/toggle", map[string]any{"hour": 5, "subject": "user1"}), nil)

	var view struct {
		Date string           `json:"date"`
		Rows []map[string]any `json:"rows"`
	}
	env := decode(t, do(t, r, http.MethodGet, apiPrefix+"/radar", nil), &view)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, "2026-10-17", view.Date)
	require.Len(t, view.Rows, 24)
	assert.Equal(t, "05", view.Rows[5]["hour"])
	assert.EqualValues(t, 1, view.Rows[5]["user1"])
	assert.EqualValues(t, 0, view.Rows[5]["baby"])
}

func TestGetTrend(t *testing.T) {
	r, _ := setupRouter(t)
	decode(t, do(t, r, http.MethodPost, apiPrefix+"/toggle", map[string]any{"hour": 2, "date": "2026-10-16"}), nil)
	decode(t, do(t, r, http.MethodPost, apiPrefix+"/toggle", map[string]any{"hour": 2, "date": "2026-10-17"}), nil)
	decode(t, do(t, r, http.MethodPost, apiPrefix+"/toggle", map[string]any{"hour": 2, "date": "2026-10-01"}), nil)

	var view service.TrendView
	env := decode(t, do(t, r, http.MethodGet, apiPrefix+"/trend?days=7", nil), &view)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, "2026-10-11", view.From)
	assert.Equal(t, "2026-10-17", view.To)
	require.Len(t, view.Series, 3)
	assert.Equal(t, domain.SubjectBaby, view.Series[0].Subject)
	assert.Equal(t, 2, view.Series[0].Counts[2])

	env = decode(t, do(t, r, http.MethodGet, apiPrefix+"/trend?days=0", nil), nil)
	assert.Equal(t, ResultError, env.Code)
}

func TestGetTrend_RejectsBadDays(t *testing.T) {
	r, _ := setupRouter(t)

	cases := map[string]string{
		"abc":    "days: invalid integer",
		"7.5":    "days: invalid integer",
		"367":    "days must be within",
		"200000": "days must be within",
		"-3":     "days must be within",
	}
	for days, msg := range cases {
		for _, path := range []string{"/trend", "/trend/export"} {
			w := do(t, r, http.MethodGet, apiPrefix+path+"?days="+days, nil)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json", "%s days=%s", path, days)
			env := decode(t, w, nil)
			assert.Equal(t, ResultError, env.Code, "%s days=%s", path, days)
			assert.Contains(t, env.Message, msg, "%s days=%s", path, days)
		}
	}

	var view service.TrendView
	env := decode(t, do(t, r, http.MethodGet, apiPrefix+"/trend", nil), &view)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, defaultTrendDays, view.Days)
}

func TestGenerateTestData_RejectsTooManyDays(t *testing.T) {
	r, _ := setupRouter(t)
	env := decode(t, do(t, r, http.MethodPost, apiPrefix+"/testdata", map[string]any{"days": 200000, "seed": 1}), nil)
	assert.Equal(t, ResultError, env.Code)
	assert.Contains(t, env.Message, "days must be within")
}

func TestExportTrend(t *testing.T) {
	r, _ := setupRouter(t)
	decode(t, do(t, r, http.MethodPost, apiPrefix+"/toggle", map[string]any{"hour": 22, "subject": "user2"}), nil)

	w := do(t, r, http.MethodGet, apiPrefix+"/trend/export?days=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sleep-trend-2026-10-17-3d.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(trendSheet)
	require.NoError(t, err)
	require.Len(t, rows, 25)
	assert.Equal(t, []string{"Hour", "Baby", "User 1", "User 2"}, rows[0])
	assert.Equal(t, []string{"22", "0", "0", "1"}, rows[23])
}

func TestPreferences(t *testing.T) {
	r, _ := setupRouter(t)

	var s domain.Subject
	env := decode(t, do(t, r, http.MethodPut, apiPrefix+"/preferences/user1", domain.Preference{Name: "Alice", Color: "#00FF00"}), &s)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, "Alice", s.Name)

	var out struct {
		Subjects []domain.Subject `json:"subjects"`
	}
	env = decode(t, do(t, r, http.MethodGet, apiPrefix+"/preferences", nil), &out)
	require.Equal(t, ResultSuccess, env.Code)
	require.Len(t, out.Subjects, 3)
	assert.Equal(t, "Alice", out.Subjects[1].Name)
	assert.Equal(t, "#00FF00", out.Subjects[1].Color)

	env = decode(t, do(t, r, http.MethodPut, apiPrefix+"/preferences/ghost", domain.Preference{Name: "x"}), nil)
	assert.Equal(t, ResultError, env.Code)

	w := do(t, r, http.MethodPut, apiPrefix+"/preferences/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateTestData(t *testing.T) {
	r, _ := setupRouter(t)

	var out struct {
		Records int   `json:"records"`
		Seed    int64 `json:"seed"`
	}
	env := decode(t, do(t, r, http.MethodPost, apiPrefix+"/testdata", TestDataRequest{Days: 5, Seed: 42}), &out)
	require.Equal(t, ResultSuccess, env.Code)
	assert.Equal(t, 5, out.Records)
	assert.Equal(t, int64(42), out.Seed)

	var dates struct {
		Dates []string `json:"dates"`
	}
	decode(t, do(t, r, http.MethodGet, apiPrefix+"/dates", nil), &dates)
	assert.Equal(t, []string{"2026-10-13", "2026-10-14", "2026-10-15", "2026-10-16", "2026-10-17"}, dates.Dates)
}
