// Package client sleeplog HTTP API 客户端（sleeplog-cli 使用）
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bw-isys-53203/Module3/internal/domain"
	httpapi "github.com/bw-isys-53203/Module3/internal/http"
	"github.com/bw-isys-53203/Module3/internal/service"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const apiPrefix = "/sleeplog/api/v1"

// APIError 服务端返回 code != 2000
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sleeplog API error: %s (code: %d)", e.Message, e.Code)
}

// Client sleeplog API 客户端
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// New 创建客户端；只有 GET 请求在网络错误或 5xx 时重试（toggle 不是幂等的）
func New(baseURL string, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
				return false
			}
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &Client{httpClient: httpClient, logger: logger}
}

func call[T any](ctx context.Context, c *Client, method, path string, query map[string]string, body any) (T, error) {
	var out T
	var env httpapi.Result[json.RawMessage]

	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(&env).
		SetQueryParams(query)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, apiPrefix+path)
	if err != nil {
		c.logger.Debug("sleeplog API call failed", zap.String("path", path), zap.Error(err))
		return out, fmt.Errorf("failed to call sleeplog API %s: %w", path, err)
	}
	if resp.IsError() {
		return out, fmt.Errorf("sleeplog API %s: unexpected status %d", path, resp.StatusCode())
	}
	if env.Code != httpapi.ResultSuccess {
		return out, &APIError{Code: env.Code, Message: env.Message}
	}
	if err := json.Unmarshal(env.Result, &out); err != nil {
		return out, fmt.Errorf("failed to unmarshal %s result: %w", path, err)
	}
	return out, nil
}

// State 当前日期、选中的 subject 和 subject 列表
func (c *Client) State(ctx context.Context) (*httpapi.StateDTO, error) {
	st, err := call[httpapi.StateDTO](ctx, c, http.MethodGet, "/state", nil, nil)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// SetDate 设置当前日期（date / offset / today）
func (c *Client) SetDate(ctx context.Context, req httpapi.SetDateRequest) (*httpapi.StateDTO, error) {
	st, err := call[httpapi.StateDTO](ctx, c, http.MethodPost, "/state/date", nil, req)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) SelectSubject(ctx context.Context, subject string) (*httpapi.StateDTO, error) {
	st, err := call[httpapi.StateDTO](ctx, c, http.MethodPost, "/state/subject", nil, httpapi.SelectSubjectRequest{Subject: subject})
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (c *Client) Intervals(ctx context.Context, subject, date string) (*httpapi.IntervalsDTO, error) {
	dto, err := call[httpapi.IntervalsDTO](ctx, c, http.MethodGet, "/intervals", nonEmpty(map[string]string{
		"subject": subject,
		"date":    date,
	}), nil)
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// Toggle subject/date 为空时由服务端使用当前状态
func (c *Client) Toggle(ctx context.Context, subject string, hour int, date string) (*httpapi.IntervalsDTO, error) {
	req := httpapi.ToggleRequest{Hour: &hour, Subject: subject, Date: date}
	dto, err := call[httpapi.IntervalsDTO](ctx, c, http.MethodPost, "/toggle", nil, req)
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (c *Client) Dates(ctx context.Context) ([]string, error) {
	out, err := call[struct {
		Dates []string `json:"dates"`
	}](ctx, c, http.MethodGet, "/dates", nil, nil)
	if err != nil {
		return nil, err
	}
	return out.Dates, nil
}

func (c *Client) Radar(ctx context.Context, date string) (*service.RadarView, error) {
	view, err := call[service.RadarView](ctx, c, http.MethodGet, "/radar", nonEmpty(map[string]string{"date": date}), nil)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) Trend(ctx context.Context, days int) (*service.TrendView, error) {
	view, err := call[service.TrendView](ctx, c, http.MethodGet, "/trend", map[string]string{"days": strconv.Itoa(days)}, nil)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// ExportTrend 下载趋势 Excel 文件
func (c *Client) ExportTrend(ctx context.Context, days int) ([]byte, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("days", strconv.Itoa(days)).
		Get(apiPrefix + "/trend/export")
	if err != nil {
		return nil, fmt.Errorf("failed to download trend export: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("trend export: unexpected status %d", resp.StatusCode())
	}
	// 失败时服务端返回 JSON 包装
	if strings.HasPrefix(resp.Header().Get("Content-Type"), "application/json") {
		var env httpapi.Result[json.RawMessage]
		if err := json.Unmarshal(resp.Body(), &env); err != nil {
			return nil, fmt.Errorf("failed to unmarshal export error: %w", err)
		}
		return nil, &APIError{Code: env.Code, Message: env.Message}
	}
	return resp.Body(), nil
}

func (c *Client) Preferences(ctx context.Context) ([]domain.Subject, error) {
	out, err := call[struct {
		Subjects []domain.Subject `json:"subjects"`
	}](ctx, c, http.MethodGet, "/preferences", nil, nil)
	if err != nil {
		return nil, err
	}
	return out.Subjects, nil
}

func (c *Client) SetPreference(ctx context.Context, subject string, pref domain.Preference) (*domain.Subject, error) {
	s, err := call[domain.Subject](ctx, c, http.MethodPut, "/preferences/"+subject, nil, pref)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GenerateTestData 重新生成测试数据，返回写入的记录数和实际使用的 seed
func (c *Client) GenerateTestData(ctx context.Context, days int, seed int64) (int, int64, error) {
	out, err := call[struct {
		Records int   `json:"records"`
		Seed    int64 `json:"seed"`
	}](ctx, c, http.MethodPost, "/testdata", nil, httpapi.TestDataRequest{Days: days, Seed: seed})
	if err != nil {
		return 0, 0, err
	}
	return out.Records, out.Seed, nil
}

func nonEmpty(m map[string]string) map[string]string {
	for k, v := range m {
		if v == "" {
			delete(m, k)
		}
	}
	return m
}
