package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// defaultTrendDays ?days= 缺省值
const defaultTrendDays = 7

var errBodyTooLarge = errors.New("request body too large")

// writeJSON 业务错误也以 200 返回，由 Result.Code 区分
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// parseIntParam 空串返回 def；非整数返回错误，不回退到 def
func parseIntParam(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return i, nil
}

// queryDays 读取 ?days=；范围由 domain.DateRange 校验
func queryDays(r *http.Request) (int, error) {
	days, err := parseIntParam(r.URL.Query().Get("days"), defaultTrendDays)
	if err != nil {
		return 0, fmt.Errorf("days: %w", err)
	}
	return days, nil
}

// readBodyJSON 超过 maxBytes 直接拒绝；空 body 保持 out 不变
func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return err
	}
	if int64(len(body)) > maxBytes {
		return errBodyTooLarge
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}
