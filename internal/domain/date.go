package domain

import (
	"fmt"
	"time"
)

// DateLayout 记录日期格式
const DateLayout = "2006-01-02"

// MaxDays 趋势聚合 / 测试数据生成的最大天数（一年）
const MaxDays = 366

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatDate 按本地日历日格式化
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidDate 是否是合法的 YYYY-MM-DD
func ValidDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// AddDays 在日历日上偏移 n 天
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// DateRange 返回以 end 结尾的最近 days 个日期，按从旧到新排列
func DateRange(end string, days int) ([]string, error) {
	if days < 1 || days > MaxDays {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDays, days)
	}
	t, err := ParseDate(end)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		dates = append(dates, FormatDate(t.AddDate(0, 0, -i)))
	}
	return dates, nil
}

// HourLabel 小时标签 "00".."23"
func HourLabel(hour int) string {
	return fmt.Sprintf("%02d", hour)
}

// HourLabels 24 个小时标签
func HourLabels() []string {
	labels := make([]string, HoursPerDay)
	for h := range labels {
		labels[h] = HourLabel(h)
	}
	return labels
}
