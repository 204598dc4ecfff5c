package domain

import "errors"

var (
	// ErrUnknownSubject 未知的 subject 标识
	ErrUnknownSubject = errors.New("unknown subject")
	// ErrInvalidDate 日期不是 YYYY-MM-DD
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	// ErrInvalidHour 小时不在 [0,24)
	ErrInvalidHour = errors.New("hour must be within [0,24)")
	// ErrInvalidDays 聚合天数必须在 [1, MaxDays]
	ErrInvalidDays = errors.New("days must be within [1,366]")
)
