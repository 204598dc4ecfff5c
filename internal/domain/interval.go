package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// HoursPerDay 一天的小时格数
const HoursPerDay = 24

// Interval 半开区间 [Start, End)，单位为小时
type Interval struct {
	Start int
	End   int
}

// Len 区间覆盖的小时数
func (iv Interval) Len() int {
	return iv.End - iv.Start
}

// Contains hour 是否落在 [Start, End) 内
func (iv Interval) Contains(hour int) bool {
	return hour >= iv.Start && hour < iv.End
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%d,%d)", iv.Start, iv.End)
}

// MarshalJSON 编码为 [start, end]
func (iv Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{iv.Start, iv.End})
}

// UnmarshalJSON 解析 [start, end]
func (iv *Interval) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("interval must be [start,end]: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("interval must have exactly 2 elements, got %d", len(pair))
	}
	iv.Start, iv.End = pair[0], pair[1]
	return nil
}

// IntervalList 某个 subject 某一天的睡眠区间集合
// 规范形式：按 Start 升序，两两不重叠且不相邻（intervals[i].End < intervals[i+1].Start）
type IntervalList []Interval

// Clone 深拷贝
func (l IntervalList) Clone() IntervalList {
	if l == nil {
		return IntervalList{}
	}
	out := make(IntervalList, len(l))
	copy(out, l)
	return out
}

// Valid 检查规范形式与边界 0 <= start < end <= 24
func (l IntervalList) Valid() error {
	for i, iv := range l {
		if iv.Start < 0 || iv.End > HoursPerDay || iv.Start >= iv.End {
			return fmt.Errorf("interval %d %s out of bounds", i, iv)
		}
		if i > 0 && l[i-1].End >= iv.Start {
			return fmt.Errorf("intervals %s and %s overlap or touch", l[i-1], iv)
		}
	}
	return nil
}

// Hours 区间覆盖的总小时数
func (l IntervalList) Hours() int {
	total := 0
	for _, iv := range l {
		total += iv.Len()
	}
	return total
}

func (l IntervalList) String() string {
	parts := make([]string, 0, len(l))
	for _, iv := range l {
		parts = append(parts, iv.String())
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// MarshalJSON 空列表编码为 [] 而不是 null
func (l IntervalList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Interval(l))
}
