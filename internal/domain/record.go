package domain

import (
	"encoding/json"
	"fmt"
)

// SleepRecord 以日期为 key 的睡眠记录，每个 subject 一个区间列表
// 存储格式：{"date":"2026-10-17","baby":[[0,6]],"user1":[[0,7],[23,24]]}
type SleepRecord struct {
	Date      string
	Intervals map[SubjectID]IntervalList
}

// NewSleepRecord 创建空记录
func NewSleepRecord(date string) *SleepRecord {
	return &SleepRecord{Date: date, Intervals: map[SubjectID]IntervalList{}}
}

// Get 返回 subject 的区间（不存在时为空列表）
func (r *SleepRecord) Get(subject SubjectID) IntervalList {
	if r == nil || r.Intervals == nil {
		return IntervalList{}
	}
	return r.Intervals[subject].Clone()
}

// Set 替换 subject 的区间
func (r *SleepRecord) Set(subject SubjectID, list IntervalList) {
	if r.Intervals == nil {
		r.Intervals = map[SubjectID]IntervalList{}
	}
	r.Intervals[subject] = list.Clone()
}

// Clone 深拷贝
func (r *SleepRecord) Clone() *SleepRecord {
	if r == nil {
		return nil
	}
	out := NewSleepRecord(r.Date)
	for id, list := range r.Intervals {
		out.Intervals[id] = list.Clone()
	}
	return out
}

func (r SleepRecord) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Intervals)+1)
	m["date"] = r.Date
	for _, id := range SubjectIDs() {
		if list, ok := r.Intervals[id]; ok {
			m[string(id)] = list
		}
	}
	return json.Marshal(m)
}

func (r *SleepRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	rec := SleepRecord{Intervals: map[SubjectID]IntervalList{}}
	if d, ok := raw["date"]; ok {
		if err := json.Unmarshal(d, &rec.Date); err != nil {
			return fmt.Errorf("invalid record date: %w", err)
		}
	}
	for _, id := range SubjectIDs() {
		field, ok := raw[string(id)]
		if !ok || string(field) == "null" {
			continue
		}
		var list IntervalList
		if err := json.Unmarshal(field, &list); err != nil {
			return fmt.Errorf("invalid intervals for %s: %w", id, err)
		}
		rec.Intervals[id] = list
	}
	*r = rec
	return nil
}
