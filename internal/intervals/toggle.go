// Package intervals 实现睡眠区间集合的切换、规范化与按小时聚合。
// 这里的函数都是纯函数，不修改入参。
package intervals

import (
	"sort"

	"github.com/bw-isys-53203/Module3/internal/domain"
)

// Toggle 翻转 hour 的睡眠状态并返回新的规范区间列表
//
// 若 hour 已在某个区间内（睡眠）：
//   - 单小时区间：删除
//   - hour == start：左端收缩
//   - hour == end-1：右端收缩
//   - 其他：拆分为 [start,hour) 和 [hour+1,end)，后一段紧跟前一段插入
//
// 否则（清醒）：按顺序找第一个 end == hour 的区间向右扩展，
// 或第一个 start == hour+1 的区间向左扩展；都没有则追加 [hour,hour+1)。
// 最后排序并合并重叠/相邻区间。小时在 24 处不回绕。
func Toggle(list domain.IntervalList, hour int) domain.IntervalList {
	out := list.Clone()

	if i, ok := indexOf(out, hour); ok {
		iv := out[i]
		switch {
		case iv.Len() == 1:
			out = append(out[:i], out[i+1:]...)
		case hour == iv.Start:
			out[i].Start++
		case hour == iv.End-1:
			out[i].End--
		default:
			right := domain.Interval{Start: hour + 1, End: iv.End}
			out[i].End = hour
			out = append(out, domain.Interval{})
			copy(out[i+2:], out[i+1:])
			out[i+1] = right
		}
		return Normalize(out)
	}

	extended := false
	for i := range out {
		if hour == out[i].End {
			out[i].End++
			extended = true
			break
		}
		if hour+1 == out[i].Start {
			out[i].Start--
			extended = true
			break
		}
	}
	if !extended {
		out = append(out, domain.Interval{Start: hour, End: hour + 1})
	}
	return Normalize(out)
}

func indexOf(list domain.IntervalList, hour int) (int, bool) {
	for i, iv := range list {
		if iv.Contains(hour) {
			return i, true
		}
	}
	return -1, false
}

// Normalize 按 start 排序，并从左到右合并 a.End >= b.Start 的相邻对
func Normalize(list domain.IntervalList) domain.IntervalList {
	out := list.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})

	merged := out[:0]
	for _, iv := range out {
		if n := len(merged); n > 0 && merged[n-1].End >= iv.Start {
			if iv.End > merged[n-1].End {
				merged[n-1].End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// FromHours 把逐小时的睡眠标记转换为规范区间列表
func FromHours(asleep [domain.HoursPerDay]bool) domain.IntervalList {
	out := domain.IntervalList{}
	for h := 0; h < domain.HoursPerDay; h++ {
		if !asleep[h] {
			continue
		}
		if n := len(out); n > 0 && out[n-1].End == h {
			out[n-1].End++
			continue
		}
		out = append(out, domain.Interval{Start: h, End: h + 1})
	}
	return out
}
