package intervals

import "github.com/bw-isys-53203/Module3/internal/domain"

// Vector 24 小时的占用向量（单日为 0/1，多日为累计天数）
type Vector [domain.HoursPerDay]int

// Occupancy 展开区间为逐小时 0/1 向量
// 从 start 开始按 (h+1)%24 步进 (end-start) mod 24 步；end-start == 24 表示整天。
// 规范数据不会出现 start > end，步进方式只是让跨零点的外部数据也能展开。
func Occupancy(list domain.IntervalList) Vector {
	var v Vector
	for _, iv := range list {
		steps := iv.End - iv.Start
		if steps < 0 {
			steps += domain.HoursPerDay
		}
		if steps > domain.HoursPerDay {
			steps = domain.HoursPerDay
		}
		h := mod24(iv.Start)
		for i := 0; i < steps; i++ {
			v[h] = 1
			h = (h + 1) % domain.HoursPerDay
		}
	}
	return v
}

// Add 逐元素累加
func (v *Vector) Add(o Vector) {
	for h := range v {
		v[h] += o[h]
	}
}

// Total 向量元素之和
func (v Vector) Total() int {
	total := 0
	for _, n := range v {
		total += n
	}
	return total
}

// Sum 逐元素求和
func Sum(vs ...Vector) Vector {
	var out Vector
	for _, v := range vs {
		out.Add(v)
	}
	return out
}

func mod24(h int) int {
	h %= domain.HoursPerDay
	if h < 0 {
		h += domain.HoursPerDay
	}
	return h
}
