package service

import (
	"context"
	"encoding/json"

	"github.com/bw-isys-53203/Module3/internal/domain"
	"github.com/bw-isys-53203/Module3/internal/intervals"
)

// RadarRow 雷达图一行：{"hour":"05","baby":1,"user1":0,"user2":0}
type RadarRow struct {
	Hour   string
	Values map[domain.SubjectID]int
}

func (r RadarRow) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Values)+1)
	m["hour"] = r.Hour
	for id, v := range r.Values {
		m[string(id)] = v
	}
	return json.Marshal(m)
}

func (r *RadarRow) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	r.Values = make(map[domain.SubjectID]int, len(m))
	for k, raw := range m {
		if k == "hour" {
			if err := json.Unmarshal(raw, &r.Hour); err != nil {
				return err
			}
			continue
		}
		var v int
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		r.Values[domain.SubjectID(k)] = v
	}
	return nil
}

// RadarView 单日视图
type RadarView struct {
	Date     string           `json:"date"`
	Subjects []domain.Subject `json:"subjects"`
	Rows     []RadarRow       `json:"rows"`
}

// TrendSeries 某个 subject 的 24 小时累计
type TrendSeries struct {
	Subject domain.SubjectID `json:"subject"`
	Name    string           `json:"name"`
	Color   string           `json:"color"`
	Counts  intervals.Vector `json:"counts"`
}

// TrendView 多日趋势视图
type TrendView struct {
	From   string        `json:"from"`
	To     string        `json:"to"`
	Days   int           `json:"days"`
	Labels []string      `json:"labels"`
	Series []TrendSeries `json:"series"`
}

// RadarRows 把单日占用向量转换为 24 行
func RadarRows(occ map[domain.SubjectID]intervals.Vector) []RadarRow {
	rows := make([]RadarRow, domain.HoursPerDay)
	for h := range rows {
		values := make(map[domain.SubjectID]int, len(domain.SubjectIDs()))
		for _, id := range domain.SubjectIDs() {
			values[id] = occ[id][h]
		}
		rows[h] = RadarRow{Hour: domain.HourLabel(h), Values: values}
	}
	return rows
}

// Radar 单日视图（date 为空时使用当前日期）
func (c *Controller) Radar(ctx context.Context, date string) (*RadarView, error) {
	if date == "" {
		date = c.CurrentDate()
	}
	occ, err := c.Occupancy(ctx, date)
	if err != nil {
		return nil, err
	}
	return &RadarView{
		Date:     date,
		Subjects: c.Subjects(ctx),
		Rows:     RadarRows(occ),
	}, nil
}

// Trend 最近 days 天的趋势视图
func (c *Controller) Trend(ctx context.Context, days int) (*TrendView, error) {
	sums, err := c.Aggregate(ctx, days)
	if err != nil {
		return nil, err
	}
	to := c.CurrentDate()
	from, err := domain.AddDays(to, -(days - 1))
	if err != nil {
		return nil, err
	}

	view := &TrendView{
		From:   from,
		To:     to,
		Days:   days,
		Labels: domain.HourLabels(),
	}
	for _, s := range c.Subjects(ctx) {
		view.Series = append(view.Series, TrendSeries{
			Subject: s.ID,
			Name:    s.Name,
			Color:   s.Color,
			Counts:  sums[s.ID],
		})
	}
	return view, nil
}
