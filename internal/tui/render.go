package tui

import (
	"fmt"
	"strings"

	"github.com/bw-isys-53203/Module3/internal/domain"
	"github.com/bw-isys-53203/Module3/internal/service"

	"github.com/charmbracelet/lipgloss"
)

const (
	nameWidth = 8
	barWidth  = 10
)

// RenderRadar 单日 24 小时网格，每个 subject 一行；cursor < 0 时不显示光标
func RenderRadar(view *service.RadarView, cursor int) string {
	if view == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(padName("") + hourHeader() + "\n")
	for _, s := range view.Subjects {
		style := subjectStyle(s.Color)
		b.WriteString(style.Render(padName(s.Name)))
		for h, row := range view.Rows {
			cell := " · "
			if row.Values[s.ID] > 0 {
				cell = style.Render(" █ ")
			}
			if h == cursor {
				cell = cursorStyle.Render(cell)
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderTrend 每小时一行，每个 subject 一个条形（该小时睡眠天数 / 总天数）
func RenderTrend(view *service.TrendView) string {
	if view == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Sleep trend %s → %s (%d days)", view.From, view.To, view.Days)))
	b.WriteString("\n")

	header := []string{"   "}
	for _, s := range view.Series {
		header = append(header, subjectStyle(s.Color).Render(fmt.Sprintf("%-*s", barWidth+4, s.Name)))
	}
	b.WriteString(strings.Join(header, " │ ") + "\n")

	for h, label := range view.Labels {
		cols := []string{label + " "}
		for _, s := range view.Series {
			count := 0
			if h < len(s.Counts) {
				count = s.Counts[h]
			}
			cols = append(cols, subjectStyle(s.Color).Render(bar(count, view.Days))+fmt.Sprintf(" %3d", count))
		}
		b.WriteString(strings.Join(cols, " │ ") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderIntervals 单个 subject 某一天的区间
func RenderIntervals(s domain.Subject, date string, list domain.IntervalList) string {
	spans := "none"
	if len(list) > 0 {
		parts := make([]string, 0, len(list))
		for _, iv := range list {
			parts = append(parts, iv.String())
		}
		spans = strings.Join(parts, " ")
	}
	return fmt.Sprintf("%s %s  %s  %s",
		subjectStyle(s.Color).Render(s.Name),
		date,
		spans,
		dimStyle.Render(fmt.Sprintf("(%dh)", list.Hours())),
	)
}

// RenderState 当前日期、subject 列表；选中的 subject 前加 ▶
func RenderState(date string, selected domain.SubjectID, subjects []domain.Subject) string {
	lines := []string{titleStyle.Render("Sleep Log " + date)}
	for _, s := range subjects {
		marker := "  "
		if s.ID == selected {
			marker = "▶ "
		}
		lines = append(lines, marker+subjectStyle(s.Color).Render(s.Name)+dimStyle.Render(" ("+string(s.ID)+")"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func hourHeader() string {
	var b strings.Builder
	for _, l := range domain.HourLabels() {
		b.WriteString(" " + l)
	}
	return dimStyle.Render(b.String())
}

func padName(name string) string {
	if len(name) > nameWidth {
		name = name[:nameWidth]
	}
	return fmt.Sprintf("%-*s", nameWidth, name)
}

func bar(count, total int) string {
	filled := 0
	if total > 0 {
		if count > total {
			count = total
		}
		filled = count * barWidth / total
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}
