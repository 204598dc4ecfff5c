package httpapi

import (
	"bytes"
	"fmt"

	"github.com/bw-isys-53203/Module3/internal/service"

	"github.com/xuri/excelize/v2"
)

const (
	trendSheet   = "Trend"
	summarySheet = "Summary"
)

// GenerateTrendWorkbook 生成趋势视图 Excel 文件
// Trend: 每小时一行，每个 subject 一列（该小时睡眠的天数）
// Summary: 日期范围与每个 subject 的总小时数
func GenerateTrendWorkbook(view *service.TrendView) ([]byte, error) {
	if view == nil {
		return nil, fmt.Errorf("trend view is nil")
	}

	f := excelize.NewFile()

	index, err := f.NewSheet(trendSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	// 表头：Hour + 每个 subject，subject 列使用该 subject 的颜色
	hourStyle, err := newHeaderStyle(f, "#E6F3FF")
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := setStyledCell(f, trendSheet, 1, 1, "Hour", hourStyle); err != nil {
		f.Close()
		return nil, err
	}
	for i, s := range view.Series {
		style, err := newHeaderStyle(f, s.Color)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := setStyledCell(f, trendSheet, i+2, 1, s.Name, style); err != nil {
			f.Close()
			return nil, err
		}
	}

	for h, label := range view.Labels {
		row := h + 2
		if err := setCellValue(f, trendSheet, 1, row, label); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set hour label at row %d: %w", row, err)
		}
		for i, s := range view.Series {
			if h >= len(s.Counts) {
				continue
			}
			if err := setCellValue(f, trendSheet, i+2, row, s.Counts[h]); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set count at row %d, col %d: %w", row, i+2, err)
			}
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(view.Series) + 1)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to convert column number: %w", err)
	}
	if err := f.SetColWidth(trendSheet, "A", "A", 8); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if len(view.Series) > 0 {
		if err := f.SetColWidth(trendSheet, "B", lastCol, 14); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	// 冻结表头
	if err := f.SetPanes(trendSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	if err := writeTrendSummary(f, view, hourStyle); err != nil {
		f.Close()
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTrendSummary(f *excelize.File, view *service.TrendView, headerStyle int) error {
	rows := [][]any{
		{"From", view.From},
		{"To", view.To},
		{"Days", view.Days},
	}
	for _, s := range view.Series {
		rows = append(rows, []any{s.Name + " (hours)", s.Counts.Total()})
	}
	for r, row := range rows {
		if err := setStyledCell(f, summarySheet, 1, r+1, row[0], headerStyle); err != nil {
			return err
		}
		if err := setCellValue(f, summarySheet, 2, r+1, row[1]); err != nil {
			return fmt.Errorf("failed to set summary cell at row %d: %w", r+1, err)
		}
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 18); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

func newHeaderStyle(f *excelize.File, color string) (int, error) {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{color},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}
	return style, nil
}

func setStyledCell(f *excelize.File, sheet string, col, row int, value any, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", cell, err)
	}
	if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
		return fmt.Errorf("failed to set style on %s: %w", cell, err)
	}
	return nil
}

func setCellValue(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
