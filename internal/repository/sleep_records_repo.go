package repository

import (
	"context"

	"github.com/bw-isys-53203/Module3/internal/domain"
)

// SleepRecordsRepository 按日期存取睡眠记录（持久化适配器，数据的唯一可信来源）
type SleepRecordsRepository interface {
	// GetRecord 记录不存在时返回 (nil, nil)
	GetRecord(ctx context.Context, date string) (*domain.SleepRecord, error)

	// PutRecord 按 date upsert
	PutRecord(ctx context.Context, record *domain.SleepRecord) error

	// Clear 删除全部记录（仅用于测试数据重建）
	Clear(ctx context.Context) error

	// ListDates 有记录的日期，升序
	ListDates(ctx context.Context) ([]string, error)
}
