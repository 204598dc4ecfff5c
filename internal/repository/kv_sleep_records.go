package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bw-isys-53203/Module3/internal/domain"
	"github.com/bw-isys-53203/Module3/internal/store"
)

const recordKeyPrefix = "sleeplog:record:"

// KVSleepRecordsRepository 基于 store.KV 的实现（Redis 或内存），每个日期一个 JSON
type KVSleepRecordsRepository struct {
	kv store.KV
}

func NewKVSleepRecordsRepository(kv store.KV) *KVSleepRecordsRepository {
	return &KVSleepRecordsRepository{kv: kv}
}

var _ SleepRecordsRepository = (*KVSleepRecordsRepository)(nil)

func recordKey(date string) string {
	return recordKeyPrefix + date
}

func (r *KVSleepRecordsRepository) GetRecord(ctx context.Context, date string) (*domain.SleepRecord, error) {
	if date == "" {
		return nil, fmt.Errorf("date is required")
	}
	raw, err := r.kv.Get(ctx, recordKey(date))
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sleep record %s: %w", date, err)
	}

	var rec domain.SleepRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode sleep record %s: %w", date, err)
	}
	if rec.Date == "" {
		rec.Date = date
	}
	return &rec, nil
}

func (r *KVSleepRecordsRepository) PutRecord(ctx context.Context, record *domain.SleepRecord) error {
	if record == nil || record.Date == "" {
		return fmt.Errorf("record with date is required")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode sleep record %s: %w", record.Date, err)
	}
	if err := r.kv.Set(ctx, recordKey(record.Date), string(data), 0); err != nil {
		return fmt.Errorf("failed to put sleep record %s: %w", record.Date, err)
	}
	return nil
}

func (r *KVSleepRecordsRepository) Clear(ctx context.Context) error {
	keys, err := r.kv.ScanKeys(ctx, recordKeyPrefix+"*")
	if err != nil {
		return fmt.Errorf("failed to scan sleep records: %w", err)
	}
	if err := r.kv.Del(ctx, keys...); err != nil {
		return fmt.Errorf("failed to clear sleep records: %w", err)
	}
	return nil
}

func (r *KVSleepRecordsRepository) ListDates(ctx context.Context) ([]string, error) {
	keys, err := r.kv.ScanKeys(ctx, recordKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan sleep records: %w", err)
	}
	dates := make([]string, 0, len(keys))
	for _, k := range keys {
		dates = append(dates, strings.TrimPrefix(k, recordKeyPrefix))
	}
	sort.Strings(dates)
	return dates, nil
}
