package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bw-isys-53203/Module3/internal/domain"
)

// PostgresSleepRecordsRepository 睡眠记录 Postgres 实现
// 表结构见 SleepRecordsSchema：一行一个日期，record 列保存整条 JSON
type PostgresSleepRecordsRepository struct {
	db *sql.DB
}

func NewPostgresSleepRecordsRepository(db *sql.DB) *PostgresSleepRecordsRepository {
	return &PostgresSleepRecordsRepository{db: db}
}

// 确保实现了接口
var _ SleepRecordsRepository = (*PostgresSleepRecordsRepository)(nil)

// SleepRecordsSchema 建表语句（幂等）
const SleepRecordsSchema = `
CREATE TABLE IF NOT EXISTS sleep_records (
	record_date TEXT PRIMARY KEY,
	record      JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// EnsureSchema 创建 sleep_records 表
func (r *PostgresSleepRecordsRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, SleepRecordsSchema); err != nil {
		return fmt.Errorf("failed to create sleep_records table: %w", err)
	}
	return nil
}

func (r *PostgresSleepRecordsRepository) GetRecord(ctx context.Context, date string) (*domain.SleepRecord, error) {
	if date == "" {
		return nil, fmt.Errorf("date is required")
	}

	query := `
		SELECT record::text
		FROM sleep_records
		WHERE record_date = $1
	`

	var raw string
	err := r.db.QueryRowContext(ctx, query, date).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sleep record: %w", err)
	}

	var rec domain.SleepRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode sleep record %s: %w", date, err)
	}
	rec.Date = date
	return &rec, nil
}

func (r *PostgresSleepRecordsRepository) PutRecord(ctx context.Context, record *domain.SleepRecord) error {
	if record == nil || record.Date == "" {
		return fmt.Errorf("record with date is required")
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode sleep record %s: %w", record.Date, err)
	}

	query := `
		INSERT INTO sleep_records (record_date, record)
		VALUES ($1, $2::jsonb)
		ON CONFLICT (record_date)
		DO UPDATE SET record = EXCLUDED.record,
		              updated_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, record.Date, string(data)); err != nil {
		return fmt.Errorf("failed to put sleep record: %w", err)
	}
	return nil
}

func (r *PostgresSleepRecordsRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sleep_records`); err != nil {
		return fmt.Errorf("failed to clear sleep records: %w", err)
	}
	return nil
}

func (r *PostgresSleepRecordsRepository) ListDates(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT record_date FROM sleep_records ORDER BY record_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sleep record dates: %w", err)
	}
	defer rows.Close()

	dates := make([]string, 0)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan sleep record date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sleep record dates: %w", err)
	}
	return dates, nil
}
