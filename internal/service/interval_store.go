package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/bw-isys-53203/Module3/internal/domain"
	"github.com/bw-isys-53203/Module3/internal/repository"

	"go.uber.org/zap"
)

type cacheKey struct {
	subject domain.SubjectID
	date    string
}

// IntervalStore 按 (subject, date) 读取/替换区间列表，带读穿透缓存
//
// 持久化适配器是唯一可信来源；缓存只在读成功或写成功后更新，从不主动失效。
// 只适用于单写者：其他进程直接写存储后，这里可能读到旧值（测试数据重建时调用 Reset）。
//
// 同一日期的所有 subject 共用一条记录，写入按日期串行。
type IntervalStore struct {
	repo   repository.SleepRecordsRepository
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[cacheKey]domain.IntervalList

	dates dateLocks
}

func NewIntervalStore(repo repository.SleepRecordsRepository, logger *zap.Logger) *IntervalStore {
	return &IntervalStore{
		repo:   repo,
		logger: logger,
		cache:  map[cacheKey]domain.IntervalList{},
		dates:  dateLocks{locks: map[string]*sync.Mutex{}},
	}
}

// Get 返回当前区间列表，未存储时为空列表
func (s *IntervalStore) Get(ctx context.Context, subject domain.SubjectID, date string) (domain.IntervalList, error) {
	key := cacheKey{subject: subject, date: date}

	s.mu.RLock()
	cached, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return cached.Clone(), nil
	}

	rec, err := s.repo.GetRecord(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to read sleep record: %w", err)
	}

	// 一次读取填充该日期所有 subject 的缓存
	s.mu.Lock()
	for _, id := range domain.SubjectIDs() {
		k := cacheKey{subject: id, date: date}
		if _, exists := s.cache[k]; !exists {
			s.cache[k] = rec.Get(id)
		}
	}
	list := s.cache[key].Clone()
	s.mu.Unlock()

	s.logger.Debug("interval cache filled",
		zap.String("subject", string(subject)),
		zap.String("date", date),
		zap.Bool("stored", rec != nil),
	)
	return list, nil
}

// Update 在日期锁内 读取->fn->写回 subject 的区间列表，返回写入的新列表
// fn 的返回值必须已是规范形式，这里不再校验
func (s *IntervalStore) Update(
	ctx context.Context,
	subject domain.SubjectID,
	date string,
	fn func(domain.IntervalList) domain.IntervalList,
) (domain.IntervalList, error) {
	unlock := s.dates.lock(date)
	defer unlock()

	current, err := s.Get(ctx, subject, date)
	if err != nil {
		return nil, err
	}
	updated := fn(current)

	rec, err := s.repo.GetRecord(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to read sleep record: %w", err)
	}
	if rec == nil {
		rec = domain.NewSleepRecord(date)
	}
	rec.Set(subject, updated)

	if err := s.repo.PutRecord(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to write sleep record: %w", err)
	}

	s.mu.Lock()
	s.cache[cacheKey{subject: subject, date: date}] = updated.Clone()
	s.mu.Unlock()
	return updated, nil
}

// Reset 清空缓存
func (s *IntervalStore) Reset() {
	s.mu.Lock()
	s.cache = map[cacheKey]domain.IntervalList{}
	s.mu.Unlock()
}

type dateLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (d *dateLocks) lock(date string) func() {
	d.mu.Lock()
	l, ok := d.locks[date]
	if !ok {
		l = &sync.Mutex{}
		d.locks[date] = l
	}
	d.mu.Unlock()

	l.Lock()
	return l.Unlock
}
