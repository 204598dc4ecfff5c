package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bw-isys-53203/Module3/internal/domain"
	"github.com/bw-isys-53203/Module3/internal/intervals"
	"github.com/bw-isys-53203/Module3/internal/repository"

	"go.uber.org/zap"
)

// Controller 应用状态（当前日期、当前选中的 subject）与全部业务操作的入口
//
// 同一日期上的 读取->切换->写回 串行执行（由 IntervalStore 按日期加锁）；不同日期互不阻塞。
type Controller struct {
	store    *IntervalStore
	records  repository.SleepRecordsRepository
	prefs    repository.PreferencesRepository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time

	mu          sync.RWMutex
	currentDate string
	selected    domain.SubjectID
}

// Option Controller 可选配置
type Option func(*Controller)

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithNotifier 设置刷新通知
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		if n != nil {
			c.notifier = n
		}
	}
}

func NewController(
	records repository.SleepRecordsRepository,
	prefs repository.PreferencesRepository,
	logger *zap.Logger,
	opts ...Option,
) *Controller {
	c := &Controller{
		store:    NewIntervalStore(records, logger),
		records:  records,
		prefs:    prefs,
		notifier: NopNotifier{},
		logger:   logger,
		now:      time.Now,
		selected: domain.SubjectBaby,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.currentDate = domain.FormatDate(c.now())
	return c
}

// ---- 应用状态 ----

func (c *Controller) CurrentDate() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentDate
}

func (c *Controller) SetDate(date string) error {
	if _, err := domain.ParseDate(date); err != nil {
		return err
	}
	c.mu.Lock()
	c.currentDate = date
	c.mu.Unlock()
	return nil
}

// ShiftDate 当前日期前后移动 days 天
func (c *Controller) ShiftDate(days int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := domain.AddDays(c.currentDate, days)
	if err != nil {
		return "", err
	}
	c.currentDate = next
	return next, nil
}

// Today 回到今天
func (c *Controller) Today() string {
	today := domain.FormatDate(c.now())
	c.mu.Lock()
	c.currentDate = today
	c.mu.Unlock()
	return today
}

func (c *Controller) SelectedSubject() domain.SubjectID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}

func (c *Controller) SelectSubject(subject string) (domain.SubjectID, error) {
	id, err := domain.ParseSubject(subject)
	if err != nil {
		c.logger.Warn("select unknown subject", zap.String("subject", subject))
		return "", err
	}
	c.mu.Lock()
	c.selected = id
	c.mu.Unlock()
	return id, nil
}

// Subjects 内置 subject 叠加用户偏好；偏好读取失败时使用默认值
func (c *Controller) Subjects(ctx context.Context) []domain.Subject {
	subjects := domain.Subjects()
	if c.prefs == nil {
		return subjects
	}
	for i, s := range subjects {
		pref, err := c.prefs.Get(ctx, s.ID)
		if err != nil {
			c.logger.Warn("failed to load preference, using defaults",
				zap.String("subject", string(s.ID)),
				zap.Error(err),
			)
			continue
		}
		if pref != nil {
			subjects[i] = pref.Apply(s)
		}
	}
	return subjects
}

// SetPreference 保存偏好并返回生效后的 subject
func (c *Controller) SetPreference(ctx context.Context, subject string, pref domain.Preference) (domain.Subject, error) {
	id, err := domain.ParseSubject(subject)
	if err != nil {
		return domain.Subject{}, err
	}
	if c.prefs == nil {
		return domain.Subject{}, errors.New("preferences are not configured")
	}
	if err := c.prefs.Set(ctx, id, pref); err != nil {
		c.logger.Error("failed to save preference", zap.String("subject", string(id)), zap.Error(err))
		return domain.Subject{}, err
	}
	def, _ := domain.DefaultSubject(id)
	return pref.Apply(def), nil
}

// ---- 区间 ----

// Intervals 读取区间；date 为空时使用当前日期
func (c *Controller) Intervals(ctx context.Context, subject string, date string) (domain.IntervalList, error) {
	id, date, err := c.resolve(subject, date)
	if err != nil {
		return nil, err
	}
	return c.store.Get(ctx, id, date)
}

// ToggleHour 翻转 subject 在 date 这一天 hour 的睡眠状态，持久化后返回新的区间列表
// 未知 subject：记录日志，不做任何修改。持久化失败：记录日志，状态保持不变。
func (c *Controller) ToggleHour(ctx context.Context, subject string, hour int, date string) (domain.IntervalList, error) {
	id, date, err := c.resolve(subject, date)
	if err != nil {
		c.logger.Warn("toggle ignored",
			zap.String("subject", subject),
			zap.String("date", date),
			zap.Int("hour", hour),
			zap.Error(err),
		)
		return nil, err
	}
	if hour < 0 || hour >= domain.HoursPerDay {
		c.logger.Warn("toggle ignored", zap.String("subject", string(id)), zap.Int("hour", hour))
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidHour, hour)
	}

	updated, err := c.store.Update(ctx, id, date, func(current domain.IntervalList) domain.IntervalList {
		return intervals.Toggle(current, hour)
	})
	if err != nil {
		c.logger.Error("toggle aborted",
			zap.String("subject", string(id)),
			zap.String("date", date),
			zap.Int("hour", hour),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("hour toggled",
		zap.String("subject", string(id)),
		zap.String("date", date),
		zap.Int("hour", hour),
		zap.Stringer("intervals", updated),
	)

	ev := newRefreshEvent(EventToggle)
	ev.Subject = id
	ev.Date = date
	ev.Hour = &hour
	ev.Intervals = updated
	c.notify(ctx, ev)

	return updated, nil
}

// ToggleResult 一次点击实际作用的 subject、日期和新的区间列表
type ToggleResult struct {
	Subject   domain.SubjectID
	Date      string
	Intervals domain.IntervalList
}

// ToggleClick 点击入口（界面、HTTP、MQTT 共用）：subject 为空时使用当前选中的 subject，date 为空时使用当前日期
func (c *Controller) ToggleClick(ctx context.Context, subject string, hour int, date string) (ToggleResult, error) {
	if subject == "" {
		subject = string(c.SelectedSubject())
	}
	if date == "" {
		date = c.CurrentDate()
	}
	list, err := c.ToggleHour(ctx, subject, hour, date)
	if err != nil {
		return ToggleResult{}, err
	}
	id, _ := domain.ParseSubject(subject)
	return ToggleResult{Subject: id, Date: date, Intervals: list}, nil
}

// ---- 聚合 ----

// Occupancy 某一天每个 subject 的逐小时 0/1 向量
func (c *Controller) Occupancy(ctx context.Context, date string) (map[domain.SubjectID]intervals.Vector, error) {
	if date == "" {
		date = c.CurrentDate()
	}
	if _, err := domain.ParseDate(date); err != nil {
		return nil, err
	}
	out := make(map[domain.SubjectID]intervals.Vector, len(domain.SubjectIDs()))
	for _, id := range domain.SubjectIDs() {
		list, err := c.store.Get(ctx, id, date)
		if err != nil {
			c.logger.Error("occupancy failed", zap.String("date", date), zap.Error(err))
			return nil, err
		}
		out[id] = intervals.Occupancy(list)
	}
	return out, nil
}

// Aggregate 以当前日期为终点的最近 days 天，按小时累计每个 subject 睡眠的天数
func (c *Controller) Aggregate(ctx context.Context, days int) (map[domain.SubjectID]intervals.Vector, error) {
	dates, err := domain.DateRange(c.CurrentDate(), days)
	if err != nil {
		return nil, err
	}
	out := make(map[domain.SubjectID]intervals.Vector, len(domain.SubjectIDs()))
	for _, id := range domain.SubjectIDs() {
		out[id] = intervals.Vector{}
	}
	for _, date := range dates {
		occ, err := c.Occupancy(ctx, date)
		if err != nil {
			return nil, err
		}
		for id, v := range occ {
			sum := out[id]
			sum.Add(v)
			out[id] = sum
		}
	}
	return out, nil
}

// ListDates 有记录的日期
func (c *Controller) ListDates(ctx context.Context) ([]string, error) {
	return c.records.ListDates(ctx)
}

func (c *Controller) resolve(subject, date string) (domain.SubjectID, string, error) {
	id, err := domain.ParseSubject(subject)
	if err != nil {
		return "", date, err
	}
	if date == "" {
		date = c.CurrentDate()
	}
	if _, err := domain.ParseDate(date); err != nil {
		return "", date, err
	}
	return id, date, nil
}

func (c *Controller) notify(ctx context.Context, ev RefreshEvent) {
	if err := c.notifier.NotifyRefresh(ctx, ev); err != nil {
		c.logger.Warn("refresh notification failed",
			zap.String("type", ev.Type),
			zap.String("event_id", ev.EventID),
			zap.Error(err),
		)
	}
}
