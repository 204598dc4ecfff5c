package service

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/bw-isys-53203/Module3/internal/domain"
	"github.com/bw-isys-53203/Module3/internal/intervals"

	"go.uber.org/zap"
)

// GenerateTestData 清空全部记录，并为以当前日期结尾的 days 天生成示例数据
// 同一个 seed 生成的数据相同。返回写入的记录数。
func (c *Controller) GenerateTestData(ctx context.Context, days int, seed int64) (int, error) {
	dates, err := domain.DateRange(c.CurrentDate(), days)
	if err != nil {
		return 0, err
	}

	if err := c.records.Clear(ctx); err != nil {
		c.logger.Error("failed to clear sleep records", zap.Error(err))
		return 0, err
	}
	c.store.Reset()

	rng := rand.New(rand.NewSource(seed))
	written := 0
	for _, date := range dates {
		rec := domain.NewSleepRecord(date)
		rec.Set(domain.SubjectBaby, infantDay(rng))
		rec.Set(domain.SubjectUser1, adultDay(rng))
		rec.Set(domain.SubjectUser2, adultDay(rng))

		if err := c.records.PutRecord(ctx, rec); err != nil {
			c.logger.Error("failed to write generated record", zap.String("date", date), zap.Error(err))
			c.store.Reset()
			return written, fmt.Errorf("generated %d of %d records: %w", written, len(dates), err)
		}
		written++
	}
	c.store.Reset()

	c.logger.Info("test data regenerated", zap.Int("days", days), zap.Int64("seed", seed))

	ev := newRefreshEvent(EventRegenerate)
	ev.Date = c.CurrentDate()
	ev.Days = days
	c.notify(ctx, ev)

	return written, nil
}

// adultDay 夜间睡眠：入睡 21~23 点，起床 5~8 点
func adultDay(rng *rand.Rand) domain.IntervalList {
	var asleep [domain.HoursPerDay]bool
	wake := 5 + rng.Intn(4)
	bed := 21 + rng.Intn(3)
	markNight(&asleep, bed, wake)
	return intervals.FromHours(asleep)
}

// infantDay 夜间睡眠加 1~3 次白天小睡
func infantDay(rng *rand.Rand) domain.IntervalList {
	var asleep [domain.HoursPerDay]bool
	wake := 5 + rng.Intn(3)
	bed := 18 + rng.Intn(3)
	markNight(&asleep, bed, wake)

	naps := 1 + rng.Intn(3)
	for i := 0; i < naps; i++ {
		start := 9 + rng.Intn(8)
		length := 1 + rng.Intn(2)
		for h := start; h < start+length && h < bed; h++ {
			asleep[h] = true
		}
	}
	return intervals.FromHours(asleep)
}

func markNight(asleep *[domain.HoursPerDay]bool, bed, wake int) {
	for h := 0; h < wake; h++ {
		asleep[h] = true
	}
	for h := bed; h < domain.HoursPerDay; h++ {
		asleep[h] = true
	}
}
