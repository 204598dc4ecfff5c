package service

import (
	"context"
	"testing"

	"github.com/bw-isys-53203/Module3/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTestData_ReplacesAllRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "2025-01-01", domain.SubjectBaby, domain.IntervalList{{Start: 1, End: 2}})

	// 先读一次旧数据，验证重建后缓存被清空
	_, err := f.ctl.Intervals(ctx, "baby", "2026-10-17")
	require.NoError(t, err)

	n, err := f.ctl.GenerateTestData(ctx, 14, 1)
	require.NoError(t, err)
	assert.Equal(t, 14, n)

	dates, err := f.ctl.ListDates(ctx)
	require.NoError(t, err)
	require.Len(t, dates, 14)
	assert.Equal(t, "2026-10-04", dates[0])
	assert.Equal(t, "2026-10-17", dates[13])

	for _, d := range dates {
		for _, id := range domain.SubjectIDs() {
			list, err := f.ctl.Intervals(ctx, string(id), d)
			require.NoError(t, err)
			assert.NoError(t, list.Valid(), "%s %s", d, id)
			assert.NotEmpty(t, list, "%s %s", d, id)
		}
	}

	events := f.notifier.all()
	require.NotEmpty(t, events)
	assert.Equal(t, EventRegenerate, events[len(events)-1].Type)
}

func TestGenerateTestData_DeterministicForSeed(t *testing.T) {
	ctx := context.Background()
	a, b := newFixture(t), newFixture(t)
	_, err := a.ctl.GenerateTestData(ctx, 3, 42)
	require.NoError(t, err)
	_, err = b.ctl.GenerateTestData(ctx, 3, 42)
	require.NoError(t, err)

	for _, id := range domain.SubjectIDs() {
		la, err := a.ctl.Intervals(ctx, string(id), "2026-10-15")
		require.NoError(t, err)
		lb, err := b.ctl.Intervals(ctx, string(id), "2026-10-15")
		require.NoError(t, err)
		assert.Equal(t, la, lb)
	}
}

func TestGenerateTestData_PartialFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.failPuts = 2

	n, err := f.ctl.GenerateTestData(context.Background(), 5, 1)
	require.ErrorIs(t, err, errInjected)
	assert.Equal(t, 2, n)
}

func TestGenerateTestData_RejectsBadDays(t *testing.T) {
	f := newFixture(t)
	for _, days := range []int{0, domain.MaxDays + 1} {
		_, err := f.ctl.GenerateTestData(context.Background(), days, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidDays, "days=%d", days)
	}
	_, puts := f.repo.counts()
	assert.Zero(t, puts)
}
