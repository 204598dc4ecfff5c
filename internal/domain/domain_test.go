package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSleepRecord_JSONShape(t *testing.T) {
	rec := NewSleepRecord("2026-10-17")
	rec.Set(SubjectBaby, IntervalList{{Start: 0, End: 6}, {Start: 13, End: 15}})
	rec.Set(SubjectUser2, nil)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2026-10-17","baby":[[0,6],[13,15]],"user2":[]}`, string(data))
}

func TestSleepRecord_UnmarshalTolerantOfMissingAndUnknownFields(t *testing.T) {
	var rec SleepRecord
	err := json.Unmarshal([]byte(`{"date":"2026-10-16","user1":[[22,24]],"user2":null,"theme":"dark"}`), &rec)
	require.NoError(t, err)

	assert.Equal(t, "2026-10-16", rec.Date)
	assert.Equal(t, IntervalList{{Start: 22, End: 24}}, rec.Get(SubjectUser1))
	assert.Empty(t, rec.Get(SubjectBaby))
	assert.Empty(t, rec.Get(SubjectUser2))
}

func TestSleepRecord_UnmarshalRejectsBadInterval(t *testing.T) {
	var rec SleepRecord
	err := json.Unmarshal([]byte(`{"date":"2026-10-16","baby":[[1,2,3]]}`), &rec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baby")
}

func TestSleepRecord_GetReturnsCopy(t *testing.T) {
	rec := NewSleepRecord("2026-10-17")
	rec.Set(SubjectBaby, IntervalList{{Start: 1, End: 3}})

	got := rec.Get(SubjectBaby)
	got[0].End = 9
	assert.Equal(t, 3, rec.Get(SubjectBaby)[0].End)
}

func TestIntervalList_Valid(t *testing.T) {
	assert.NoError(t, IntervalList{}.Valid())
	assert.NoError(t, IntervalList{{0, 2}, {3, 24}}.Valid())
	assert.Error(t, IntervalList{{0, 2}, {2, 4}}.Valid(), "adjacent")
	assert.Error(t, IntervalList{{3, 5}, {1, 2}}.Valid(), "unsorted")
	assert.Error(t, IntervalList{{5, 5}}.Valid(), "empty")
	assert.Error(t, IntervalList{{20, 25}}.Valid(), "out of range")
	assert.Equal(t, 23, IntervalList{{0, 2}, {3, 24}}.Hours())
}

func TestParseSubject(t *testing.T) {
	id, err := ParseSubject(" Baby ")
	require.NoError(t, err)
	assert.Equal(t, SubjectBaby, id)

	_, err = ParseSubject("grandma")
	assert.True(t, errors.Is(err, ErrUnknownSubject))
}

func TestPreference_ApplyKeepsDefaultsForBlankFields(t *testing.T) {
	def, ok := DefaultSubject(SubjectUser1)
	require.True(t, ok)

	got := Preference{Name: "  "}.Apply(def)
	assert.Equal(t, def, got)

	got = Preference{Name: "Alex", Color: "#00ff00"}.Apply(def)
	assert.Equal(t, "Alex", got.Name)
	assert.Equal(t, "#00ff00", got.Color)
	assert.Equal(t, SubjectUser1, got.ID)
}

func TestDateRange_OldestToNewest(t *testing.T) {
	dates, err := DateRange("2026-03-02", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-02-28", "2026-03-01", "2026-03-02"}, dates)

	_, err = DateRange("2026-03-02", 0)
	assert.ErrorIs(t, err, ErrInvalidDays)

	_, err = DateRange("03/02/2026", 1)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateRange_Bounds(t *testing.T) {
	dates, err := DateRange("2026-10-17", MaxDays)
	require.NoError(t, err)
	require.Len(t, dates, MaxDays)
	assert.Equal(t, "2025-10-17", dates[0])
	assert.Equal(t, "2026-10-17", dates[MaxDays-1])

	for _, days := range []int{-1, 0, MaxDays + 1, 200000} {
		_, err := DateRange("2026-10-17", days)
		assert.ErrorIs(t, err, ErrInvalidDays, "days=%d", days)
	}
}

func TestAddDays(t *testing.T) {
	next, err := AddDays("2026-12-31", 1)
	require.NoError(t, err)
	assert.Equal(t, "2027-01-01", next)
	assert.Equal(t, "05", HourLabel(5))
	assert.Len(t, HourLabels(), HoursPerDay)
}
