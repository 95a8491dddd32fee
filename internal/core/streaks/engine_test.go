package streaks

import (
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return today.AddDate(0, 0, -n)
}

func done(n int) Record    { return Record{Date: daysAgo(n), Completed: true} }
func skipped(n int) Record { return Record{Date: daysAgo(n), Skipped: true} }

func daily(created time.Time) Schedule {
	return Schedule{Frequency: 1, Range: 1, Created: created}
}

func TestEvaluator_NoHistory(t *testing.T) {
	ev := New(daily(today), nil, today)

	assert.Empty(t, ev.Streaks())
	assert.Equal(t, NotCompleted, ev.Status(today))

	s := ev.Summary()
	assert.Equal(t, 0, s.CurrentStreak)
	assert.Equal(t, 0, s.LongestStreak)
	assert.Equal(t, 0, s.TotalCompletions)
	assert.Equal(t, 0.0, s.ThirtyDayCompletionRate)
	assert.Equal(t, 0.0, s.OverallCompletionRate)
	assert.Nil(t, s.LastCompletedDate)
}

func TestEvaluator_DailyRunEndingToday(t *testing.T) {
	records := []Record{done(4), done(3), done(2), done(1), done(0)}
	ev := New(daily(daysAgo(4)), records, today)

	list := ev.Streaks()
	require.Len(t, list, 1)
	assert.Equal(t, Streak{StartDate: "2024-03-11", EndDate: "2024-03-15", Length: 5}, list[0])
	assert.Equal(t, 5, ev.CurrentStreak())
	assert.Equal(t, 5, ev.LongestStreak())
	assert.Equal(t, 100.0, ev.CompletionRate())
}

func TestEvaluator_WeeklyAutoSkip(t *testing.T) {
	first := daysAgo(6)
	weekly := Schedule{Frequency: 1, Range: 7, Created: first}
	ev := New(weekly, []Record{{Date: first, Completed: true}}, today)

	assert.Equal(t, Completed, ev.Status(first))
	for i := 1; i < 7; i++ {
		assert.Equal(t, AutoSkipped, ev.Status(first.AddDate(0, 0, i)), "day %d", i+1)
	}

	list := ev.Streaks()
	require.Len(t, list, 1)
	assert.Equal(t, 7, list[0].Length)
	assert.Equal(t, 7, ev.CurrentStreak())

	t.Run("Window expires on day 8", func(t *testing.T) {
		later := today.AddDate(0, 0, 3)
		ev := New(weekly, []Record{{Date: first, Completed: true}}, later)

		assert.Equal(t, NotCompleted, ev.Status(first.AddDate(0, 0, 7)))
		list := ev.Streaks()
		require.Len(t, list, 1)
		assert.Equal(t, 7, list[0].Length)
		assert.Equal(t, 0, ev.CurrentStreak())
		assert.InDelta(t, 70.0, ev.CompletionRate(), 0.0001)
	})
}

func TestEvaluator_BrokenStreak(t *testing.T) {
	records := []Record{done(4), done(3), done(2), done(0)}
	ev := New(daily(daysAgo(4)), records, today)

	assert.Equal(t, []Streak{
		{StartDate: "2024-03-11", EndDate: "2024-03-13", Length: 3},
		{StartDate: "2024-03-15", EndDate: "2024-03-15", Length: 1},
	}, ev.Streaks())
	assert.Equal(t, 1, ev.CurrentStreak())
	assert.Equal(t, 3, ev.LongestStreak())

	t.Run("Last completion is not today", func(t *testing.T) {
		ev := New(daily(daysAgo(4)), records, today.AddDate(0, 0, 1))
		assert.Equal(t, 0, ev.CurrentStreak())
		assert.Equal(t, 3, ev.LongestStreak())
	})
}

func TestEvaluator_EffectiveStart(t *testing.T) {
	t.Run("Imported completion predates creation", func(t *testing.T) {
		records := []Record{done(3), done(2), done(1), done(0)}
		ev := New(daily(today), records, today)

		assert.Equal(t, daysAgo(3), ev.EffectiveStart())
		assert.Equal(t, 4, ev.CurrentStreak())
		assert.Equal(t, "2024-03-12", ev.Streaks()[0].StartDate)
	})

	t.Run("Imported skip predates creation", func(t *testing.T) {
		ev := New(daily(today), []Record{skipped(2)}, today)
		assert.Equal(t, daysAgo(2), ev.EffectiveStart())
		assert.InDelta(t, 100.0/3, ev.CompletionRate(), 0.0001)
	})

	t.Run("Blank record does not move the start", func(t *testing.T) {
		ev := New(daily(today), []Record{{Date: daysAgo(5)}}, today)
		assert.Equal(t, today, ev.EffectiveStart())
	})

	t.Run("Habit created in the future", func(t *testing.T) {
		ev := New(daily(today.AddDate(0, 0, 2)), nil, today)
		assert.Empty(t, ev.Streaks())
		assert.Empty(t, ev.Days(daysAgo(10), today))
		assert.Equal(t, 0.0, ev.CompletionRate())
	})
}

func TestEvaluator_RecordStatusPrecedence(t *testing.T) {
	weekly := Schedule{Frequency: 1, Range: 7, Created: daysAgo(3)}
	records := []Record{
		{Date: daysAgo(3), Completed: true, Skipped: true},
		{Date: daysAgo(1)},
	}
	ev := New(weekly, records, today)

	assert.Equal(t, Completed, ev.Status(daysAgo(3)))
	assert.Equal(t, AutoSkipped, ev.Status(daysAgo(2)))
	assert.Equal(t, NotCompleted, ev.Status(daysAgo(1)), "an explicit blank record is not auto-skipped")
	assert.Equal(t, AutoSkipped, ev.Status(today))
	assert.Len(t, ev.Streaks(), 2)
}

func TestEvaluator_MultipleCompletionsPerWindow(t *testing.T) {
	schedule := Schedule{Frequency: 2, Range: 3, Created: daysAgo(4)}
	ev := New(schedule, []Record{done(4), done(3)}, today)

	assert.Equal(t, []DayStatus{
		{Date: "2024-03-11", Status: Completed},
		{Date: "2024-03-12", Status: Completed},
		{Date: "2024-03-13", Status: AutoSkipped},
		{Date: "2024-03-14", Status: NotCompleted},
		{Date: "2024-03-15", Status: NotCompleted},
	}, ev.Days(daysAgo(10), today))

	t.Run("A single completion never meets a goal of two", func(t *testing.T) {
		ev := New(schedule, []Record{done(4)}, today)
		assert.Equal(t, NotCompleted, ev.Status(daysAgo(3)))
	})
}

func TestEvaluator_DuplicateDatesLastWins(t *testing.T) {
	records := []Record{
		done(0),
		{Date: today.Add(9 * time.Hour), Skipped: true},
	}
	ev := New(daily(today), records, today)

	assert.Equal(t, Skipped, ev.Status(today))
	assert.Equal(t, 0, ev.Summary().TotalCompletions)
}

func TestEvaluator_CompletionRates(t *testing.T) {
	t.Run("Trailing window is clipped to the effective start", func(t *testing.T) {
		records := []Record{done(4), done(3), done(2), done(1), done(0)}
		ev := New(daily(daysAgo(4)), records, today)

		assert.Equal(t, 100.0, ev.TrailingCompletionRate(ThirtyDayWindow))
	})

	t.Run("Trailing window spans today minus thirty days", func(t *testing.T) {
		var records []Record
		for i := 0; i <= 30; i++ {
			records = append(records, done(i))
		}
		ev := New(daily(daysAgo(40)), records, today)

		s := ev.Summary()
		assert.Equal(t, 100.0, s.ThirtyDayCompletionRate)
		assert.InDelta(t, 100*31.0/41.0, s.OverallCompletionRate, 0.0001)
		assert.Equal(t, 31, s.TotalCompletions)
		require.NotNil(t, s.LastCompletedDate)
		assert.Equal(t, "2024-03-15", *s.LastCompletedDate)
	})

	t.Run("Rates stay within bounds", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for n := 0; n < 50; n++ {
			records, schedule := randomHistory(rng)
			s := New(schedule, records, today).Summary()

			assert.GreaterOrEqual(t, s.ThirtyDayCompletionRate, 0.0)
			assert.LessOrEqual(t, s.ThirtyDayCompletionRate, 100.0)
			assert.GreaterOrEqual(t, s.OverallCompletionRate, 0.0)
			assert.LessOrEqual(t, s.OverallCompletionRate, 100.0)
		}
	})
}

func TestEvaluator_FutureRecordsAreNotClassified(t *testing.T) {
	tomorrow := today.AddDate(0, 0, 1)
	ev := New(daily(today), []Record{done(0), {Date: tomorrow, Completed: true}}, today)

	assert.Equal(t, NotCompleted, ev.Status(tomorrow))
	assert.Equal(t, []Streak{{StartDate: "2024-03-15", EndDate: "2024-03-15", Length: 1}}, ev.Streaks())
	s := ev.Summary()
	assert.Equal(t, 2, s.TotalCompletions)
	assert.Equal(t, "2024-03-16", *s.LastCompletedDate)
}

func TestEvaluator_Idempotent(t *testing.T) {
	records := []Record{done(9), skipped(8), done(5), done(1)}
	schedule := Schedule{Frequency: 1, Range: 3, Created: daysAgo(9)}

	a := New(schedule, records, today)
	b := New(schedule, records, today)

	assert.Equal(t, a.Streaks(), b.Streaks())
	assert.Equal(t, a.Summary(), b.Summary())
	assert.Equal(t, a.Summary(), a.Summary())
}

func TestEvaluator_MatchesNaiveWindowScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for n := 0; n < 200; n++ {
		records, schedule := randomHistory(rng)
		ev := New(schedule, records, today)

		for d := ev.EffectiveStart(); !d.After(today); d = d.AddDate(0, 0, 1) {
			want := naiveStatus(schedule, records, ev.EffectiveStart(), d)
			require.Equal(t, want, ev.Status(d), "schedule %+v day %s", schedule, FormatDate(d))
		}
	}
}

func TestStatus_Text(t *testing.T) {
	raw, err := json.Marshal([]Status{NotCompleted, Completed, Skipped, AutoSkipped})
	require.NoError(t, err)
	assert.JSONEq(t, `["NOT_COMPLETED","COMPLETED","SKIPPED","AUTO_SKIPPED"]`, string(raw))

	var back []Status
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, []Status{NotCompleted, Completed, Skipped, AutoSkipped}, back)

	var s Status
	assert.Error(t, s.UnmarshalText([]byte("DONE")))
}

func TestSummary_JSONShape(t *testing.T) {
	raw, err := json.Marshal(New(daily(today), nil, today).Summary())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"current_streak": 0,
		"longest_streak": 0,
		"total_completions": 0,
		"thirty_day_completion_rate": 0,
		"overall_completion_rate": 0,
		"last_completed_date": null
	}`, string(raw))
}

func randomHistory(rng *rand.Rand) ([]Record, Schedule) {
	rangeDays := 1 + rng.Intn(7)
	schedule := Schedule{
		Frequency: 1 + rng.Intn(rangeDays),
		Range:     rangeDays,
		Created:   daysAgo(rng.Intn(30)),
	}

	var records []Record
	for i := 0; i < 45; i++ {
		if rng.Intn(3) != 0 {
			continue
		}
		r := Record{Date: daysAgo(i)}
		switch rng.Intn(4) {
		case 0, 1:
			r.Completed = true
		case 2:
			r.Skipped = true
		}
		records = append(records, r)
	}
	return records, schedule
}

func naiveStatus(schedule Schedule, records []Record, start, d time.Time) Status {
	for _, r := range records {
		if Day(r.Date).Equal(d) {
			return r.status()
		}
	}

	from := d.AddDate(0, 0, -(schedule.Range - 1))
	if from.Before(start) {
		from = start
	}
	count := 0
	for _, r := range records {
		rd := Day(r.Date)
		if r.Completed && !rd.Before(from) && !rd.After(d) {
			count++
		}
	}
	if count >= schedule.Frequency {
		return AutoSkipped
	}
	return NotCompleted
}
