// Package streaks classifies every day of a habit's history as alive or not
// and derives streaks and completion-rate KPIs from that classification.
//
// An Evaluator is built once per request for a fixed "today" and is read-only
// afterwards. It never reads the wall clock.
package streaks

import (
	"time"
)

const ThirtyDayWindow = 30

// Schedule is a habit's completion goal: Frequency completions within any
// Range consecutive days. Created is the calendar day the habit began.
type Schedule struct {
	Frequency int
	Range     int
	Created   time.Time
}

// Record is one tracker entry for a given calendar day.
type Record struct {
	Date      time.Time
	Completed bool
	Skipped   bool
}

func (r Record) status() Status {
	switch {
	case r.Completed:
		return Completed
	case r.Skipped:
		return Skipped
	default:
		return NotCompleted
	}
}

type Streak struct {
	StartDate string `json:"startDate" yaml:"startDate"`
	EndDate   string `json:"endDate" yaml:"endDate"`
	Length    int    `json:"length" yaml:"length"`
}

type DayStatus struct {
	Date   string `json:"date" yaml:"date"`
	Status Status `json:"status" yaml:"status"`
}

type Summary struct {
	CurrentStreak           int     `json:"current_streak" yaml:"current_streak"`
	LongestStreak           int     `json:"longest_streak" yaml:"longest_streak"`
	TotalCompletions        int     `json:"total_completions" yaml:"total_completions"`
	ThirtyDayCompletionRate float64 `json:"thirty_day_completion_rate" yaml:"thirty_day_completion_rate"`
	OverallCompletionRate   float64 `json:"overall_completion_rate" yaml:"overall_completion_rate"`
	LastCompletedDate       *string `json:"last_completed_date" yaml:"last_completed_date"`
}

type Evaluator struct {
	schedule Schedule
	today    time.Time
	start    time.Time

	// statuses[i] is the status of start+i days; empty when start is after today.
	statuses []Status

	totalCompletions int
	lastCompleted    string
}

// New indexes records and classifies every day from the effective start date
// through today. When several records share a date the later one in the
// slice wins.
func New(schedule Schedule, records []Record, today time.Time) *Evaluator {
	today = Day(today)

	byDay := make(map[time.Time]Record, len(records))
	for _, r := range records {
		byDay[Day(r.Date)] = r
	}

	start := Day(schedule.Created)
	ev := &Evaluator{schedule: schedule, today: today}

	for d, r := range byDay {
		if (r.Completed || r.Skipped) && d.Before(start) {
			start = d
		}
		if r.Completed {
			ev.totalCompletions++
			if key := FormatDate(d); key > ev.lastCompleted {
				ev.lastCompleted = key
			}
		}
	}
	ev.start = start

	if start.After(today) {
		return ev
	}

	window := schedule.Range
	if window < 1 {
		window = 1
	}

	n := daysBetween(start, today) + 1
	prefix := make([]int, n+1)
	ev.statuses = make([]Status, n)

	for i := 0; i < n; i++ {
		rec, ok := byDay[start.AddDate(0, 0, i)]

		prefix[i+1] = prefix[i]
		if ok && rec.Completed {
			prefix[i+1]++
		}

		if ok {
			ev.statuses[i] = rec.status()
			continue
		}

		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		if prefix[i+1]-prefix[lo] >= schedule.Frequency {
			ev.statuses[i] = AutoSkipped
		} else {
			ev.statuses[i] = NotCompleted
		}
	}

	return ev
}

func (e *Evaluator) Today() time.Time { return e.today }

// EffectiveStart is the earlier of the habit's creation day and its
// earliest completed or skipped record.
func (e *Evaluator) EffectiveStart() time.Time { return e.start }

// Status classifies d. Days outside [EffectiveStart, Today] are NotCompleted.
func (e *Evaluator) Status(d time.Time) Status {
	i, ok := e.index(Day(d))
	if !ok {
		return NotCompleted
	}
	return e.statuses[i]
}

func (e *Evaluator) index(d time.Time) (int, bool) {
	if d.Before(e.start) || d.After(e.today) {
		return 0, false
	}
	return daysBetween(e.start, d), true
}

func (e *Evaluator) dayAt(i int) time.Time {
	return e.start.AddDate(0, 0, i)
}

// Streaks returns every maximal run of alive days, oldest first.
func (e *Evaluator) Streaks() []Streak {
	result := []Streak{}
	var open *Streak

	for i, st := range e.statuses {
		if st.Alive() {
			day := FormatDate(e.dayAt(i))
			if open == nil {
				open = &Streak{StartDate: day}
			}
			open.EndDate = day
			open.Length++
			continue
		}
		if open != nil {
			result = append(result, *open)
			open = nil
		}
	}
	if open != nil {
		result = append(result, *open)
	}

	return result
}

// CurrentStreak is the length of the streak that reaches today, or 0.
func (e *Evaluator) CurrentStreak() int {
	return currentStreak(e.Streaks(), e.today)
}

func (e *Evaluator) LongestStreak() int {
	return longestStreak(e.Streaks())
}

func currentStreak(list []Streak, today time.Time) int {
	if len(list) == 0 {
		return 0
	}
	last := list[len(list)-1]
	if last.EndDate != FormatDate(today) {
		return 0
	}
	return last.Length
}

func longestStreak(list []Streak) int {
	longest := 0
	for _, s := range list {
		if s.Length > longest {
			longest = s.Length
		}
	}
	return longest
}

// CompletionRate is the lifetime share of alive days, as a percentage.
func (e *Evaluator) CompletionRate() float64 {
	return e.rateFrom(0)
}

// TrailingCompletionRate covers today minus windowDays through today,
// clipped to EffectiveStart.
func (e *Evaluator) TrailingCompletionRate(windowDays int) float64 {
	from := e.today.AddDate(0, 0, -windowDays)
	if from.Before(e.start) {
		return e.rateFrom(0)
	}
	return e.rateFrom(daysBetween(e.start, from))
}

func (e *Evaluator) rateFrom(first int) float64 {
	total, alive := 0, 0
	for i := first; i < len(e.statuses); i++ {
		total++
		if e.statuses[i].Alive() {
			alive++
		}
	}
	if total == 0 {
		return 0
	}
	return 100 * float64(alive) / float64(total)
}

// Days lists the classification of every day in [from, to] that lies within
// [EffectiveStart, Today], in ascending order.
func (e *Evaluator) Days(from, to time.Time) []DayStatus {
	from, to = Day(from), Day(to)
	if from.Before(e.start) {
		from = e.start
	}
	if to.After(e.today) {
		to = e.today
	}

	days := []DayStatus{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		i, _ := e.index(d)
		days = append(days, DayStatus{Date: FormatDate(d), Status: e.statuses[i]})
	}
	return days
}

func (e *Evaluator) Summary() Summary {
	list := e.Streaks()

	s := Summary{
		CurrentStreak:           currentStreak(list, e.today),
		LongestStreak:           longestStreak(list),
		TotalCompletions:        e.totalCompletions,
		ThirtyDayCompletionRate: e.TrailingCompletionRate(ThirtyDayWindow),
		OverallCompletionRate:   e.CompletionRate(),
	}
	if e.lastCompleted != "" {
		last := e.lastCompleted
		s.LastCompletedDate = &last
	}
	return s
}
