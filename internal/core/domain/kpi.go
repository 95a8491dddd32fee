package domain

import (
	"time"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/streaks"
)

// HabitKPI is the per-habit KPI object returned by the API.
type HabitKPI struct {
	ID string `json:"id"`
	streaks.Summary
}

type KPIQuery struct {
	HabitID  string
	UserID   string
	Location *time.Location
}

type DaysQuery struct {
	KPIQuery
	From string
	To   string
}
