package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/streaks"
)

var (
	ErrHabitTitleEmpty    = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong  = errors.New("habit title is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor       = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidFrequency   = errors.New("frequency must be at least 1")
	ErrInvalidRange       = errors.New("range must be at least 1 day")
	ErrFrequencyOverRange = errors.New("frequency cannot exceed range")
	ErrInvalidCreatedDate = errors.New("invalid created_date (must be YYYY-MM-DD, not before 1970-01-01)")
	ErrHabitArchived      = errors.New("cannot update an archived habit")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	DefaultIcon      = "default_icon"
	DefaultFrequency = 1
	DefaultRange     = 1
	MaxTitleLen      = 100
	MaxDescLen       = 500
)

type Habit struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	SortOrder   int    `json:"sort_order"`

	Frequency   int    `json:"frequency"`
	Range       int    `json:"range"`
	CreatedDate string `json:"created_date"`

	// Streak counters are refreshed by the streak worker after each write and
	// go stale as days pass without one. The KPI endpoints compute live values.
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`

	Version    int        `json:"version"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// ValidateSchedule enforces 1 <= frequency <= range.
func ValidateSchedule(frequency, rangeDays int) error {
	if frequency < 1 {
		return ErrInvalidFrequency
	}
	if rangeDays < 1 {
		return ErrInvalidRange
	}
	if frequency > rangeDays {
		return ErrFrequencyOverRange
	}
	return nil
}

func validateDetails(title, desc, color string) error {
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return ErrHabitTitleEmpty
	}
	if len(trimmedTitle) > MaxTitleLen {
		return ErrHabitTitleTooLong
	}

	if len(strings.TrimSpace(desc)) > MaxDescLen {
		return ErrHabitDescTooLong
	}

	if color != "" && !colorRegex.MatchString(color) {
		return ErrInvalidColor
	}

	return nil
}

// NewHabit builds a validated habit. A zero frequency or range falls back to
// a daily schedule; createdDate must be a YYYY-MM-DD calendar date.
func NewHabit(userID, title, description, color, icon string, frequency, rangeDays int, createdDate string) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	cleanDesc := strings.TrimSpace(description)
	if err := validateDetails(title, cleanDesc, color); err != nil {
		return nil, err
	}

	if frequency == 0 {
		frequency = DefaultFrequency
	}
	if rangeDays == 0 {
		rangeDays = DefaultRange
	}
	if err := ValidateSchedule(frequency, rangeDays); err != nil {
		return nil, err
	}

	if created, err := streaks.ParseDate(createdDate); err != nil || created.Before(streaks.EarliestDate) {
		return nil, ErrInvalidCreatedDate
	}

	if icon == "" {
		icon = DefaultIcon
	}

	now := time.Now().UTC()

	return &Habit{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: cleanDesc,
		Color:       color,
		Icon:        icon,
		Frequency:   frequency,
		Range:       rangeDays,
		CreatedDate: createdDate,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (h *Habit) Update(title, description, color, icon string, frequency, rangeDays int) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	cleanDesc := strings.TrimSpace(description)
	if err := validateDetails(title, cleanDesc, color); err != nil {
		return err
	}
	if err := ValidateSchedule(frequency, rangeDays); err != nil {
		return err
	}

	if icon == "" {
		icon = DefaultIcon
	}

	h.Title = strings.TrimSpace(title)
	h.Description = cleanDesc
	h.Color = color
	h.Icon = icon
	h.Frequency = frequency
	h.Range = rangeDays

	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) ChangePosition(newOrder int) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	h.SortOrder = newOrder
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) Archive() {
	if h.ArchivedAt != nil {
		return
	}

	now := time.Now().UTC()
	h.ArchivedAt = &now
	h.UpdatedAt = now
}

func (h *Habit) Restore() {
	if h.ArchivedAt == nil {
		return
	}
	h.ArchivedAt = nil
	h.UpdatedAt = time.Now().UTC()
}

func (h *Habit) UpdateStreak(current, longest int) {
	h.CurrentStreak = current
	h.LongestStreak = longest
}

// Schedule converts the habit into the engine's schedule.
func (h *Habit) Schedule() (streaks.Schedule, error) {
	created, err := streaks.ParseDate(h.CreatedDate)
	if err != nil {
		return streaks.Schedule{}, ErrInvalidCreatedDate
	}
	return streaks.Schedule{
		Frequency: h.Frequency,
		Range:     h.Range,
		Created:   created,
	}, nil
}
