package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/streaks"
)

var (
	ErrInvalidTracker           = errors.New("invalid tracker data")
	ErrInvalidDate              = errors.New("invalid date (must be YYYY-MM-DD)")
	ErrTrackerConflictingStatus = errors.New("tracker cannot be both completed and skipped")
	ErrTrackerNoteTooLong       = errors.New("tracker note is too long (max 500 chars)")
	ErrUnauthorized             = errors.New("unauthorized access to resource")
)

const MaxNoteLen = 500

// Tracker is the status of one habit on one calendar day. Dated is a local
// date without offset; (HabitID, Dated) is unique.
type Tracker struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`
	UserID  string `json:"user_id" db:"user_id"`

	Dated     string `json:"dated" db:"dated"`
	Completed bool   `json:"completed" db:"completed"`
	Skipped   bool   `json:"skipped" db:"skipped"`
	Note      string `json:"note,omitempty" db:"note"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewTracker(habitID, userID, dated string, completed, skipped bool, note string) *Tracker {
	now := time.Now().UTC()

	return &Tracker{
		HabitID:   habitID,
		UserID:    userID,
		Dated:     dated,
		Completed: completed,
		Skipped:   skipped,
		Note:      strings.TrimSpace(note),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (t *Tracker) Validate() error {
	if strings.TrimSpace(t.HabitID) == "" {
		return fmt.Errorf("%w: habit_id is required", ErrInvalidTracker)
	}
	if strings.TrimSpace(t.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidTracker)
	}
	d, err := streaks.ParseDate(t.Dated)
	if err != nil {
		return ErrInvalidDate
	}
	if d.Before(streaks.EarliestDate) {
		return fmt.Errorf("%w: %s is before %s", ErrInvalidDate, t.Dated, streaks.FormatDate(streaks.EarliestDate))
	}
	if t.Completed && t.Skipped {
		return ErrTrackerConflictingStatus
	}
	if len(t.Note) > MaxNoteLen {
		return ErrTrackerNoteTooLong
	}
	return nil
}

func (t *Tracker) Record() (streaks.Record, error) {
	d, err := streaks.ParseDate(t.Dated)
	if err != nil {
		return streaks.Record{}, fmt.Errorf("tracker %s: %w", t.ID, ErrInvalidDate)
	}
	return streaks.Record{Date: d, Completed: t.Completed, Skipped: t.Skipped}, nil
}

// Records converts trackers for the engine, failing on the first malformed date.
func Records(trackers []*Tracker) ([]streaks.Record, error) {
	out := make([]streaks.Record, 0, len(trackers))
	for _, t := range trackers {
		r, err := t.Record()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
