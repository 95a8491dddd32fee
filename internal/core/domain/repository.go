package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrHabitNotFound   = errors.New("habit not found")
	ErrHabitConflict   = errors.New("habit version conflict")
	ErrTrackerNotFound = errors.New("tracker not found")
)

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves a habit by its unique identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all habits associated with a specific user.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// Update modifies the state of an existing habit.
	// Implementations must reject stale versions with ErrHabitConflict.
	Update(ctx context.Context, habit *Habit) error

	// Delete soft-deletes a habit so it still shows up in sync deltas.
	Delete(ctx context.Context, id string) error

	// GetChanges [SYNC] Returns only the deltas (changes) occurring after a specific date.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Habit, error)

	UpdateStreaks(ctx context.Context, id string, current, longest int) error
}

type TrackerRepository interface {
	// Upsert stores the tracker for (HabitID, Dated), replacing any previous one.
	Upsert(ctx context.Context, tracker *Tracker) error

	GetByDate(ctx context.Context, habitID, dated string) (*Tracker, error)

	// ListByHabitID returns the complete history of a habit, oldest first.
	// The streak engine needs every record.
	ListByHabitID(ctx context.Context, habitID string) ([]*Tracker, error)

	// ListByHabitIDWithRange returns trackers dated within [from, to] (YYYY-MM-DD, inclusive).
	ListByHabitIDWithRange(ctx context.Context, habitID, from, to string) ([]*Tracker, error)

	DeleteByDate(ctx context.Context, habitID, dated string) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
