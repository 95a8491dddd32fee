package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-streak-engine/internal/core/streaks"
)

const fixtureUser = "habitctl"

type fixtureHabit struct {
	Title       string `json:"title" yaml:"title"`
	Frequency   int    `json:"frequency" yaml:"frequency"`
	Range       int    `json:"range" yaml:"range"`
	CreatedDate string `json:"created_date" yaml:"created_date"`
}

type fixtureTracker struct {
	Dated     string `json:"dated" yaml:"dated"`
	Completed bool   `json:"completed" yaml:"completed"`
	Skipped   bool   `json:"skipped" yaml:"skipped"`
}

type fixture struct {
	Habit    fixtureHabit     `json:"habit" yaml:"habit"`
	Trackers []fixtureTracker `json:"trackers" yaml:"trackers"`
}

func loadFixture(path string) (*fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	fx := &fixture{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, fx)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, fx)
	default:
		return nil, fmt.Errorf("unsupported fixture extension %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return fx, nil
}

// build validates the fixture through the same domain rules the API uses.
func (f *fixture) build() (streaks.Schedule, []streaks.Record, error) {
	title := f.Habit.Title
	if title == "" {
		title = "habit"
	}

	habit, err := domain.NewHabit(fixtureUser, title, "", "", "", f.Habit.Frequency, f.Habit.Range, f.Habit.CreatedDate)
	if err != nil {
		return streaks.Schedule{}, nil, fmt.Errorf("habit: %w", err)
	}

	trackers := make([]*domain.Tracker, 0, len(f.Trackers))
	for i, ft := range f.Trackers {
		t := domain.NewTracker(habit.ID, fixtureUser, ft.Dated, ft.Completed, ft.Skipped, "")
		if err := t.Validate(); err != nil {
			return streaks.Schedule{}, nil, fmt.Errorf("tracker %d (%s): %w", i, ft.Dated, err)
		}
		trackers = append(trackers, t)
	}

	schedule, err := habit.Schedule()
	if err != nil {
		return streaks.Schedule{}, nil, err
	}
	records, err := domain.Records(trackers)
	if err != nil {
		return streaks.Schedule{}, nil, err
	}
	return schedule, records, nil
}
