package streaks

import "fmt"

type Status int

const (
	NotCompleted Status = iota
	Completed
	Skipped
	AutoSkipped
)

var statusNames = [...]string{
	NotCompleted: "NOT_COMPLETED",
	Completed:    "COMPLETED",
	Skipped:      "SKIPPED",
	AutoSkipped:  "AUTO_SKIPPED",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// Alive reports whether a day with this status keeps a streak going.
func (s Status) Alive() bool {
	return s == Completed || s == Skipped || s == AutoSkipped
}

func (s Status) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("unknown day status %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown day status %q", string(text))
}
