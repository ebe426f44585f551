package domain

import (
	"fmt"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// TimeOfDay is a wall-clock time with second resolution and no date
// component, stored as seconds since midnight.
type TimeOfDay int

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

// TimeOfDayOf truncates a full timestamp to its local time of day.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", int(t)/3600, int(t)/60%60, int(t)%60)
}
