package consent

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Retention durations use a fixed three-token grammar: a count followed by
// d (days), m (months) or y (years), e.g. "90d", "6m", "1y".
var durationPattern = regexp.MustCompile(`^(\d+)([dmy])$`)

// ParseRetention resolves a retention duration into the date it ends,
// counting from the given start.
func ParseRetention(duration string, from time.Time) (time.Time, error) {
	match := durationPattern.FindStringSubmatch(duration)
	if match == nil {
		return time.Time{}, fmt.Errorf("invalid retention duration %q: expected <count><d|m|y>", duration)
	}

	count, err := strconv.Atoi(match[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid retention count in %q: %w", duration, err)
	}

	switch match[2] {
	case "d":
		return from.AddDate(0, 0, count), nil
	case "m":
		return from.AddDate(0, count, 0), nil
	default:
		return from.AddDate(count, 0, 0), nil
	}
}
