package digest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NextRun returns the next delivery time after baseTime for a schedule
// expression. Supported forms are @hourly, @daily, @weekly, @monthly,
// and "@every <duration>" where the duration accepts a trailing "d"
// for days.
func NextRun(expr string, baseTime time.Time) (time.Time, error) {
	expr = strings.TrimSpace(expr)

	switch {
	case expr == "@monthly":
		return nextMonth(baseTime), nil
	case expr == "@weekly":
		return nextWeek(baseTime), nil
	case expr == "@daily":
		return nextDay(baseTime), nil
	case expr == "@hourly":
		return nextHour(baseTime), nil
	case strings.HasPrefix(expr, "@every "):
		return parseEveryDuration(strings.TrimPrefix(expr, "@every "), baseTime)
	default:
		return time.Time{}, fmt.Errorf("unsupported schedule expression: %s", expr)
	}
}

func parseEveryDuration(duration string, baseTime time.Time) (time.Time, error) {
	// time.ParseDuration has no day unit
	if strings.HasSuffix(duration, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(duration, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid duration: %s", duration)
		}
		return baseTime.Add(time.Duration(days) * 24 * time.Hour), nil
	}

	d, err := time.ParseDuration(duration)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration: %s", duration)
	}
	return baseTime.Add(d), nil
}

func nextMonth(t time.Time) time.Time {
	year := t.Year()
	month := t.Month() + 1
	if month > 12 {
		month = 1
		year++
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
}

func nextWeek(t time.Time) time.Time {
	daysUntilSunday := (7 - int(t.Weekday())) % 7
	if daysUntilSunday == 0 {
		daysUntilSunday = 7
	}
	return time.Date(t.Year(), t.Month(), t.Day()+daysUntilSunday, 0, 0, 0, 0, t.Location())
}

func nextDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}

func nextHour(t time.Time) time.Time {
	return t.Add(time.Hour).Truncate(time.Hour)
}

// ValidateSchedule reports whether a schedule expression is usable.
func ValidateSchedule(expr string) error {
	expr = strings.TrimSpace(expr)

	if expr == "@monthly" || expr == "@weekly" || expr == "@daily" || expr == "@hourly" {
		return nil
	}

	if strings.HasPrefix(expr, "@every ") {
		_, err := parseEveryDuration(strings.TrimPrefix(expr, "@every "), time.Now())
		return err
	}

	return fmt.Errorf("invalid schedule expression: %s", expr)
}
