package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// knownSchedules maps common expressions to their canonical phrase.
var knownSchedules = map[string]string{
	"* * * * *":    "Every minute",
	"*/1 * * * *":  "Every minute",
	"*/5 * * * *":  "Every 5 minutes",
	"0/5 * * * *":  "Every 5 minutes",
	"*/15 * * * *": "Every 15 minutes",
	"0/15 * * * *": "Every 15 minutes",
	"*/30 * * * *": "Every 30 minutes",
	"0/30 * * * *": "Every 30 minutes",
	"0 * * * *":    "Every hour",
	"0 0 * * *":    "Every day at midnight",
	"0 12 * * *":   "Every day at noon",
}

var (
	intervalField = regexp.MustCompile(`^\*/(\d+)$`)
	numericField  = regexp.MustCompile(`^\d+$`)
)

// FormatSchedule renders a five-field cron expression as a human-readable
// phrase. Expressions it does not recognize are returned unchanged.
func FormatSchedule(expr string) string {
	if phrase, ok := knownSchedules[expr]; ok {
		return phrase
	}

	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return expr
	}
	minute, hour := fields[0], fields[1]

	if m := intervalField.FindStringSubmatch(minute); m != nil {
		if n, _ := strconv.Atoi(m[1]); n == 1 {
			return "Every 1 minute"
		}
		return "Every " + m[1] + " minutes"
	}

	if numericField.MatchString(minute) && numericField.MatchString(hour) {
		h, errH := strconv.Atoi(hour)
		mm, errM := strconv.Atoi(minute)
		if errH != nil || errM != nil {
			return expr
		}
		period := "AM"
		if h >= 12 {
			period = "PM"
		}
		h12 := h % 12
		if h12 == 0 {
			h12 = 12
		}
		return fmt.Sprintf("Every day at %d:%02d %s", h12, mm, period)
	}

	return expr
}

// ValidateSchedule reports whether expr is a valid standard crontab.
func ValidateSchedule(expr string) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return nil
}

// NextRun returns the first activation of expr strictly after from.
func NextRun(expr string, from time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return sched.Next(from), nil
}
