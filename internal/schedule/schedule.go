package schedule

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitvault/internal/models"
)

var weekdayTokens = [...]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// WeekdayToken returns the three-letter lowercase token for a weekday
func WeekdayToken(wd time.Weekday) string {
	return weekdayTokens[wd]
}

// IsScheduled determines if a habit with the given recurrence rule expects a
// check-in on date. Custom rules with no target days are never scheduled.
func IsScheduled(date time.Time, targetType models.TargetType, targetDays []string) bool {
	switch targetType {
	case models.TargetDaily:
		return true
	case models.TargetWeekdays:
		wd := date.Weekday()
		return wd >= time.Monday && wd <= time.Friday
	case models.TargetCustom:
		if len(targetDays) == 0 {
			return false
		}
		token := WeekdayToken(date.Weekday())
		return slices.ContainsFunc(targetDays, func(d string) bool {
			return strings.EqualFold(strings.TrimSpace(d), token)
		})
	default:
		return false
	}
}

// HabitScheduled is IsScheduled for a habit's own rule
func HabitScheduled(h models.Habit, date time.Time) bool {
	return IsScheduled(date, h.TargetType, h.TargetDays)
}

// ParseWeekdayTokens parses a comma-separated list of weekdays into sorted,
// de-duplicated tokens (mon..sun). Full names and numbers (0=Sunday) are accepted.
func ParseWeekdayTokens(s string) ([]string, error) {
	dayMap := map[string]time.Weekday{
		"sun":       time.Sunday,
		"sunday":    time.Sunday,
		"mon":       time.Monday,
		"monday":    time.Monday,
		"tue":       time.Tuesday,
		"tuesday":   time.Tuesday,
		"wed":       time.Wednesday,
		"wednesday": time.Wednesday,
		"thu":       time.Thursday,
		"thursday":  time.Thursday,
		"fri":       time.Friday,
		"friday":    time.Friday,
		"sat":       time.Saturday,
		"saturday":  time.Saturday,
	}

	seen := make(map[time.Weekday]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if wd, ok := dayMap[part]; ok {
			seen[wd] = true
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		seen[time.Weekday(num)] = true
	}

	// Monday-first order, matching how the days are displayed
	var tokens []string
	for _, wd := range []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday} {
		if seen[wd] {
			tokens = append(tokens, WeekdayToken(wd))
		}
	}
	return tokens, nil
}

// Describe formats a recurrence rule into a human-readable string
func Describe(targetType models.TargetType, targetDays []string) string {
	switch targetType {
	case models.TargetDaily:
		return "daily"
	case models.TargetWeekdays:
		return "weekdays"
	case models.TargetCustom:
		if len(targetDays) == 0 {
			return "custom (no days)"
		}
		return "on " + strings.Join(targetDays, ",")
	default:
		return "unknown"
	}
}
