package sleepcycle

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidClock   = errors.New("expected HH:MM")
	ErrInvalidHours   = errors.New("expected a number of hours")
	ErrInvalidMinutes = errors.New("expected a number of minutes")
)

// DefaultShortcutName is the automation shortcut that sets the alarm.
const DefaultShortcutName = "remcalc"

/* ---------------- labels ---------------- */

// ClockLabel renders minutes since midnight as 24h HH:MM, wrapping any value
// into a single day.
func ClockLabel(total int) string {
	m := Mod(total, MinutesPerDay)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// DurationLabel renders a duration as "45m", "6h" or "7h 30m".
func DurationLabel(minutes float64) string {
	m := roundNonNegative(minutes)
	h, r := m/60, m%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", r)
	case r == 0:
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh %dm", h, r)
}

/* ---------------- parsing ---------------- */

// ParseClock parses "H:MM" or "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	t := strings.TrimSpace(s)
	parts := strings.Split(t, ":")
	if len(parts) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time %q: %w", s, ErrInvalidClock)
	}
	h, err := clockField(parts[0])
	if err != nil || h > 23 {
		return 0, fmt.Errorf("invalid time %q: %w", s, ErrInvalidClock)
	}
	m, err := clockField(parts[1])
	if err != nil || m > 59 {
		return 0, fmt.Errorf("invalid time %q: %w", s, ErrInvalidClock)
	}
	return h*60 + m, nil
}

// clockField accepts digits only; strconv.Atoi would also take a sign.
func clockField(s string) (int, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, ErrInvalidClock
	}
	return strconv.Atoi(s)
}

// ParseHours accepts "6", "7.5" or "7,5".
func ParseHours(s string) (float64, error) {
	v, ok := parseFinite(s)
	if !ok {
		return 0, fmt.Errorf("invalid hours %q: %w", s, ErrInvalidHours)
	}
	return v, nil
}

// ParseMinutes is ParseHours for a fall-asleep latency in minutes.
func ParseMinutes(s string) (float64, error) {
	v, ok := parseFinite(s)
	if !ok {
		return 0, fmt.Errorf("invalid minutes %q: %w", s, ErrInvalidMinutes)
	}
	return v, nil
}

func parseFinite(s string) (float64, bool) {
	t := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func HoursToMinutes(h float64) int {
	return int(math.Round(h * 60.0))
}

/* ---------------- wall clock ---------------- */

// MinutesOfDay returns the local wall-clock minute of t.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// FollowNow keeps a sleep start pinned to the current minute as long as it
// has not drifted more than one minute away from it.
func FollowNow(prev, now int) int {
	drift := prev - now
	if drift < 0 {
		drift = -drift
	}
	if drift <= 1 {
		return now
	}
	return prev
}

/* ---------------- deep link ---------------- */

// ShortcutURL builds the link that hands a wake time to the alarm shortcut.
func ShortcutURL(name string, wake int) string {
	if name == "" {
		name = DefaultShortcutName
	}
	return "shortcuts://run-shortcut?name=" + url.QueryEscape(name) +
		"&input=" + url.QueryEscape(ClockLabel(wake))
}
