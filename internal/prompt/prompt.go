// Package prompt asks for the three calculator inputs in the terminal.
package prompt

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"remcalc/internal/sleepcycle"
)

const (
	minSleepMax  = 12.0
	minSleepStep = 0.5
)

// ErrAborted is returned when the user leaves the form.
var ErrAborted = errors.New("aborted")

type Answers struct {
	SleepStart        int
	FallAsleepLatency float64
	MinimumSleepHours float64
}

func (a Answers) Input() sleepcycle.Input {
	return sleepcycle.Input{
		SleepStart:        a.SleepStart,
		FallAsleepLatency: a.FallAsleepLatency,
		MinimumSleepHours: a.MinimumSleepHours,
	}
}

func LatencyOptions() []huh.Option[float64] {
	opts := make([]huh.Option[float64], 0, len(sleepcycle.LatencyPresets))
	for _, v := range sleepcycle.LatencyPresets {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s min", strconv.FormatFloat(v, 'f', -1, 64)), v))
	}
	return opts
}

// MinSleepOptions lists 0h..12h in half hour steps.
func MinSleepOptions() []huh.Option[float64] {
	opts := make([]huh.Option[float64], 0, int(minSleepMax/minSleepStep)+1)
	for v := 0.0; v <= minSleepMax; v += minSleepStep {
		label := sleepcycle.DurationLabel(float64(sleepcycle.HoursToMinutes(v)))
		opts = append(opts, huh.NewOption(label, v))
	}
	return opts
}

func ValidateClock(s string) error {
	_, err := sleepcycle.ParseClock(s)
	return err
}

// snap returns the choice closest to v so a configured default is preselected.
func snap(v float64, choices []float64) float64 {
	best := choices[0]
	for _, c := range choices[1:] {
		if abs(c-v) < abs(best-v) {
			best = c
		}
	}
	return best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func minSleepChoices() []float64 {
	out := make([]float64, 0, int(minSleepMax/minSleepStep)+1)
	for v := 0.0; v <= minSleepMax; v += minSleepStep {
		out = append(out, v)
	}
	return out
}

func newForm(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
}

// Ask runs the form, preselecting defaults.
func Ask(defaults Answers) (Answers, error) {
	start := sleepcycle.ClockLabel(defaults.SleepStart)
	latency := snap(defaults.FallAsleepLatency, sleepcycle.LatencyPresets)
	minSleep := snap(defaults.MinimumSleepHours, minSleepChoices())

	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sleep start").
				Description("24h clock, HH:MM").
				Value(&start).
				Validate(ValidateClock),
			huh.NewSelect[float64]().
				Title("Time to fall asleep").
				Options(LatencyOptions()...).
				Value(&latency),
			huh.NewSelect[float64]().
				Title("Minimum sleep").
				Options(MinSleepOptions()...).
				Value(&minSleep),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return Answers{}, ErrAborted
		}
		return Answers{}, err
	}

	mins, err := sleepcycle.ParseClock(start)
	if err != nil {
		return Answers{}, err
	}
	return Answers{SleepStart: mins, FallAsleepLatency: latency, MinimumSleepHours: minSleep}, nil
}
