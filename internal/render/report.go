// Package render turns calculator output into what a person or a script reads.
package render

import (
	"remcalc/internal/fortune"
	"remcalc/internal/sleepcycle"
)

// Alarm is one suggestion plus its display labels.
type Alarm struct {
	sleepcycle.Suggestion `yaml:",inline"`

	Wake        string `json:"wake" yaml:"wake"`
	TotalSleep  string `json:"total_sleep" yaml:"total_sleep"`
	ShortcutURL string `json:"shortcut_url" yaml:"shortcut_url"`
}

type Report struct {
	SleepStart        string           `json:"sleep_start" yaml:"sleep_start"`
	FallAsleepMinutes float64          `json:"fall_asleep_minutes" yaml:"fall_asleep_minutes"`
	MinimumSleepHours float64          `json:"minimum_sleep_hours" yaml:"minimum_sleep_hours"`
	MinimumMet        bool             `json:"minimum_met" yaml:"minimum_met"`
	Alarms            []Alarm          `json:"alarms" yaml:"alarms"`
	Fortune           *fortune.Fortune `json:"fortune,omitempty" yaml:"fortune,omitempty"`
}

// Build runs the calculator and labels every suggestion.
func Build(in sleepcycle.Input, shortcutName string) Report {
	suggestions := sleepcycle.Compute(in)
	alarms := make([]Alarm, 0, len(suggestions))
	for _, s := range suggestions {
		alarms = append(alarms, Alarm{
			Suggestion:  s,
			Wake:        sleepcycle.ClockLabel(s.WakeTime),
			TotalSleep:  sleepcycle.DurationLabel(float64(s.TotalSleepMinutes)),
			ShortcutURL: sleepcycle.ShortcutURL(shortcutName, s.WakeTime),
		})
	}
	return Report{
		SleepStart:        sleepcycle.ClockLabel(in.SleepStart),
		FallAsleepMinutes: in.FallAsleepLatency,
		MinimumSleepHours: in.MinimumSleepHours,
		MinimumMet:        sleepcycle.AnyMeetsMinimum(suggestions),
		Alarms:            alarms,
	}
}

// ShareDescription is the one-line summary used for link previews.
func (r Report) ShareDescription() string {
	if len(r.Alarms) == 0 {
		return ""
	}
	first := r.Alarms[0]
	return "Asleep at " + r.SleepStart + ", wake at " + first.Wake + " (" + first.TotalSleep + " of sleep)."
}
