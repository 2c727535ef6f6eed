// Package sleepcycle computes wake-up times aligned to 90 minute sleep cycles.
package sleepcycle

import (
	"math"
)

const (
	// CycleLength is one full sleep cycle in minutes.
	CycleLength = 90
	// MaxCycles caps how many candidates are generated.
	MaxCycles = 10
	// Window is the number of suggestions returned.
	Window = 3

	MinutesPerDay = 1440

	// maxMinutes is the largest minute count float64 holds exactly.
	maxMinutes = 1 << 53
)

// LatencyPresets are the usual fall-asleep estimates, in minutes.
var LatencyPresets = []float64{0, 5, 15, 30}

// Input is what the caller collects from the user.
type Input struct {
	SleepStart        int     // minutes since local midnight
	FallAsleepLatency float64 // minutes, rounded and clamped to >= 0
	MinimumSleepHours float64
}

type Suggestion struct {
	Cycles            int  `json:"cycles" yaml:"cycles"`
	WakeTime          int  `json:"wake_time" yaml:"wake_time"`
	TotalSleepMinutes int  `json:"total_sleep_minutes" yaml:"total_sleep_minutes"`
	MinutesSinceStart int  `json:"minutes_since_start" yaml:"minutes_since_start"`
	MeetsMinimum      bool `json:"meets_minimum" yaml:"meets_minimum"`
}

// Compute returns up to Window suggestions starting at the first cycle count
// whose time since sleep start reaches the minimum. When no candidate reaches
// it, the last Window candidates are returned instead.
func Compute(in Input) []Suggestion {
	latency := latencyMinutes(in.FallAsleepLatency)
	minRequired := requiredMinutes(in.MinimumSleepHours)
	offset := 0
	if !math.IsInf(latency, 1) {
		offset = int(math.Mod(latency, MinutesPerDay))
	}

	all := make([]Suggestion, 0, MaxCycles)
	for n := 1; n <= MaxCycles; n++ {
		total := n * CycleLength
		since := float64(total) + latency
		all = append(all, Suggestion{
			Cycles:            n,
			WakeTime:          Mod(Mod(in.SleepStart, MinutesPerDay)+total+offset, MinutesPerDay),
			TotalSleepMinutes: total,
			MinutesSinceStart: roundNonNegative(since),
			MeetsMinimum:      !math.IsInf(minRequired, 1) && since >= minRequired,
		})
	}

	first := -1
	for i, s := range all {
		if s.MeetsMinimum {
			first = i
			break
		}
	}
	if first < 0 {
		return all[len(all)-Window:]
	}
	return all[first:min(first+Window, len(all))]
}

// AnyMeetsMinimum reports whether at least one suggestion satisfies the minimum.
func AnyMeetsMinimum(s []Suggestion) bool {
	for _, v := range s {
		if v.MeetsMinimum {
			return true
		}
	}
	return false
}

// requiredMinutes is the minimum in whole minutes. NaN counts as no minimum and
// +Inf is never met.
func requiredMinutes(hours float64) float64 {
	if math.IsNaN(hours) {
		return 0
	}
	return math.Round(hours * 60)
}

func latencyMinutes(v float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	return math.Round(v)
}

func roundNonNegative(v float64) int {
	m := latencyMinutes(v)
	if m >= maxMinutes {
		return maxMinutes
	}
	return int(m)
}

// Mod is a modulo that never returns a negative result for positive b.
func Mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
