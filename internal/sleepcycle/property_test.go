package sleepcycle

import (
	"testing"

	"pgregory.net/rapid"
)

func drawInput(t *rapid.T) Input {
	return Input{
		SleepStart:        rapid.IntRange(-10*MinutesPerDay, 10*MinutesPerDay).Draw(t, "start"),
		FallAsleepLatency: rapid.OneOf(
			rapid.Float64Range(-60, 600),
			rapid.Float64Range(600, 1e12),
		).Draw(t, "latency"),
		MinimumSleepHours: rapid.OneOf(
			rapid.Float64Range(-2, 30),
			rapid.Float64Range(30, 2e10),
		).Draw(t, "hours"),
	}
}

func TestClockLabelPeriodic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.IntRange(-1_000_000_000, 1_000_000_000).Draw(t, "x")
		k := rapid.IntRange(-100_000, 100_000).Draw(t, "k")
		if a, b := ClockLabel(x), ClockLabel(x+MinutesPerDay*k); a != b {
			t.Fatalf("ClockLabel(%d)=%s but ClockLabel(%d)=%s", x, a, x+MinutesPerDay*k, b)
		}
	})
}

func TestComputeWindowProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := drawInput(t)
		got := Compute(in)

		if len(got) < 1 || len(got) > Window {
			t.Fatalf("got %d suggestions, want 1..%d", len(got), Window)
		}
		for i, s := range got {
			if s.WakeTime < 0 || s.WakeTime >= MinutesPerDay {
				t.Fatalf("wake time %d out of range", s.WakeTime)
			}
			if s.TotalSleepMinutes != s.Cycles*CycleLength {
				t.Fatalf("total sleep %d for %d cycles", s.TotalSleepMinutes, s.Cycles)
			}
			if i > 0 && s.Cycles != got[i-1].Cycles+1 {
				t.Fatalf("cycles not contiguous: %v", cycles(got))
			}
		}

		if AnyMeetsMinimum(got) {
			if !got[0].MeetsMinimum {
				t.Fatalf("first suggestion should meet the minimum")
			}
			if got[0].Cycles > 1 {
				prev := (got[0].Cycles-1)*CycleLength + (got[0].MinutesSinceStart - got[0].TotalSleepMinutes)
				if prev >= HoursToMinutes(in.MinimumSleepHours) {
					t.Fatalf("cycle %d already met the minimum", got[0].Cycles-1)
				}
			}
		} else if got[0].Cycles != MaxCycles-Window+1 {
			t.Fatalf("unmet minimum should fall back to the last %d, got %v", Window, cycles(got))
		}
	})
}

func TestComputeZeroMinimumStartsAtOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := drawInput(t)
		in.MinimumSleepHours = 0
		got := Compute(in)
		if got[0].Cycles != 1 || !got[0].MeetsMinimum {
			t.Fatalf("got %+v, want cycle 1 meeting the minimum", got[0])
		}
	})
}

func TestComputeUnreachableMinimum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		latency := rapid.OneOf(
			rapid.IntRange(0, 120),
			rapid.IntRange(120, 1<<40),
		).Draw(t, "latency")
		extra := rapid.IntRange(1, 600).Draw(t, "extra")
		in := Input{
			SleepStart:        rapid.IntRange(0, MinutesPerDay-1).Draw(t, "start"),
			FallAsleepLatency: float64(latency),
			MinimumSleepHours: float64(MaxCycles*CycleLength+latency+extra) / 60,
		}
		got := Compute(in)
		want := []int{8, 9, 10}
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", cycles(got), want)
		}
		for i, s := range got {
			if s.Cycles != want[i] || s.MeetsMinimum {
				t.Fatalf("got %+v at %d", s, i)
			}
		}
	})
}
