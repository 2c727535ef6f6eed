package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"remcalc/internal/sleepcycle"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts text, json or yaml (yml), case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w %q (want text, json or yaml)", ErrUnknownFormat, s)
}

func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatText:
		_, err := io.WriteString(w, Text(r))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, string(f))
}

/* ---------------- text ---------------- */

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3fa9f5"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9fb3c8"))
	timeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff"))
	pillStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#102a43")).Padding(0, 1)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f5a623"))
	linkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#3fa9f5")).Underline(true)
	fortuneText = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#9fb3c8"))
)

// Text renders the report for a terminal.
func Text(r Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Calculated alarms"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Sleep start %s, %s to fall asleep, minimum %s",
		r.SleepStart,
		sleepcycle.DurationLabel(r.FallAsleepMinutes),
		sleepcycle.DurationLabel(float64(sleepcycle.HoursToMinutes(r.MinimumSleepHours))))))
	b.WriteString("\n\n")

	for _, a := range r.Alarms {
		fmt.Fprintf(&b, "  %s  %s  %s\n",
			timeStyle.Render(a.Wake),
			mutedStyle.Render(fmt.Sprintf("%2d × %dm cycles", a.Cycles, sleepcycle.CycleLength)),
			pillStyle.Render(a.TotalSleep))
		fmt.Fprintf(&b, "         %s\n", linkStyle.Render(a.ShortcutURL))
	}

	if !r.MinimumMet {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf("No option reaches the minimum within %d cycles; showing the longest.", sleepcycle.MaxCycles)))
		b.WriteString("\n")
	}

	if r.Fortune != nil && r.Fortune.Text != "" {
		b.WriteString("\n")
		b.WriteString(fortuneText.Render("“" + r.Fortune.Text + "”"))
		b.WriteString("\n")
	}
	return b.String()
}
