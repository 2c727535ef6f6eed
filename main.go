package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"remcalc/internal/config"
	"remcalc/internal/fortune"
	"remcalc/internal/logger"
	"remcalc/internal/prompt"
	"remcalc/internal/render"
	"remcalc/internal/sleepcycle"
	"remcalc/internal/watch"
	"remcalc/internal/web"
)

const appVersion = "0.3.2"

type options struct {
	configPath  string
	start       string
	format      string
	copyLink    bool
	interactive bool
	watch       bool
	noFortune   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:           "remcalc",
		Short:         "Wake-up times aligned to 90 minute sleep cycles (CLI or web)",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ok, _ := cmd.Flags().GetBool("version"); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "remcalc v%s\n", appVersion)
				return nil
			}
			return run(cmd, opts)
		},
	}

	cmd.Version = appVersion
	cmd.SetVersionTemplate("remcalc v{{.Version}}\n")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.Flags().StringVar(&opts.start, "start", "", "Sleep start HH:MM (default now)")
	cmd.Flags().Float64("latency", 15, "Minutes it takes to fall asleep (0, 5, 15, 30)")
	cmd.Flags().Float64("min-sleep", 6, "Minimum sleep in hours (e.g. 6, 7.5)")
	cmd.Flags().String("shortcut", sleepcycle.DefaultShortcutName, "Name of the alarm shortcut used in deep links")
	cmd.Flags().IntP("port", "p", 0, "Run web UI on this port (e.g. 8484)")

	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json or yaml")
	cmd.Flags().BoolVar(&opts.copyLink, "copy", false, "Copy the first alarm link to the clipboard")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Ask for the inputs in a form")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Keep recalculating as the clock moves")
	cmd.Flags().BoolVar(&opts.noFortune, "no-fortune", false, "Skip the fortune cookie")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default ./remcalc.yaml or ~/.config/remcalc/remcalc.yaml)")

	return cmd
}

// boundFlags maps config keys to the flags that may override them.
func boundFlags(fs *pflag.FlagSet) map[string]*pflag.Flag {
	return map[string]*pflag.Flag{
		"latency":       fs.Lookup("latency"),
		"min_sleep":     fs.Lookup("min-sleep"),
		"shortcut_name": fs.Lookup("shortcut"),
		"port":          fs.Lookup("port"),
	}
}

func run(cmd *cobra.Command, opts options) error {
	cfg, err := config.Load(opts.configPath, boundFlags(cmd.Flags()))
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if opts.noFortune {
		cfg.Fortune.Enabled = false
	}

	lg, err := logger.Init(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var fortunes *fortune.Client
	if cfg.Fortune.Enabled {
		fortunes = fortune.NewClient(cfg.Fortune, lg.Named("fortune"))
	}

	if cfg.Port > 0 {
		if cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}
		var src web.FortuneSource
		if fortunes != nil {
			src = fortunes
		}
		return web.New(cfg, appVersion, lg.Named("web"), src).Run(ctx)
	}

	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	in := sleepcycle.Input{
		SleepStart:        sleepcycle.MinutesOfDay(time.Now()),
		FallAsleepLatency: cfg.Latency,
		MinimumSleepHours: cfg.MinSleep,
	}
	var pinned *int
	if strings.TrimSpace(opts.start) != "" {
		mins, err := sleepcycle.ParseClock(opts.start)
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		in.SleepStart = mins
		pinned = &mins
	}

	if opts.interactive {
		ans, err := prompt.Ask(prompt.Answers{
			SleepStart:        in.SleepStart,
			FallAsleepLatency: in.FallAsleepLatency,
			MinimumSleepHours: in.MinimumSleepHours,
		})
		if errors.Is(err, prompt.ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		in = ans.Input()
		start := in.SleepStart
		pinned = &start
	}

	var fortuneLine *fortune.Fortune
	if fortunes != nil {
		f := fortunes.Fetch(ctx)
		fortuneLine = &f
	}

	out := cmd.OutOrStdout()
	emit := func(start int) error {
		in.SleepStart = start
		report := render.Build(in, cfg.ShortcutName)
		report.Fortune = fortuneLine
		lg.Debug("calculated",
			zap.String("sleep_start", report.SleepStart),
			zap.Int("alarms", len(report.Alarms)),
			zap.Bool("minimum_met", report.MinimumMet))
		if err := render.Write(out, format, report); err != nil {
			return err
		}
		if opts.copyLink {
			return copyFirstLink(lg, report)
		}
		return nil
	}

	if opts.watch {
		// a nil pin follows the clock
		return watch.Run(ctx, watch.Options{Pinned: pinned}, emit)
	}
	return emit(in.SleepStart)
}

var writeClipboard = clipboard.WriteAll

func copyFirstLink(lg *zap.Logger, r render.Report) error {
	if len(r.Alarms) == 0 {
		return nil
	}
	first := r.Alarms[0]
	if err := writeClipboard(first.ShortcutURL); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	lg.Info("copied alarm link", zap.String("wake", first.Wake), zap.String("url", first.ShortcutURL))
	return nil
}
