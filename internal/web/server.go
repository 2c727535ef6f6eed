// Package web serves the calculator as an HTML form and a small JSON API.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"remcalc/internal/config"
	"remcalc/internal/fortune"
	"remcalc/internal/render"
	"remcalc/internal/sleepcycle"
)

const shutdownTimeout = 5 * time.Second

// FortuneSource is anything that can produce a fortune.
type FortuneSource interface {
	Fetch(ctx context.Context) fortune.Fortune
}

type Server struct {
	cfg     config.Config
	version string
	logger  *zap.Logger
	fortune FortuneSource
	now     func() time.Time
	engine  *gin.Engine
}

type Option func(*Server)

// WithClock replaces time.Now, which supplies the default sleep start.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New wires routes and middleware. fortunes may be nil when fortunes are
// disabled.
func New(cfg config.Config, version string, logger *zap.Logger, fortunes FortuneSource, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		version: version,
		logger:  logger,
		fortune: fortunes,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestID())
	r.Use(requestLogger(logger))
	r.Use(rateLimit(newLimiterStore(cfg.Web.RatePerMinute, cfg.Web.Burst), logger))
	r.SetHTMLTemplate(template.Must(template.New("page").Funcs(pageFuncs).Parse(pageHTML)))

	r.GET("/", s.handleIndex)
	r.POST("/calc", s.handleCalc)
	r.GET("/api/suggestions", s.handleSuggestions)
	r.GET("/api/fortune", s.handleFortune)
	r.GET("/healthz", s.handleHealth)

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	for _, u := range listenURLs(s.cfg.Port) {
		s.logger.Info("listening", zap.String("url", u))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

/* ---------------- page ---------------- */

type latencyChip struct {
	Value  string
	Active bool
}

type PageData struct {
	Start    string
	Latency  string
	MinSleep string

	Chips []latencyChip

	Version string
	Error   string
	Report  *render.Report

	FortuneEnabled bool
	InstallURL     string

	// Share text: meta description when Report is set (for link previews).
	ShareDescription string
}

func (s *Server) defaultLatency() string  { return formatNumber(s.cfg.Latency) }
func (s *Server) defaultMinSleep() string { return formatNumber(s.cfg.MinSleep) }

func (s *Server) page(start, latency, minSleep string) PageData {
	data := PageData{
		Start:          start,
		Latency:        latency,
		MinSleep:       minSleep,
		Version:        s.version,
		FortuneEnabled: s.cfg.Fortune.Enabled && s.fortune != nil,
		InstallURL:     s.cfg.ShortcutInstallURL,
	}
	for _, v := range sleepcycle.LatencyPresets {
		val := formatNumber(v)
		data.Chips = append(data.Chips, latencyChip{Value: val, Active: val == latency})
	}
	return data
}

func (s *Server) handleIndex(c *gin.Context) {
	start := strings.TrimSpace(c.Query("start"))
	if start == "" {
		start = sleepcycle.ClockLabel(sleepcycle.MinutesOfDay(s.now()))
	}
	data := s.page(start,
		orDefault(c.Query("latency"), s.defaultLatency()),
		orDefault(c.Query("min_sleep"), s.defaultMinSleep()))

	in, err := parseInput(data.Start, data.Latency, data.MinSleep)
	if err != nil {
		data.Error = err.Error()
		c.HTML(http.StatusOK, "page", data)
		return
	}
	report := render.Build(in, s.cfg.ShortcutName)
	data.Report = &report
	data.ShareDescription = report.ShareDescription()
	c.HTML(http.StatusOK, "page", data)
}

func (s *Server) handleCalc(c *gin.Context) {
	start := strings.TrimSpace(c.PostForm("start"))
	latency := orDefault(c.PostForm("latency"), s.defaultLatency())
	minSleep := orDefault(c.PostForm("min_sleep"), s.defaultMinSleep())

	if start == "" {
		data := s.page(start, latency, minSleep)
		data.Error = "sleep start is required (HH:MM)"
		c.HTML(http.StatusOK, "page", data)
		return
	}
	if _, err := parseInput(start, latency, minSleep); err != nil {
		data := s.page(start, latency, minSleep)
		data.Error = err.Error()
		c.HTML(http.StatusOK, "page", data)
		return
	}
	// Redirect to GET with query params (only non-defaults) so the URL reflects the calculation.
	c.Redirect(http.StatusFound, s.buildCalcURL(start, latency, minSleep))
}

func (s *Server) handleSuggestions(c *gin.Context) {
	start := strings.TrimSpace(c.Query("start"))
	if start == "" {
		start = sleepcycle.ClockLabel(sleepcycle.MinutesOfDay(s.now()))
	}
	in, err := parseInput(start,
		orDefault(c.Query("latency"), s.defaultLatency()),
		orDefault(c.Query("min_sleep"), s.defaultMinSleep()))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, render.Build(in, s.cfg.ShortcutName))
}

func (s *Server) handleFortune(c *gin.Context) {
	if s.fortune == nil || !s.cfg.Fortune.Enabled {
		c.JSON(http.StatusOK, fortune.Fortune{Text: s.cfg.Fortune.Fallback, Source: fortune.SourceFallback})
		return
	}
	c.JSON(http.StatusOK, s.fortune.Fetch(c.Request.Context()))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": s.version})
}

// buildCalcURL returns "/?start=..." and only adds other params when not default.
func (s *Server) buildCalcURL(start, latency, minSleep string) string {
	v := url.Values{}
	v.Set("start", start)
	if lat, err := sleepcycle.ParseMinutes(latency); err != nil || lat != s.cfg.Latency {
		v.Set("latency", latency)
	}
	if hours, err := sleepcycle.ParseHours(minSleep); err != nil || hours != s.cfg.MinSleep {
		v.Set("min_sleep", minSleep)
	}
	return "/?" + v.Encode()
}

/* ---------------- helpers ---------------- */

func parseInput(start, latency, minSleep string) (sleepcycle.Input, error) {
	startMin, err := sleepcycle.ParseClock(start)
	if err != nil {
		return sleepcycle.Input{}, fmt.Errorf("sleep start: %w", err)
	}
	lat, err := sleepcycle.ParseMinutes(latency)
	if err != nil || lat < 0 {
		return sleepcycle.Input{}, fmt.Errorf("time to fall asleep must be >= 0 (minutes), got %q", latency)
	}
	hours, err := sleepcycle.ParseHours(minSleep)
	if err != nil || hours < 0 || hours > 24 {
		return sleepcycle.Input{}, fmt.Errorf("minimum sleep must be between 0 and 24 hours, got %q", minSleep)
	}
	return sleepcycle.Input{SleepStart: startMin, FallAsleepLatency: lat, MinimumSleepHours: hours}, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDefault(val, def string) string {
	if strings.TrimSpace(val) == "" {
		return def
	}
	return strings.TrimSpace(val)
}

// listenURLs lists loopback plus every non-loopback IPv4 address that is up.
func listenURLs(port int) []string {
	urls := []string{fmt.Sprintf("http://127.0.0.1:%d/", port)}

	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			ip, _, err := net.ParseCIDR(a.String())
			if err != nil || ip == nil || ip.IsLoopback() || ip.To4() == nil {
				continue
			}
			urls = append(urls, fmt.Sprintf("http://%s:%d/", ip.String(), port))
		}
	}
	return urls
}
