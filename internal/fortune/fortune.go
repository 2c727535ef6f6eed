// Package fortune fetches a decorative fortune cookie line. Fetching never
// fails: the primary API is tried first, then the same URL through a CORS
// proxy, then a fixed fallback sentence.
package fortune

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"remcalc/internal/config"
)

type Source string

const (
	SourcePrimary  Source = "primary"
	SourceProxy    Source = "proxy"
	SourceFallback Source = "fallback"
)

var errEmpty = errors.New("empty fortune")

// maxBody bounds how much of a response is read.
const maxBody = 1 << 20

type Fortune struct {
	Text   string `json:"text" yaml:"text"`
	Source Source `json:"source" yaml:"source"`
}

type Client struct {
	HTTP       *http.Client
	PrimaryURL string
	ProxyURL   string
	Timeout    time.Duration
	Fallback   string
	Logger     *zap.Logger
}

// NewClient builds a client from the fortune section of the config.
func NewClient(cfg config.FortuneConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTP:       &http.Client{},
		PrimaryURL: cfg.PrimaryURL,
		ProxyURL:   cfg.ProxyURL,
		Timeout:    cfg.Timeout,
		Fallback:   cfg.Fallback,
		Logger:     logger,
	}
}

type primaryBody struct {
	Text string `json:"text"`
}

type proxyBody struct {
	Contents string `json:"contents"`
}

// Fetch walks the fallback chain and always returns a fortune.
func (c *Client) Fetch(ctx context.Context) Fortune {
	text, err := c.fetchPrimary(ctx)
	if err == nil {
		return Fortune{Text: text, Source: SourcePrimary}
	}
	c.log().Debug("primary fortune failed", zap.String("url", c.PrimaryURL), zap.Error(err))

	if c.ProxyURL != "" && ctx.Err() == nil {
		text, err = c.fetchProxy(ctx)
		if err == nil {
			return Fortune{Text: text, Source: SourceProxy}
		}
		c.log().Debug("proxy fortune failed", zap.String("url", c.ProxyURL), zap.Error(err))
	}

	return Fortune{Text: c.Fallback, Source: SourceFallback}
}

func (c *Client) fetchPrimary(ctx context.Context) (string, error) {
	var body primaryBody
	if err := c.getJSON(ctx, c.PrimaryURL, &body); err != nil {
		return "", err
	}
	return nonEmpty(body.Text)
}

func (c *Client) fetchProxy(ctx context.Context) (string, error) {
	var wrapper proxyBody
	if err := c.getJSON(ctx, c.ProxyURL+url.QueryEscape(c.PrimaryURL), &wrapper); err != nil {
		return "", err
	}
	if strings.TrimSpace(wrapper.Contents) == "" {
		return "", fmt.Errorf("proxy contents: %w", errEmpty)
	}
	var body primaryBody
	if err := json.Unmarshal([]byte(wrapper.Contents), &body); err != nil {
		return "", fmt.Errorf("decode proxy contents: %w", err)
	}
	return nonEmpty(body.Text)
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) log() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

func nonEmpty(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errEmpty
	}
	return s, nil
}
