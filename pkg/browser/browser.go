// Package browser manages the headless Chrome instance scenarios run in.
// It wraps Rod so each scenario gets its own incognito context.
package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config configures Chrome launch options.
type Config struct {
	Headless   bool   // Run in headless mode (default: true)
	Bin        string // Chrome binary; empty lets Rod find or download one
	ControlURL string // DevTools URL of a running Chrome; skips launching
}

// DefaultConfig returns sensible defaults for E2E runs.
func DefaultConfig() Config {
	return Config{
		Headless: true,
	}
}

// Client owns one Chrome process and hands out isolated pages.
type Client struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// New launches (or connects to) Chrome. The browser is configured with:
//   - No sandbox (for container compatibility)
//   - No GPU
//   - No first-run or default-browser prompts
func New(cfg Config) (*Client, error) {
	c := &Client{}
	url := cfg.ControlURL
	if url == "" {
		l := launcher.New().
			Headless(cfg.Headless).
			Set("no-sandbox").
			Set("disable-gpu").
			Set("no-first-run").
			Set("no-default-browser-check")
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch Chrome: %w", err)
		}
		c.launcher = l
		url = u
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		if c.launcher != nil {
			c.launcher.Kill()
		}
		return nil, fmt.Errorf("failed to connect to Chrome: %w", err)
	}
	c.browser = browser
	return c, nil
}

// NewPage opens a blank page in a fresh incognito context. Calling release
// disposes of the context together with its cookies and storage.
func (c *Client) NewPage(ctx context.Context) (*rod.Page, func() error, error) {
	if c.browser == nil {
		return nil, nil, errors.New("browser is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	incognito, err := c.browser.Incognito()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = incognito.Close()
		return nil, nil, fmt.Errorf("failed to open page: %w", err)
	}
	return page, incognito.Close, nil
}

// Close cleans up browser resources.
// Always call this (via defer) to prevent orphaned Chrome processes.
func (c *Client) Close() error {
	if c.browser == nil {
		return nil
	}
	err := c.browser.Close()
	c.browser = nil
	if c.launcher != nil {
		c.launcher.Cleanup()
	}
	return err
}
