package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// ChromeOptions configures NewChrome.
type ChromeOptions struct {
	// Headless runs Chrome without a window.
	Headless bool
	// ActionTimeout bounds every single browser action.
	ActionTimeout time.Duration
	// PollInterval is the WaitPresent polling period.
	PollInterval time.Duration
	// IgnoreCertErrors accepts self-signed server certificates.
	IgnoreCertErrors bool
	// ExecPath overrides the Chrome binary lookup.
	ExecPath string
}

// Chrome drives one Chrome tab through the DevTools protocol.
type Chrome struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   ChromeOptions
}

var _ Browser = (*Chrome)(nil)

// NewChrome launches Chrome and opens a tab. The browser lives until Close
// is called or parent is cancelled.
func NewChrome(parent context.Context, opts ChromeOptions) (*Chrome, error) {
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = 10 * time.Second
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("start-maximized", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if opts.IgnoreCertErrors {
		allocOpts = append(allocOpts, chromedp.IgnoreCertErrors)
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, tabCancel := chromedp.NewContext(allocCtx)
	cancel := func() {
		tabCancel()
		allocCancel()
	}

	// An empty Run starts the browser so launch failures surface here.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return &Chrome{ctx: ctx, cancel: cancel, opts: opts}, nil
}

func (c *Chrome) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(c.ctx, c.opts.ActionTimeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// count returns how many elements currently match loc, without waiting.
func (c *Chrome) count(loc Locator) (int, error) {
	var nodes []*cdp.Node
	if err := c.run(chromedp.Nodes(loc.Query(), &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return 0, fmt.Errorf("query %s: %w", loc, err)
	}
	return len(nodes), nil
}

func (c *Chrome) mustExist(loc Locator) error {
	n, err := c.count(loc)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrElementNotFound, loc)
	}
	return nil
}

func (c *Chrome) Navigate(url string) error {
	if err := c.run(chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (c *Chrome) WaitPresent(loc Locator, timeout time.Duration) error {
	err := WaitUntil(timeout, c.opts.PollInterval, func() (bool, error) {
		n, err := c.count(loc)
		return n > 0, err
	})
	if err != nil {
		return fmt.Errorf("wait for %s: %w", loc, err)
	}
	return nil
}

func (c *Chrome) Fill(loc Locator, value string) error {
	if err := c.mustExist(loc); err != nil {
		return err
	}
	q := loc.Query()
	if err := c.run(chromedp.Clear(q, chromedp.ByQuery), chromedp.SendKeys(q, value, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("fill %s: %w", loc, err)
	}
	return nil
}

func (c *Chrome) Click(loc Locator) error {
	if err := c.mustExist(loc); err != nil {
		return err
	}
	if err := c.run(chromedp.Click(loc.Query(), chromedp.ByQuery)); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

func (c *Chrome) Text(loc Locator) (string, error) {
	if err := c.mustExist(loc); err != nil {
		return "", err
	}
	var text string
	if err := c.run(chromedp.Text(loc.Query(), &text, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("text %s: %w", loc, err)
	}
	return text, nil
}

func (c *Chrome) CurrentURL() (string, error) {
	var url string
	if err := c.run(chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("location: %w", err)
	}
	return url, nil
}

func (c *Chrome) Title() (string, error) {
	var title string
	if err := c.run(chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("title: %w", err)
	}
	return title, nil
}

func (c *Chrome) Screenshot() ([]byte, error) {
	var buf []byte
	if err := c.run(chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return buf, nil
}

// Close shuts the tab and the browser process. It is safe to call twice.
func (c *Chrome) Close() error {
	c.cancel()
	return nil
}
