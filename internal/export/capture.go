package export

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Capturer turns a rendered HTML report into an image of its results panel
type Capturer interface {
	Capture(ctx context.Context, page []byte) ([]byte, error)
}

// BrowserCapture screenshots #results in a headless Chrome
type BrowserCapture struct {
	Timeout time.Duration
	Width   int64
	Height  int64
	// ExecPath overrides Chrome discovery when set
	ExecPath string
}

// NewBrowserCapture returns a capture with a 1200x900 viewport
func NewBrowserCapture(timeout time.Duration) *BrowserCapture {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrowserCapture{Timeout: timeout, Width: 1200, Height: 900}
}

// Capture loads the page from a data URL and returns a PNG of #results
func (c *BrowserCapture) Capture(ctx context.Context, page []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	if c.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.ExecPath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	url := "data:text/html;base64," + base64.StdEncoding.EncodeToString(page)
	var png []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(c.Width, c.Height),
		chromedp.Navigate(url),
		chromedp.WaitReady("#results", chromedp.ByID),
		chromedp.Screenshot("#results", &png, chromedp.ByID),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp: %w", err)
	}
	return png, nil
}
