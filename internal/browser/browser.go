// Package browser drives headless Chrome through chromedp to print report
// pages to PDF and to measure live section positions.
package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/reportdeck/reportdeck/consts"
	"github.com/reportdeck/reportdeck/pkg/errors"
	"github.com/reportdeck/reportdeck/pkg/logger"
)

const (
	defaultTimeout        = 60 * time.Second
	defaultWSURLTimeout   = 60 * time.Second
	defaultViewportWidth  = 1280
	defaultViewportHeight = 900
)

// Options configures the Chrome process
type Options struct {
	// ChromePath overrides auto-detection; CHROME_PATH is used when empty
	ChromePath string
	Timeout    time.Duration
	// Width and Height set the emulated viewport in CSS pixels
	Width  int64
	Height int64
}

func (o Options) withDefaults() Options {
	if o.ChromePath == "" {
		o.ChromePath = os.Getenv("CHROME_PATH")
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Width <= 0 {
		o.Width = defaultViewportWidth
	}
	if o.Height <= 0 {
		o.Height = defaultViewportHeight
	}
	return o
}

// allocatorOptions returns the exec allocator flags for a headless,
// sandbox-free Chrome suitable for containers.
func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", true),
		chromedp.WSURLReadTimeout(defaultWSURLTimeout),
	)
	if opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ChromePath))
	}
	return allocOpts
}

// withPage writes page to a temporary file, opens it in a fresh headless
// browser, and runs actions once the body is ready.
func withPage(ctx context.Context, page []byte, opts Options, actions ...chromedp.Action) error {
	opts = opts.withDefaults()

	tmpFile, err := os.CreateTemp("", consts.ServiceName+"-*.html")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(page); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	tmpFile.Close()

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug(fmt.Sprintf("chromedp: "+format, args...))
		}),
	)
	defer browserCancel()

	start := time.Now()
	run := append([]chromedp.Action{
		chromedp.EmulateViewport(opts.Width, opts.Height),
		chromedp.Navigate("file://" + tmpPath),
		chromedp.WaitReady("body"),
	}, actions...)

	if err := chromedp.Run(browserCtx, run...); err != nil {
		logger.Error("Headless Chrome run failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return errors.Wrap(errors.ErrCodeBrowser, "headless Chrome failed", err)
	}

	logger.Debug("Headless Chrome run completed",
		zap.Int("page_size", len(page)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
