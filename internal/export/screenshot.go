// Package export turns rendered pages into PNG images with headless Chrome.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"golang.org/x/net/html"

	"github.com/psidex/kgviz/internal/lib"
)

const (
	DefaultWidth   = 1280
	DefaultHeight  = 720
	DefaultTimeout = 30 * time.Second
	// DefaultSettle covers the echarts entry animation.
	DefaultSettle = 1500 * time.Millisecond
)

// Options configures a screenshot.
type Options struct {
	Width   int64         `mapstructure:"width"`
	Height  int64         `mapstructure:"height"`
	Scale   float64       `mapstructure:"scale"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Settle is how long to wait after navigation, a negative value skips the wait.
	Settle time.Duration `mapstructure:"settle"`
	// Selector limits the capture to one element, the full page otherwise.
	Selector string `mapstructure:"selector"`
	// ChromePath overrides the browser executable lookup.
	ChromePath string `mapstructure:"chromePath"`
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Settle < 0 {
		o.Settle = 0
	} else if o.Settle == 0 {
		o.Settle = DefaultSettle
	}
	return o
}

// Shot is a captured page.
type Shot struct {
	PNG      []byte
	Title    string
	Bytes    int64
	Duration time.Duration
}

// Shooter takes screenshots, starting a fresh headless browser for each capture.
type Shooter struct {
	opts   Options
	logger *slog.Logger
}

func NewShooter(o Options, logger *slog.Logger) *Shooter {
	return &Shooter{opts: o.withDefaults(), logger: lib.LoggerOr(logger)}
}

// FileURL turns a local path into a file:// URL.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// Capture loads target and screenshots it once the page has settled.
func (s *Shooter) Capture(ctx context.Context, target string) (*Shot, error) {
	startTime := time.Now()

	timeoutCtx, timeoutCancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer timeoutCancel()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(int(s.opts.Width), int(s.opts.Height)),
	)
	if s.opts.ChromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(s.opts.ChromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, allocOpts...)
	defer allocCancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var downloadedBytes atomic.Int64
	countBytesAction := func(ctx context.Context) error {
		chromedp.ListenTarget(ctx, func(ev interface{}) {
			switch ev := ev.(type) {
			case *network.EventLoadingFinished:
				downloadedBytes.Add(int64(ev.EncodedDataLength))
			}
		})
		return nil
	}

	var pageSource string
	var png []byte
	actions := []chromedp.Action{
		network.Enable(),
		chromedp.ActionFunc(countBytesAction),
		chromedp.EmulateViewport(s.opts.Width, s.opts.Height, chromedp.EmulateScale(s.opts.Scale)),
		chromedp.Navigate(target),
		chromedp.Sleep(s.opts.Settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			node, err := dom.GetDocument().Do(ctx)
			if err != nil {
				return err
			}
			pageSource, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
			return err
		}),
	}
	if s.opts.Selector == "" {
		actions = append(actions, chromedp.FullScreenshot(&png, 100))
	} else {
		actions = append(actions,
			chromedp.WaitVisible(s.opts.Selector, chromedp.ByQuery),
			chromedp.Screenshot(s.opts.Selector, &png, chromedp.ByQuery),
		)
	}

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil, fmt.Errorf("capturing %s: %w", target, err)
	}

	shot := &Shot{
		PNG:      png,
		Title:    PageTitle(pageSource),
		Bytes:    downloadedBytes.Load(),
		Duration: time.Since(startTime),
	}
	s.logger.Info("captured page",
		"target", target, "title", shot.Title, "png", len(png),
		"downloaded", shot.Bytes, "took", shot.Duration)
	return shot, nil
}

// CaptureFile screenshots a local HTML file and writes the PNG to out.
func (s *Shooter) CaptureFile(ctx context.Context, page, out string) (*Shot, error) {
	target, err := FileURL(page)
	if err != nil {
		return nil, err
	}
	shot, err := s.Capture(ctx, target)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(out, shot.PNG, 0o644); err != nil {
		return nil, fmt.Errorf("writing screenshot: %w", err)
	}
	return shot, nil
}

// PageTitle returns the text of the first <title> element, or "".
func PageTitle(source string) string {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return ""
	}

	var title string
	var visitNode func(*html.Node) bool
	visitNode = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if visitNode(c) {
				return true
			}
		}
		return false
	}
	visitNode(doc)
	return title
}
