package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const (
	networkIdleWait = 15 * time.Second
	challengeWait   = 30 * time.Second
	challengePoll   = 500 * time.Millisecond
)

// challengeTitles are page titles shown by bot-check interstitials.
var challengeTitles = []string{
	"just a moment",
	"attention required",
	"checking your browser",
	"bitte warten",
	"please wait",
}

// ChromeOptions configure a ChromeFetcher.
type ChromeOptions struct {
	Headless  bool
	UserAgent string
	Timeout   time.Duration
}

// ChromeFetcher renders pages in one headless Chrome session. Each fetch opens
// a new tab in that session; fetches are serialized.
type ChromeFetcher struct {
	opts ChromeOptions

	mu          sync.Mutex
	chromeDir   string
	allocCancel context.CancelFunc
	browserCtx  context.Context
	cancel      context.CancelFunc
}

func NewChromeFetcher(opts ChromeOptions) *ChromeFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &ChromeFetcher{opts: opts}
}

// start launches the browser on first use.
func (f *ChromeFetcher) start() error {
	if f.browserCtx != nil {
		return nil
	}

	chromeDir, err := os.MkdirTemp("", "footodds_chrome_")
	if err != nil {
		return fmt.Errorf("create chrome temp dir: %w", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", f.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserDataDir(chromeDir),
	)
	if f.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(f.opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		slog.Debug("chromedp", "message", fmt.Sprintf(format, v...))
	}))

	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		os.RemoveAll(chromeDir)
		return fmt.Errorf("start chrome: %w", err)
	}

	f.chromeDir = chromeDir
	f.allocCancel = allocCancel
	f.browserCtx = browserCtx
	f.cancel = cancel
	return nil
}

func (f *ChromeFetcher) Fetch(ctx context.Context, url string, opts Options) (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.start(); err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, f.opts.Timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	idle := make(chan struct{}, 1)
	if opts.NetworkIdle {
		chromedp.ListenTarget(tabCtx, func(ev interface{}) {
			if e, ok := ev.(*page.EventLifecycleEvent); ok && e.Name == "networkIdle" {
				select {
				case idle <- struct{}{}:
				default:
				}
			}
		})
		if err := chromedp.Run(tabCtx, page.SetLifecycleEventsEnabled(true)); err != nil {
			return nil, fetchErr(ctx, "enable lifecycle events", err)
		}
	}

	if err := chromedp.Run(tabCtx, chromedp.Navigate(url)); err != nil {
		return nil, fetchErr(ctx, "navigate", err)
	}

	if opts.NetworkIdle {
		select {
		case <-idle:
		case <-time.After(networkIdleWait):
			slog.Debug("network idle wait timed out", "url", url)
		case <-tabCtx.Done():
			return nil, fetchErr(ctx, "wait network idle", tabCtx.Err())
		}
	}

	if opts.SolveChallenge {
		if err := waitChallenge(tabCtx); err != nil {
			return nil, fetchErr(ctx, "wait challenge", err)
		}
	}

	var html, location string
	if err := chromedp.Run(tabCtx,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return nil, fetchErr(ctx, "read page", err)
	}

	p, err := NewHTMLPageString(location, html)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// waitChallenge polls the title until it no longer looks like an interstitial.
func waitChallenge(ctx context.Context) error {
	deadline := time.Now().Add(challengeWait)
	for {
		var title string
		if err := chromedp.Run(ctx, chromedp.Title(&title)); err != nil {
			return err
		}
		if !isChallengeTitle(title) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("challenge page did not clear: %q", title)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(challengePoll):
		}
	}
}

func isChallengeTitle(title string) bool {
	t := strings.ToLower(title)
	for _, c := range challengeTitles {
		if strings.Contains(t, c) {
			return true
		}
	}
	return false
}

// fetchErr reports the caller's cancellation in preference to chromedp's error.
func fetchErr(ctx context.Context, step string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("chromedp %s: %w", step, err)
}

func (f *ChromeFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browserCtx == nil {
		return nil
	}
	f.cancel()
	f.allocCancel()
	f.browserCtx = nil
	return os.RemoveAll(f.chromeDir)
}
