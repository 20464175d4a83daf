// Package fetch retrieves bookmaker pages and exposes them for CSS queries.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrUnexpectedStatus is returned when a page answers with a non-200 status.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Options tune a single fetch. Fetchers that cannot honour an option ignore it.
type Options struct {
	// NetworkIdle waits until the page stops issuing network requests.
	NetworkIdle bool
	// SolveChallenge waits for a bot-check interstitial to clear on its own.
	SolveChallenge bool
}

// Page is a fetched document.
type Page interface {
	URL() string
	Title() string
	// Texts returns the normalized, non-empty text of every element matching sel.
	Texts(sel string) []string
	// Attrs returns the non-empty values of attr on every element matching sel.
	Attrs(sel, attr string) []string
	// First returns the text of the first matching element with text, or "".
	First(sel string) string
}

// Fetcher retrieves pages. Implementations are owned by one scraper at a time.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts Options) (Page, error)
	Close() error
}

// Kind names a Fetcher implementation in configuration.
type Kind string

const (
	KindChrome Kind = "chrome"
	KindHTTP   Kind = "http"
)

// Settings configure New.
type Settings struct {
	Kind      Kind
	UserAgent string
	Timeout   time.Duration
	Headless  bool
}

// New builds the fetcher named by settings.Kind.
func New(settings Settings) (Fetcher, error) {
	switch settings.Kind {
	case KindChrome, "":
		return NewChromeFetcher(ChromeOptions{
			Headless:  settings.Headless,
			UserAgent: settings.UserAgent,
			Timeout:   settings.Timeout,
		}), nil
	case KindHTTP:
		return NewHTTPFetcher(HTTPOptions{
			UserAgent: settings.UserAgent,
			Timeout:   settings.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown fetcher %q", settings.Kind)
	}
}
