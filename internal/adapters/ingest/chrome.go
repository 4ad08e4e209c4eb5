package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultSettleDelay = 3 * time.Second

// Fetcher returns the rendered markup of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (string, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (string, error) { return f(ctx, url) }

// ChromeFetcher renders pages in headless Chrome so script-built markup is
// included.
type ChromeFetcher struct {
	execPath string
	settle   time.Duration
}

// NewChromeFetcher builds a fetcher. An empty execPath lets chromedp find the
// browser; settle is how long to wait after navigation.
func NewChromeFetcher(execPath string, settle time.Duration) *ChromeFetcher {
	if settle <= 0 {
		settle = defaultSettleDelay
	}
	return &ChromeFetcher{execPath: execPath, settle: settle}
}

// Fetch navigates to url and returns the document's outer HTML.
func (c *ChromeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if c.execPath != "" {
		opts = append(opts, chromedp.ExecPath(c.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...any) {}))
	defer cancelTab()

	var html string
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(c.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return html, nil
}
