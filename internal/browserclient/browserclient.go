// Package browserclient implements the ports.BrowserClient contract with a
// headless Chrome instance driven by github.com/chromedp/chromedp, used by
// the Workday and Eightfold adapters to bootstrap a cookie/CSRF session
// before making API calls (§6).
package browserclient

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"jobscrapecore/internal/ports"
)

// Client owns the shared headless-browser allocator. Bootstrap is safe for
// concurrent use; each call spins up its own tab off the shared allocator.
type Client struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// New starts the shared headless Chrome allocator.
func New() *Client {
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(),
		append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", true))...,
	)
	return &Client{allocCtx: allocCtx, allocCancel: cancel}
}

var csrfMetaPattern = regexp.MustCompile(`(?i)<meta[^>]+name=["']csrf-token["'][^>]+content=["']([^"']+)["']`)

// Bootstrap implements ports.BrowserClient: navigate to url, wait for the
// page to settle, then harvest cookies and (best-effort) a CSRF token.
func (c *Client) Bootstrap(ctx context.Context, url string) (*ports.BrowserSession, error) {
	tabCtx, cancel := chromedp.NewContext(c.allocCtx)
	defer cancel()

	ctx, timeoutCancel := context.WithTimeout(ctx, 20*time.Second)
	defer timeoutCancel()

	var html string
	var cookies []*network.Cookie
	err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.OuterHTML("html", &html),
		chromedp.ActionFunc(func(ctx context.Context) error {
			cs, err := network.GetAllCookies().Do(ctx)
			if err != nil {
				return err
			}
			cookies = cs
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("browser bootstrap %s: %w", url, err)
	}

	sess := &ports.BrowserSession{BaseURL: url}
	for _, ck := range cookies {
		sess.Cookies = append(sess.Cookies, &ports.Cookie{Name: ck.Name, Value: ck.Value, Domain: ck.Domain})
	}
	if m := csrfMetaPattern.FindStringSubmatch(html); m != nil {
		sess.CSRFToken = m[1]
	}
	return sess, nil
}

// Close shuts down the shared headless Chrome allocator.
func (c *Client) Close() error {
	c.allocCancel()
	return nil
}
