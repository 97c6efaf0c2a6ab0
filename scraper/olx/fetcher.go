package olx

import (
	"bytes"
	"context"
	"fmt"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// Fetcher retrieves a page and returns its parsed document. Transport and
// HTTP status failures are returned as errors; Fetcher never retries.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// RandomUserAgent picks a real browser user agent. Callers pick once per
// session and pass it to the fetcher.
func RandomUserAgent() string {
	return browser.Random()
}

// HTTPFetcherOptions configures an HTTPFetcher.
type HTTPFetcherOptions struct {
	UserAgent        string
	Timeout          time.Duration
	CloudflareBypass bool
}

// HTTPFetcher downloads pages with resty and parses them with goquery.
type HTTPFetcher struct {
	client    *resty.Client
	userAgent string
}

func NewHTTPFetcher(opts HTTPFetcherOptions) *HTTPFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = RandomUserAgent()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	client := resty.New()
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetTimeout(opts.Timeout)

	return &HTTPFetcher{client: client, userAgent: opts.UserAgent}
}

// UserAgent returns the header value sent with every request.
func (f *HTTPFetcher) UserAgent() string {
	return f.userAgent
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("olx: fetch %s: %w", url, err)
	}
	if res.IsError() {
		return nil, &StatusError{URL: url, Code: res.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("olx: parse %s: %w", url, err)
	}
	return doc, nil
}
