package olx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"olx-scraper/config"
	"olx-scraper/models"
	"olx-scraper/utils"
)

// ErrAnchorNotFound is returned when a results page never shows the results
// container within the configured number of attempts.
var ErrAnchorNotFound = errors.New("results container not found")

// Options tune a Scraper. Zero values select the defaults.
type Options struct {
	BaseURL   string
	Selectors *Selectors
	// Retry bounds the refetch loop that waits for the results container.
	// nil polls back to back up to 10000 times.
	Retry *utils.RetryConfig
	Now   func() time.Time
}

// OptionsFromConfig maps application config onto scraper options.
func OptionsFromConfig(cfg *config.Config, logger *utils.Logger) Options {
	return Options{
		BaseURL: cfg.BaseURL,
		Retry: &utils.RetryConfig{
			MaxAttempts: cfg.AnchorMaxAttempts,
			BaseDelay:   time.Duration(cfg.AnchorRetryDelayMs) * time.Millisecond,
			MaxDelay:    time.Duration(cfg.AnchorMaxDelayMs) * time.Millisecond,
			Logger:      logger,
		},
	}
}

// Scraper runs searches for one query against one regional subdomain.
type Scraper struct {
	query     SearchQuery
	baseURL   string
	fetcher   Fetcher
	selectors Selectors
	extractor *Extractor
	retry     *utils.RetryConfig
	logger    *utils.Logger
}

// New creates a ready-to-use OLX Scraper.
func New(query SearchQuery, fetcher Fetcher, logger *utils.Logger, opts Options) *Scraper {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	selectors := DefaultSelectors()
	if opts.Selectors != nil {
		selectors = *opts.Selectors
	}
	if opts.Retry == nil {
		opts.Retry = &utils.RetryConfig{MaxAttempts: 10000, Logger: logger}
	}

	return &Scraper{
		query:     query,
		baseURL:   opts.BaseURL,
		fetcher:   fetcher,
		selectors: selectors,
		extractor: NewExtractor(selectors, opts.Now, logger),
		retry:     opts.Retry,
		logger:    logger,
	}
}

// Extract walks result pages according to policy and returns the listings of
// every visited page, in page order.
//
// The page count is read once, from page 1. A FixedLimit larger than the
// number of available pages falls back to page 1 only; it is not clamped.
func (s *Scraper) Extract(ctx context.Context, filter FilterMode, policy PaginationPolicy) ([]*models.Listing, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}

	s.logger.Info("[olx] Searching %q in %s (filter: %s, pages: %s)",
		s.query.Term, s.query.State, filter, policy)

	var listings []*models.Listing
	totalPages := 1

	for page := 1; page <= totalPages; page++ {
		doc, err := s.fetchResults(ctx, filter, page)
		if err != nil {
			return nil, err
		}

		if page == 1 {
			totalPages = s.totalPages(doc, policy)
			s.logger.Debug("[olx] Visiting %d page(s)", totalPages)
		}

		pageListings, err := s.extractor.ExtractPage(doc)
		if err != nil {
			return nil, fmt.Errorf("olx: page %d: %w", page, err)
		}
		listings = append(listings, pageListings...)

		s.logger.Info("[olx] Page %d/%d done, collected %d listings so far",
			page, totalPages, len(listings))
	}

	return listings, nil
}

// fetchResults refetches a page until the results container shows up. The
// site sometimes serves pages without results; those are polled again, while
// transport errors abort immediately.
func (s *Scraper) fetchResults(ctx context.Context, filter FilterMode, page int) (*goquery.Document, error) {
	pageURL, err := SearchURL(s.baseURL, s.query, filter, page)
	if err != nil {
		return nil, err
	}

	var doc *goquery.Document
	err = s.retry.Until(ctx, fmt.Sprintf("results-page-%d", page), func(attempt int) (bool, error) {
		d, err := s.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return false, err
		}
		if d.Find(s.selectors.ResultsContainer).Length() == 0 {
			return false, nil
		}
		doc = d
		return true, nil
	})
	if errors.Is(err, utils.ErrAttemptsExhausted) {
		return nil, fmt.Errorf("olx: %s: %w: %w", pageURL, ErrAnchorNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Scraper) totalPages(doc *goquery.Document, policy PaginationPolicy) int {
	switch policy.Mode {
	case AllPagesMode:
		if n, ok := ResolvePageCount(doc, s.selectors); ok {
			return n
		}
	case FixedLimitMode:
		n, ok := ResolvePageCount(doc, s.selectors)
		switch {
		case !ok:
			s.logger.Warn("[olx] Page count not found, fetching page 1 only (limit %d)", policy.Limit)
		case policy.Limit > n:
			s.logger.Warn("[olx] Page limit %d exceeds the %d available pages, fetching page 1 only", policy.Limit, n)
		default:
			return policy.Limit
		}
	}
	return 1
}
