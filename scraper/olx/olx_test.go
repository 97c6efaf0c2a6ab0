package olx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olx-scraper/services"
	"olx-scraper/utils"
)

var fixedNow = func() time.Time { return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC) }

func newTestScraper(f Fetcher, maxAttempts int) *Scraper {
	return New(SearchQuery{Term: "notebook", State: "sp"}, f, utils.NewNopLogger(), Options{
		Retry: &utils.RetryConfig{MaxAttempts: maxAttempts},
		Now:   fixedNow,
	})
}

func pageCard(page, n int) string {
	return card(cardFixture{id: fmt.Sprintf("%d%02d", page, n), name: fmt.Sprintf("Notebook p%d n%d", page, n), price: "R$ 1.000"})
}

func TestExtractAllPagesVisitsEveryPage(t *testing.T) {
	f := newFakeFetcher()
	for p := 1; p <= 5; p++ {
		f.set(mustURL(Relevance, p), resultsPage(5, pageCard(p, 1), pageCard(p, 2)))
	}

	listings, err := newTestScraper(f, 3).Extract(context.Background(), Relevance, AllPages())
	require.NoError(t, err)

	want := []string{}
	for p := 1; p <= 5; p++ {
		want = append(want, mustURL(Relevance, p))
	}
	assert.Equal(t, want, f.visits)
	require.Len(t, listings, 10)
	assert.Equal(t, "101", listings[0].ID)
	assert.Equal(t, "502", listings[9].ID)
}

func TestExtractAllPagesWithoutPaginationIsOnePage(t *testing.T) {
	f := newFakeFetcher()
	f.set(mustURL(Newest, 1), resultsPage(0, pageCard(1, 1)))

	listings, err := newTestScraper(f, 3).Extract(context.Background(), Newest, AllPages())
	require.NoError(t, err)
	assert.Len(t, listings, 1)
	assert.Equal(t, []string{mustURL(Newest, 1)}, f.visits)
}

func TestExtractFixedLimitWithinAvailable(t *testing.T) {
	f := newFakeFetcher()
	for p := 1; p <= 5; p++ {
		f.set(mustURL(PriceAscending, p), resultsPage(5, pageCard(p, 1)))
	}

	listings, err := newTestScraper(f, 3).Extract(context.Background(), PriceAscending, FixedLimit(2))
	require.NoError(t, err)
	assert.Equal(t, []string{mustURL(PriceAscending, 1), mustURL(PriceAscending, 2)}, f.visits)
	assert.Len(t, listings, 2)
}

func TestExtractFixedLimitAboveAvailableFallsBackToOnePage(t *testing.T) {
	f := newFakeFetcher()
	for p := 1; p <= 2; p++ {
		f.set(mustURL(Relevance, p), resultsPage(2, pageCard(p, 1)))
	}

	listings, err := newTestScraper(f, 3).Extract(context.Background(), Relevance, FixedLimit(3))
	require.NoError(t, err)
	assert.Equal(t, []string{mustURL(Relevance, 1)}, f.visits)
	assert.Len(t, listings, 1)
}

func TestExtractFixedLimitWithoutPaginationIsOnePage(t *testing.T) {
	f := newFakeFetcher()
	f.set(mustURL(Relevance, 1), resultsPage(0, pageCard(1, 1)))

	_, err := newTestScraper(f, 3).Extract(context.Background(), Relevance, FixedLimit(1))
	require.NoError(t, err)
	assert.Equal(t, []string{mustURL(Relevance, 1)}, f.visits)
}

func TestExtractFixedLimitFallbackWarnings(t *testing.T) {
	tests := []struct {
		lastPage int
		want     string
		notWant  string
	}{
		{lastPage: 2, want: "exceeds the 2 available pages", notWant: "Page count not found"},
		{lastPage: 0, want: "Page count not found", notWant: "exceeds"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		logger := utils.NewLoggerWithOptions(utils.LoggerOptions{Writer: &buf, Level: slog.LevelWarn})

		f := newFakeFetcher()
		f.set(mustURL(Relevance, 1), resultsPage(tt.lastPage, pageCard(1, 1)))

		s := New(SearchQuery{Term: "notebook", State: "sp"}, f, logger, Options{
			Retry: &utils.RetryConfig{MaxAttempts: 3},
			Now:   fixedNow,
		})
		_, err := s.Extract(context.Background(), Relevance, FixedLimit(3))
		require.NoError(t, err)

		assert.Contains(t, buf.String(), tt.want)
		assert.NotContains(t, buf.String(), tt.notWant)
	}
}

func TestExtractRejectsNonPositiveLimit(t *testing.T) {
	f := newFakeFetcher()
	_, err := newTestScraper(f, 3).Extract(context.Background(), Relevance, FixedLimit(0))
	require.Error(t, err)
	assert.Empty(t, f.visits)
}

func TestExtractSinglePageBothVariants(t *testing.T) {
	f := newFakeFetcher()
	f.set(mustURL(Relevance, 1), resultsPage(9,
		card(cardFixture{variant: variantA, id: "1", name: "Notebook Lenovo", price: "R$ 2.300"}),
		card(cardFixture{variant: variantB, id: "2", name: "Notebook Asus", price: "R$ 1.850"}),
	))

	listings, err := newTestScraper(f, 3).Extract(context.Background(), Relevance, SinglePage())
	require.NoError(t, err)
	require.Len(t, listings, 2)
	for _, l := range listings {
		assert.NotEmpty(t, l.ID)
		assert.NotEmpty(t, l.Link)
	}
	assert.Equal(t, "Notebook Lenovo", listings[0].Name)
	assert.Equal(t, "Notebook Asus", listings[1].Name)
	assert.Equal(t, []string{mustURL(Relevance, 1)}, f.visits, "single page must not follow pagination")
}

func TestExtractKeepsDocumentOrderAcrossVariants(t *testing.T) {
	f := newFakeFetcher()
	f.set(mustURL(Relevance, 1), resultsPage(0,
		card(cardFixture{variant: variantB, id: "1", name: "first"}),
		card(cardFixture{variant: variantA, id: "2", name: "second"}),
		card(cardFixture{variant: variantB, id: "3", name: "third"}),
	))

	listings, err := newTestScraper(f, 3).Extract(context.Background(), Relevance, SinglePage())
	require.NoError(t, err)
	require.Len(t, listings, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{listings[0].ID, listings[1].ID, listings[2].ID})
}

func TestExtractSkipsNamelessListing(t *testing.T) {
	f := newFakeFetcher()
	f.set(mustURL(Relevance, 1), resultsPage(0,
		card(cardFixture{id: "1"}),
		card(cardFixture{id: "2", name: "Notebook HP"}),
	))

	listings, err := newTestScraper(f, 3).Extract(context.Background(), Relevance, SinglePage())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "2", listings[0].ID)
}

func TestExtractRefetchesUntilResultsAppear(t *testing.T) {
	f := newFakeFetcher()
	url := mustURL(Relevance, 1)
	f.set(url, emptyPage, emptyPage, resultsPage(0, pageCard(1, 1)))

	listings, err := newTestScraper(f, 10).Extract(context.Background(), Relevance, SinglePage())
	require.NoError(t, err)
	assert.Len(t, listings, 1)
	assert.Equal(t, []string{url, url, url}, f.visits)
}

func TestExtractGivesUpAfterAttemptCap(t *testing.T) {
	f := newFakeFetcher()

	_, err := newTestScraper(f, 4).Extract(context.Background(), Relevance, SinglePage())
	require.ErrorIs(t, err, ErrAnchorNotFound)
	assert.Len(t, f.visits, 4)
}

func TestExtractTransportErrorIsNotRetried(t *testing.T) {
	f := newFakeFetcher()
	boom := errors.New("connection reset")
	f.errs[mustURL(Relevance, 1)] = boom

	_, err := newTestScraper(f, 10).Extract(context.Background(), Relevance, SinglePage())
	require.ErrorIs(t, err, boom)
	assert.Len(t, f.visits, 1)
}

func TestExtractLookupFailureAbortsExtraction(t *testing.T) {
	f := newFakeFetcher()
	f.set(mustURL(Relevance, 1), resultsPage(0,
		card(cardFixture{id: "1", name: "ok"}),
		card(cardFixture{id: "2", name: "bad", location: "Lugar Nenhum, Centro - DDD 10"}),
	))

	listings, err := newTestScraper(f, 3).Extract(context.Background(), Relevance, SinglePage())
	require.ErrorIs(t, err, services.ErrUnknownAreaCode)
	assert.Nil(t, listings)
}

func TestExtractHonoursCancelledContext(t *testing.T) {
	f := newFakeFetcher()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScraper(f, 0).Extract(ctx, Relevance, SinglePage())
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.visits)
}

func TestExtractUsesCustomSelectors(t *testing.T) {
	sel := DefaultSelectors()
	sel.ResultsContainer = "section#results"

	f := newFakeFetcher()
	f.set(mustURL(Relevance, 1), `<html><body><section id="results">`+card(cardFixture{id: "7", name: "Custom"})+`</section></body></html>`)

	s := New(SearchQuery{Term: "notebook", State: "sp"}, f, utils.NewNopLogger(), Options{
		Selectors: &sel,
		Retry:     &utils.RetryConfig{MaxAttempts: 2},
		Now:       fixedNow,
	})
	listings, err := s.Extract(context.Background(), Relevance, SinglePage())
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "7", listings[0].ID)
}
