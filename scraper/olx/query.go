package olx

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is formatted with the state subdomain.
const DefaultBaseURL = "https://%s.olx.com.br/"

// SearchQuery identifies the keyword and the regional subdomain to search.
type SearchQuery struct {
	Term  string
	State string
}

// FilterMode selects the ordering of search results.
type FilterMode int

const (
	Relevance FilterMode = iota
	PriceAscending
	Newest
)

func (f FilterMode) String() string {
	switch f {
	case Relevance:
		return "relevance"
	case PriceAscending:
		return "price"
	case Newest:
		return "new"
	default:
		return "FilterMode(" + strconv.Itoa(int(f)) + ")"
	}
}

// ParseFilterMode accepts "relevance", "price" or "new".
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "relevance":
		return Relevance, nil
	case "price":
		return PriceAscending, nil
	case "new", "newest":
		return Newest, nil
	}
	return 0, fmt.Errorf("unknown filter %q (want relevance, price or new)", s)
}

// PaginationMode is the kind of PaginationPolicy.
type PaginationMode int

const (
	SinglePageMode PaginationMode = iota
	FixedLimitMode
	AllPagesMode
)

// PaginationPolicy tells the driver how many result pages to visit.
type PaginationPolicy struct {
	Mode  PaginationMode
	Limit int
}

func SinglePage() PaginationPolicy { return PaginationPolicy{Mode: SinglePageMode} }

func FixedLimit(n int) PaginationPolicy { return PaginationPolicy{Mode: FixedLimitMode, Limit: n} }

func AllPages() PaginationPolicy { return PaginationPolicy{Mode: AllPagesMode} }

func (p PaginationPolicy) String() string {
	switch p.Mode {
	case SinglePageMode:
		return "single page"
	case FixedLimitMode:
		return fmt.Sprintf("limit %d", p.Limit)
	case AllPagesMode:
		return "all pages"
	}
	return "unknown policy"
}

func (p PaginationPolicy) validate() error {
	switch p.Mode {
	case SinglePageMode, AllPagesMode:
		return nil
	case FixedLimitMode:
		if p.Limit < 1 {
			return fmt.Errorf("page limit must be at least 1, got %d", p.Limit)
		}
		return nil
	}
	return fmt.Errorf("unknown pagination mode %d", p.Mode)
}

// SearchURL builds the results URL for one page.
func SearchURL(baseURL string, q SearchQuery, filter FilterMode, page int) (string, error) {
	u, err := url.Parse(fmt.Sprintf(baseURL, q.State))
	if err != nil {
		return "", fmt.Errorf("olx: parse base url: %w", err)
	}

	v := url.Values{}
	v.Set("o", strconv.Itoa(page))
	v.Set("q", q.Term)
	switch filter {
	case Relevance:
	case PriceAscending:
		v.Set("sp", "1")
	case Newest:
		v.Set("sf", "1")
	default:
		return "", fmt.Errorf("olx: unknown filter %d", filter)
	}

	u.RawQuery = v.Encode()
	return u.String(), nil
}
