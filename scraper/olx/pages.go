package olx

import (
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

var lastPageRegexp = regexp.MustCompile(`o=(\d+)`)

// ResolvePageCount reads the number of result pages from the pagination
// control. It reports false when the control or its last-page link is
// missing, which callers treat as a single page.
func ResolvePageCount(doc *goquery.Document, sel Selectors) (int, bool) {
	pagination := doc.Find(sel.Pagination).First()
	if pagination.Length() == 0 {
		return 0, false
	}

	href, ok := pagination.Find(sel.LastPageLink).First().Attr("href")
	if !ok {
		return 0, false
	}

	m := lastPageRegexp.FindStringSubmatch(href)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
