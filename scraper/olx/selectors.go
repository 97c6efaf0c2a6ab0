package olx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrMissingField is returned when a required element or attribute is absent.
var ErrMissingField = errors.New("missing field")

// Field names a value read from a listing card.
type Field string

const (
	FieldName     Field = "name"
	FieldID       Field = "id"
	FieldImage    Field = "image"
	FieldPrice    Field = "price"
	FieldDate     Field = "date"
	FieldLocation Field = "location"
	FieldLink     Field = "link"
)

// Locator points at a value: the first element matching CSS, then either its
// text (Attr empty) or the named attribute.
type Locator struct {
	CSS  string
	Attr string
}

// Selectors gathers every markup marker the scraper depends on. When the
// site changes its markup this is the only place to update.
type Selectors struct {
	// ResultsContainer must be present for a results page to count as loaded.
	ResultsContainer string
	// ListingVariants are the card classes the site alternates between.
	ListingVariants []string
	Pagination      string
	LastPageLink    string
	// AdPayload locates the JSON embedded in a single ad page.
	AdPayload Locator
	// OnlineBadge is stripped from listing names.
	OnlineBadge string
	Fields      map[Field]Locator
}

// DefaultSelectors returns the markers matching the current site markup.
func DefaultSelectors() Selectors {
	return Selectors{
		ResultsContainer: "div.sc-1fcmfeb-0.WQhDk",
		ListingVariants:  []string{"li.sc-1fcmfeb-2.ggOGTJ", "li.sc-1fcmfeb-2.hFOgZc"},
		Pagination:       "ul.sc-1m4ygug-4.cXxSMf",
		LastPageLink:     `a[data-lurker-detail="last_page"]`,
		AdPayload:        Locator{CSS: "script#initial-data", Attr: "data-json"},
		OnlineBadge:      "Anunciante online",
		Fields: map[Field]Locator{
			FieldName:     {CSS: "div.fnmrjs-8.kRlFBv"},
			FieldID:       {CSS: `a[data-lurker-detail="list_id"]`, Attr: "data-lurker_list_id"},
			FieldImage:    {CSS: "div.fnmrjs-5.jksoiN img", Attr: "src"},
			FieldPrice:    {CSS: "div.fnmrjs-15.clbSMi"},
			FieldDate:     {CSS: "div.fnmrjs-18.gMKELN"},
			FieldLocation: {CSS: "div.fnmrjs-21.bktOWr p.fnmrjs-13.hdwqVC"},
			FieldLink:     {CSS: `a[data-lurker-detail="list_id"]`, Attr: "href"},
		},
	}
}

func (s Selectors) listingSelector() string {
	return strings.Join(s.ListingVariants, ", ")
}

// locate reads a value through a Locator, reporting whether it was found.
func locate(sel *goquery.Selection, loc Locator) (string, bool) {
	el := sel.Find(loc.CSS).First()
	if el.Length() == 0 {
		return "", false
	}
	if loc.Attr == "" {
		return el.Text(), true
	}
	return el.Attr(loc.Attr)
}

// lookup reads an optional field.
func (s Selectors) lookup(sel *goquery.Selection, f Field) (string, bool) {
	loc, ok := s.Fields[f]
	if !ok {
		return "", false
	}
	return locate(sel, loc)
}

// require reads a field that every listing card must carry.
func (s Selectors) require(sel *goquery.Selection, f Field) (string, error) {
	v, ok := s.lookup(sel, f)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingField, f)
	}
	return v, nil
}
