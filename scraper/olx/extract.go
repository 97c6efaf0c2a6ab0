package olx

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"olx-scraper/models"
	"olx-scraper/services"
	"olx-scraper/utils"
)

// Extractor maps listing cards on a results page to normalized Listings.
type Extractor struct {
	selectors Selectors
	now       func() time.Time
	logger    *utils.Logger
}

func NewExtractor(selectors Selectors, now func() time.Time, logger *utils.Logger) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{selectors: selectors, now: now, logger: logger}
}

// ExtractPage returns every listing under the results container in document
// order. Cards without a name are skipped; any other failure aborts the page.
func (e *Extractor) ExtractPage(doc *goquery.Document) ([]*models.Listing, error) {
	container := doc.Find(e.selectors.ResultsContainer).First()

	var (
		listings []*models.Listing
		err      error
	)
	container.Find(e.selectors.listingSelector()).EachWithBreak(func(i int, item *goquery.Selection) bool {
		var l *models.Listing
		l, err = e.Extract(item)
		if err != nil {
			err = fmt.Errorf("listing %d: %w", i, err)
			return false
		}
		if l != nil {
			listings = append(listings, l)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// Extract maps one card. A nil Listing with a nil error means the card has
// no name and is skipped.
func (e *Extractor) Extract(item *goquery.Selection) (*models.Listing, error) {
	name, ok := e.selectors.lookup(item, FieldName)
	if !ok {
		return nil, nil
	}
	if e.selectors.OnlineBadge != "" {
		name = strings.ReplaceAll(name, e.selectors.OnlineBadge, "")
	}

	id, err := e.selectors.require(item, FieldID)
	if err != nil {
		return nil, err
	}
	image, err := e.selectors.require(item, FieldImage)
	if err != nil {
		return nil, err
	}
	link, err := e.selectors.require(item, FieldLink)
	if err != nil {
		return nil, err
	}

	rawDate, err := e.selectors.require(item, FieldDate)
	if err != nil {
		return nil, err
	}
	date, err := services.NormalizeDate(rawDate, e.now())
	if err != nil {
		return nil, fmt.Errorf("date of %s: %w", id, err)
	}

	rawLocation, err := e.selectors.require(item, FieldLocation)
	if err != nil {
		return nil, err
	}
	loc, err := services.SplitLocation(rawLocation)
	if err != nil {
		return nil, fmt.Errorf("location of %s: %w", id, err)
	}

	return &models.Listing{
		Name:         strings.TrimSpace(name),
		ID:           id,
		ImageURL:     image,
		Price:        e.price(item, id),
		Date:         date,
		City:         loc.City,
		Neighborhood: loc.Neighborhood,
		State:        loc.State,
		Link:         link,
	}, nil
}

func (e *Extractor) price(item *goquery.Selection, id string) string {
	raw, _ := e.selectors.lookup(item, FieldPrice)
	if strings.TrimSpace(raw) == "" {
		return models.PriceNotAvailable
	}
	price, err := services.NormalizePrice(raw)
	if err != nil {
		e.logger.Warn("[olx] Listing %s: %v; recording price as %q", id, err, models.PriceNotAvailable)
		return models.PriceNotAvailable
	}
	return price
}
