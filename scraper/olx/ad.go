package olx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"olx-scraper/models"
	"olx-scraper/services"
	"olx-scraper/utils"
)

// ErrMissingPayload is returned when an ad page has no embedded ad JSON.
var ErrMissingPayload = errors.New("ad payload not found")

// AdResult holds the outcome of FetchOne: Raw when the complete payload was
// requested, Details otherwise.
type AdResult struct {
	Details *models.AdDetails
	Raw     map[string]any
}

type adPayload struct {
	Subject *string     `json:"subject"`
	ListID  json.Number `json:"listId"`
	Images  []struct {
		Original string `json:"original"`
	} `json:"images"`
	PriceValue  string `json:"priceValue"`
	Description string `json:"description"`
	ListTime    string `json:"listTime"`
	User        struct {
		Name string `json:"name"`
	} `json:"user"`
	Phone struct {
		Phone string `json:"phone"`
	} `json:"phone"`
	ParentCategoryName string          `json:"parentCategoryName"`
	CategoryName       string          `json:"categoryName"`
	Location           json.RawMessage `json:"location"`
}

// IsMarketplaceURL reports whether rawURL points at an OLX host.
func IsMarketplaceURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Hostname()), "olx.com")
}

// FetchOne loads a single ad page and reads the JSON the site embeds in it.
// URLs outside OLX yield a nil result and a nil error. A nil logger discards
// warnings.
func FetchOne(ctx context.Context, f Fetcher, rawURL string, complete bool, logger *utils.Logger) (*AdResult, error) {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return fetchOne(ctx, f, DefaultSelectors(), rawURL, complete, logger)
}

func fetchOne(ctx context.Context, f Fetcher, sel Selectors, rawURL string, complete bool, logger *utils.Logger) (*AdResult, error) {
	if !IsMarketplaceURL(rawURL) {
		return nil, nil
	}

	doc, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	data, ok := locate(doc.Selection, sel.AdPayload)
	if !ok {
		return nil, fmt.Errorf("olx: %s: %w", rawURL, ErrMissingPayload)
	}

	var root struct {
		Ad json.RawMessage `json:"ad"`
	}
	if err := json.Unmarshal([]byte(data), &root); err != nil {
		return nil, fmt.Errorf("olx: decode payload of %s: %w", rawURL, err)
	}
	if len(root.Ad) == 0 || string(root.Ad) == "null" {
		return nil, fmt.Errorf("olx: %s: %w", rawURL, ErrMissingPayload)
	}

	if complete {
		raw := map[string]any{}
		dec := json.NewDecoder(bytes.NewReader(root.Ad))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("olx: decode ad of %s: %w", rawURL, err)
		}
		return &AdResult{Raw: raw}, nil
	}

	var ad adPayload
	if err := json.Unmarshal(root.Ad, &ad); err != nil {
		return nil, fmt.Errorf("olx: decode ad of %s: %w", rawURL, err)
	}
	details, err := ad.details(logger)
	if err != nil {
		return nil, fmt.Errorf("olx: %s: %w", rawURL, err)
	}
	return &AdResult{Details: details}, nil
}

func (a *adPayload) details(logger *utils.Logger) (*models.AdDetails, error) {
	if a.Subject == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, FieldName)
	}
	if a.ListID == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, FieldID)
	}
	if len(a.Images) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, FieldImage)
	}

	price := models.PriceNotAvailable
	if strings.TrimSpace(a.PriceValue) != "" {
		p, err := services.NormalizePrice(a.PriceValue)
		if err != nil {
			logger.Warn("[olx] Ad %s: %v; recording price as %q", a.ListID, err, models.PriceNotAvailable)
		} else {
			price = p
		}
	}

	return &models.AdDetails{
		Name:        *a.Subject,
		ID:          a.ListID.String(),
		ImageURL:    a.Images[0].Original,
		Price:       price,
		Description: a.Description,
		DatetimeUTC: a.ListTime,
		AuthorName:  a.User.Name,
		Phone:       a.Phone.Phone,
		Type:        a.ParentCategoryName,
		Category:    a.CategoryName,
		Location:    compositeLocation(a.Location),
	}, nil
}

// compositeLocation renders the payload's location as one line, in the same
// "City, Neighborhood - DDD NN" shape the results page uses.
func compositeLocation(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var loc struct {
		Municipality  string `json:"municipality"`
		Neighbourhood string `json:"neighbourhood"`
		DDD           string `json:"ddd"`
	}
	if err := json.Unmarshal(raw, &loc); err != nil || (loc.Municipality == "" && loc.DDD == "") {
		return string(raw)
	}

	var b strings.Builder
	b.WriteString(loc.Municipality)
	if loc.Neighbourhood != "" {
		b.WriteString(", " + loc.Neighbourhood)
	}
	if loc.DDD != "" {
		b.WriteString(" - DDD " + loc.DDD)
	}
	return b.String()
}
