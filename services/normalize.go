package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	ErrUnknownAreaCode   = errors.New("unknown area code")
	ErrUnknownMonth      = errors.New("unknown month abbreviation")
	ErrMalformedDate     = errors.New("malformed date")
	ErrMalformedPrice    = errors.New("malformed price")
	ErrMalformedLocation = errors.New("malformed location")
)

// Relative day words rendered by the site in place of a date.
const (
	TodayMarker     = "Hoje"
	YesterdayMarker = "Ontem"
)

// areaCodeStates maps a two-digit telephone area code (DDD) to the state it
// belongs to. 61 covers both the Federal District and part of Goiás.
var areaCodeStates = map[string]string{
	"11": "São Paulo", "12": "São Paulo", "13": "São Paulo", "14": "São Paulo",
	"15": "São Paulo", "16": "São Paulo", "17": "São Paulo", "18": "São Paulo",
	"19": "São Paulo",
	"21": "Rio de Janeiro", "22": "Rio de Janeiro", "24": "Rio de Janeiro",
	"27": "Espírito Santo", "28": "Espírito Santo",
	"31": "Minas Gerais", "32": "Minas Gerais", "33": "Minas Gerais", "34": "Minas Gerais",
	"35": "Minas Gerais", "37": "Minas Gerais", "38": "Minas Gerais",
	"41": "Paraná", "42": "Paraná", "43": "Paraná", "44": "Paraná", "45": "Paraná", "46": "Paraná",
	"47": "Santa Catarina", "48": "Santa Catarina", "49": "Santa Catarina",
	"51": "Rio Grande do Sul", "53": "Rio Grande do Sul", "54": "Rio Grande do Sul", "55": "Rio Grande do Sul",
	"61": "Distrito Federal/Goiás",
	"62": "Goiás", "64": "Goiás",
	"63": "Tocantins",
	"65": "Mato Grosso", "66": "Mato Grosso",
	"67": "Mato Grosso do Sul",
	"68": "Acre",
	"69": "Rondônia",
	"71": "Bahia", "73": "Bahia", "74": "Bahia", "75": "Bahia", "77": "Bahia",
	"79": "Sergipe",
	"81": "Pernambuco", "87": "Pernambuco",
	"82": "Alagoas",
	"83": "Paraíba",
	"84": "Rio Grande do Norte",
	"85": "Ceará", "88": "Ceará",
	"86": "Piauí", "89": "Piauí",
	"91": "Pará", "93": "Pará", "94": "Pará",
	"92": "Amazonas", "97": "Amazonas",
	"95": "Roraima",
	"96": "Amapá",
	"98": "Maranhão", "99": "Maranhão",
}

// monthNumbers maps Portuguese three-letter month abbreviations to a
// two-digit month followed by a space.
var monthNumbers = map[string]string{
	"jan": "01 ", "fev": "02 ", "mar": "03 ", "abr": "04 ",
	"mai": "05 ", "jun": "06 ", "jul": "07 ", "ago": "08 ",
	"set": "09 ", "out": "10 ", "nov": "11 ", "dez": "12 ",
}

var (
	// currencyPriceRegexp captures the amount after "R$", with optional
	// thousands dots and a comma-decimal part.
	currencyPriceRegexp = regexp.MustCompile(`R\$\s*(\d{1,3}(?:\.\d{3})+|\d+)(,\d+)?`)
	// barePriceRegexp accepts an amount that was already normalized.
	barePriceRegexp = regexp.MustCompile(`^(\d{1,3}(?:\.\d{3})+|\d+)(,\d+)?$`)

	// dayMonthRegexp matches "<day> <abbrev>" with an optional trailing part.
	dayMonthRegexp = regexp.MustCompile(`^(\d{1,2}) ([A-Za-z]{3})(.*)$`)

	cityRegexp         = regexp.MustCompile(`^([^,]*),`)
	neighborhoodRegexp = regexp.MustCompile(`,(.*) - `)
	areaCodeRegexp     = regexp.MustCompile(`DDD (\d+)`)
)

// StateForAreaCode resolves a DDD code to its state name.
func StateForAreaCode(code string) (string, error) {
	state, ok := areaCodeStates[code]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAreaCode, code)
	}
	return state, nil
}

// MonthNumber resolves a month abbreviation to its "MM " form.
func MonthNumber(abbrev string) (string, error) {
	month, ok := monthNumbers[strings.ToLower(abbrev)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMonth, abbrev)
	}
	return month, nil
}

// NormalizePrice turns "R$ 1.500" into "1500". Comma decimals are kept
// ("R$ 9,90" -> "9,90"). Input without the currency prefix must already be a
// bare amount, so the function is idempotent on its own output.
func NormalizePrice(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	m := currencyPriceRegexp.FindStringSubmatch(raw)
	if m == nil {
		m = barePriceRegexp.FindStringSubmatch(raw)
	}
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedPrice, raw)
	}
	return strings.ReplaceAll(m[1], ".", "") + m[2], nil
}

// NormalizeDate converts the site's date text into "dd/mm " form.
//
// Grammar, checked in order:
//
//	"Hoje..."          -> today's date replaces the marker
//	"Ontem..."         -> yesterday's date replaces the marker
//	"<d> <mon><rest>"  -> "<d>/<MM> <rest>"
func NormalizeDate(raw string, now time.Time) (string, error) {
	switch {
	case strings.Contains(raw, TodayMarker):
		return strings.Replace(raw, TodayMarker, now.Format("02/01 "), 1), nil
	case strings.Contains(raw, YesterdayMarker):
		return strings.Replace(raw, YesterdayMarker, now.AddDate(0, 0, -1).Format("02/01 "), 1), nil
	}

	m := dayMonthRegexp.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedDate, raw)
	}
	month, err := MonthNumber(m[2])
	if err != nil {
		return "", err
	}
	return m[1] + "/" + month + m[3], nil
}

// Location is the decomposed form of "City, Neighborhood - DDD NN".
type Location struct {
	City         string
	Neighborhood string
	State        string
}

// SplitLocation decomposes a location line. City and neighborhood are left
// empty when their part is absent; the area code is mandatory.
func SplitLocation(raw string) (Location, error) {
	var loc Location

	if m := cityRegexp.FindStringSubmatch(raw); m != nil {
		loc.City = m[1]
	}
	if m := neighborhoodRegexp.FindStringSubmatch(raw); m != nil {
		loc.Neighborhood = strings.TrimSpace(m[1])
	}

	m := areaCodeRegexp.FindStringSubmatch(raw)
	if m == nil {
		return Location{}, fmt.Errorf("%w: no area code in %q: %w", ErrMalformedLocation, raw, ErrUnknownAreaCode)
	}
	state, err := StateForAreaCode(m[1])
	if err != nil {
		return Location{}, err
	}
	loc.State = state
	return loc, nil
}
