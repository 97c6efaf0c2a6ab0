package services

import (
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"olx-scraper/models"
	"olx-scraper/utils"
)

type InsightService struct {
	logger *utils.Logger
	out    io.Writer
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger, out: os.Stdout}
}

// SetOutput redirects Print.
func (s *InsightService) SetOutput(w io.Writer) {
	s.out = w
}

func (s *InsightService) Generate(listings []*models.Listing) *models.InsightReport {
	report := &models.InsightReport{
		ByState: make(map[string]int),
		ByCity:  make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var total float64
	for _, l := range listings {
		if l.State != "" {
			report.ByState[l.State]++
		}
		if l.City != "" {
			report.ByCity[l.City]++
		}

		price, ok := PriceValue(l.Price)
		if !ok {
			continue
		}
		report.PricedListings++
		total += price

		if report.Cheapest == nil || price < report.MinPrice {
			report.MinPrice = price
			report.Cheapest = l
		}
		if report.MostExpensive == nil || price > report.MaxPrice {
			report.MaxPrice = price
			report.MostExpensive = l
		}
	}

	if report.PricedListings > 0 {
		report.AveragePrice = round2(total / float64(report.PricedListings))
	}

	s.logger.Debug("[insights] %d listings, %d with price", report.TotalListings, report.PricedListings)
	return report
}

// PriceValue parses a normalized price ("1500", "9,90"). The "-" sentinel
// and anything unparsable report false.
func PriceValue(price string) (float64, bool) {
	if price == "" || price == models.PriceNotAvailable {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(price, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (s *InsightService) Print(r *models.InsightReport) {
	overview := table.NewWriter()
	overview.SetOutputMirror(s.out)
	overview.SetStyle(table.StyleRounded)
	overview.SetTitle("OLX SCRAPE INSIGHTS")
	overview.AppendRows([]table.Row{
		{"Total listings", r.TotalListings},
		{"Listings with price", r.PricedListings},
	})
	if r.PricedListings > 0 {
		overview.AppendSeparator()
		overview.AppendRows([]table.Row{
			{"Average price", formatBRL(r.AveragePrice)},
			{"Minimum price", formatBRL(r.MinPrice)},
			{"Maximum price", formatBRL(r.MaxPrice)},
		})
	}
	if r.Cheapest != nil {
		overview.AppendSeparator()
		overview.AppendRow(table.Row{"Cheapest", truncate(r.Cheapest.Name, 50)})
		overview.AppendRow(table.Row{"Most expensive", truncate(r.MostExpensive.Name, 50)})
	}
	overview.Render()

	s.printCounts("Listings by State", r.ByState)
	s.printCounts("Listings by City", r.ByCity)
}

func (s *InsightService) printCounts(title string, counts map[string]int) {
	t := table.NewWriter()
	t.SetOutputMirror(s.out)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Name", "Count", ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})

	for _, e := range sortedCounts(counts) {
		t.AppendRow(table.Row{truncate(e.name, 30), e.count, strings.Repeat("█", e.count)})
	}
	if len(counts) == 0 {
		t.AppendRow(table.Row{"No data", "", ""})
	}
	t.Render()
}

type nameCount struct {
	name  string
	count int
}

// sortedCounts orders by count descending, then by name.
func sortedCounts(counts map[string]int) []nameCount {
	out := make([]nameCount, 0, len(counts))
	for name, cnt := range counts {
		out = append(out, nameCount{name, cnt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func formatBRL(v float64) string {
	return "R$ " + strconv.FormatFloat(v, 'f', 2, 64)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
