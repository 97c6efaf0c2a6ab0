package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"olx-scraper/models"
	"olx-scraper/scraper/olx"
	"olx-scraper/services"
	"olx-scraper/storage"
)

var searchFlags struct {
	state    string
	filter   string
	allPages bool
	limit    int
	csvPath  string
	postgres bool
	insights bool
	asJSON   bool
}

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&searchFlags.state, "state", "s", "sp", "State subdomain to search, e.g. sp, rj, ce.")
	f.StringVarP(&searchFlags.filter, "filter", "f", "relevance", "Result ordering: relevance, price or new.")
	f.BoolVar(&searchFlags.allPages, "all-pages", false, "Visit every available result page.")
	f.IntVar(&searchFlags.limit, "limit", 0, "Visit the first N result pages (only page 1 when N exceeds the available pages).")
	f.StringVar(&searchFlags.csvPath, "csv", "", "Also write listings to this CSV file (defaults to CSV_OUTPUT_PATH).")
	f.BoolVar(&searchFlags.postgres, "postgres", false, "Also store listings in PostgreSQL (defaults to POSTGRES_ENABLED).")
	f.BoolVar(&searchFlags.insights, "insights", false, "Print summary statistics after the listings.")
	f.BoolVar(&searchFlags.asJSON, "json", false, "Print listings as JSON instead of a table.")
	searchCmd.MarkFlagsMutuallyExclusive("all-pages", "limit")

	rootCmd.AddCommand(searchCmd)
}

func paginationPolicy() olx.PaginationPolicy {
	switch {
	case searchFlags.allPages:
		return olx.AllPages()
	case searchFlags.limit > 0:
		return olx.FixedLimit(searchFlags.limit)
	}
	return olx.SinglePage()
}

var searchCmd = &cobra.Command{
	Use:   "search <term> [--state sp] [--filter relevance|price|new] [--all-pages | --limit N]",
	Short: "Searches OLX and prints the normalized listings.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := olx.ParseFilterMode(searchFlags.filter)
		if err != nil {
			return err
		}

		fetcher, closeFetcher, err := newFetcher()
		if err != nil {
			return err
		}
		defer closeFetcher()

		query := olx.SearchQuery{Term: args[0], State: searchFlags.state}
		scraper := olx.New(query, fetcher, logger, olx.OptionsFromConfig(cfg, logger))

		listings, err := scraper.Extract(cmd.Context(), filter, paginationPolicy())
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		logger.Info("Extracted %d listings", len(listings))

		if err := printListings(listings); err != nil {
			return err
		}
		if err := exportListings(listings); err != nil {
			return err
		}

		if searchFlags.insights {
			svc := services.NewInsightService(logger)
			svc.Print(svc.Generate(listings))
		}
		return nil
	},
}

func printListings(listings []*models.Listing) error {
	if searchFlags.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(listings)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Name", "Price", "Date", "City", "Neighborhood", "State"})
	for _, l := range listings {
		t.AppendRow(table.Row{l.ID, l.Name, l.Price, l.Date, l.City, l.Neighborhood, l.State})
	}
	t.AppendFooter(table.Row{"", "Total", len(listings)})
	t.Render()
	return nil
}

// storedCounter is implemented by sinks that can report what they hold.
type storedCounter interface {
	FetchAll() ([]*models.Listing, error)
}

func exportListings(listings []*models.Listing) error {
	var sinks []storage.ListingWriter

	csvPath := searchFlags.csvPath
	if csvPath == "" {
		csvPath = cfg.CSVOutputPath
	}
	if csvPath != "" {
		w, err := storage.NewCSVWriter(csvPath)
		if err != nil {
			return err
		}
		sinks = append(sinks, w)
	}

	if searchFlags.postgres || cfg.PostgresEnabled {
		pw, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			closeSinks(sinks)
			return err
		}
		sinks = append(sinks, pw)
	}
	defer closeSinks(sinks)

	for _, w := range sinks {
		if err := w.Write(listings); err != nil {
			return err
		}
		if c, ok := w.(storedCounter); ok {
			stored, err := c.FetchAll()
			if err != nil {
				return err
			}
			logger.Info("[storage] %d listings stored in PostgreSQL (table: olx_listings)", len(stored))
		}
	}
	if csvPath != "" {
		logger.Info("[storage] Listings saved to %s", csvPath)
	}
	return nil
}

func closeSinks(sinks []storage.ListingWriter) {
	for _, w := range sinks {
		if err := w.Close(); err != nil {
			logger.Warn("[storage] close: %v", err)
		}
	}
}
