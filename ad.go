package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"olx-scraper/scraper/olx"
)

var adComplete bool

func init() {
	adCmd.Flags().BoolVar(&adComplete, "complete", false, "Print the full ad payload instead of the normalized fields.")
	rootCmd.AddCommand(adCmd)
}

var adCmd = &cobra.Command{
	Use:   "ad <url> [--complete]",
	Short: "Fetches a single OLX ad and prints it as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fetcher, closeFetcher, err := newFetcher()
		if err != nil {
			return err
		}
		defer closeFetcher()

		res, err := olx.FetchOne(cmd.Context(), fetcher, args[0], adComplete, logger)
		if err != nil {
			return err
		}
		if res == nil {
			logger.Warn("%s is not an OLX URL, nothing fetched", args[0])
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if adComplete {
			return enc.Encode(res.Raw)
		}
		return enc.Encode(res.Details)
	},
}
