package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"olx-scraper/config"
	"olx-scraper/scraper/olx"
	"olx-scraper/utils"
)

var (
	cfg    *config.Config
	logger *utils.Logger
)

var rootCmd = &cobra.Command{
	Use:   "olx-scraper",
	Short: "olx-scraper extracts classified ads from OLX Brazil.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger = utils.NewLoggerWithOptions(utils.LoggerOptions{
			Writer: os.Stderr,
			Level:  utils.ParseLevel(cfg.LogLevel),
			JSON:   cfg.LogJSON,
		})
	},
	SilenceUsage: true,
}

// newFetcher builds the page fetcher selected by FETCHER. The returned func
// releases its resources.
func newFetcher() (olx.Fetcher, func(), error) {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = olx.RandomUserAgent()
	}
	timeout := time.Duration(cfg.RequestTimeoutSec) * time.Second
	logger.Debug("Using user agent: %s", userAgent)

	switch cfg.Fetcher {
	case "http":
		f := olx.NewHTTPFetcher(olx.HTTPFetcherOptions{
			UserAgent:        userAgent,
			Timeout:          timeout,
			CloudflareBypass: cfg.CloudflareBypass,
		})
		return f, func() {}, nil
	case "browser":
		f, err := olx.NewBrowserFetcher(olx.BrowserOptions{
			ChromeBin: cfg.ChromeBin,
			UserAgent: userAgent,
			Timeout:   timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return f, f.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown FETCHER %q (want http or browser)", cfg.Fetcher)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
