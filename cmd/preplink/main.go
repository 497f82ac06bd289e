// Package main implements the preplink CLI for discovering and extracting
// company website content.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/apk-official/PrepLink-Backend/internal/config"
	"github.com/apk-official/PrepLink-Backend/internal/crawling"
)

var rootCmd = &cobra.Command{
	Use:   "preplink",
	Short: "Company website content discovery and extraction",
	Long: "preplink crawls a company website within strict page and character budgets, " +
		"honoring robots.txt, and emits the extracted text as JSON bundles.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	configPath string
	verbose    bool

	appConfig *config.Config
	logger    *zap.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./preplink.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging and human-readable summaries on stderr")
}

// setup loads configuration and installs the global logger before any subcommand runs.
func setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Log.Level = "debug"
		cfg.Log.Format = "console"
	}
	l, err := config.InitLogger(cfg.Log)
	if err != nil {
		return err
	}
	appConfig, logger = cfg, l
	return nil
}

func newCrawler() *crawling.Crawler {
	return crawling.New(appConfig.Scrape, crawling.WithLogger(logger))
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Ctrl-C cancels the running crawl; the browser is still shut down.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps crawl errors to distinct process exit codes.
func exitCode(err error) int {
	switch crawling.HTTPStatus(err) {
	case http.StatusBadRequest:
		return 2
	case http.StatusForbidden:
		return 3
	case http.StatusBadGateway:
		return 4
	default:
		return 1
	}
}
