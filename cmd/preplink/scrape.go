package main

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/apk-official/PrepLink-Backend/internal/crawling"
	"github.com/apk-official/PrepLink-Backend/internal/fetch"
	"github.com/apk-official/PrepLink-Backend/internal/schemas"
	"github.com/apk-official/PrepLink-Backend/internal/types"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Crawl a company website and emit its scrape bundle",
	Long: "Crawls the homepage and up to max_pages-1 relevant internal pages (about, careers, team, ...) " +
		"of a site, with static or headless-browser rendering chosen automatically unless --strategy is set.",
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

var (
	scrapeStrategy   string
	scrapeFaviconDir string
	scrapeOutput     outputOptions
)

func init() {
	scrapeCmd.Flags().StringVar(&scrapeStrategy, "strategy", "auto", "Rendering strategy: auto, static or dynamic")
	scrapeCmd.Flags().StringVar(&scrapeFaviconDir, "favicon-dir", "", "Download the site favicon into this directory")
	addOutputFlags(scrapeCmd, &scrapeOutput)

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	crawler := newCrawler()
	ctx := cmd.Context()

	var (
		bundle *types.ScrapeBundle
		err    error
	)
	switch scrapeStrategy {
	case "auto":
		bundle, err = crawler.GetScrapedData(ctx, args[0])
	case string(crawling.StrategyStatic):
		bundle, err = crawler.ScrapeStatic(ctx, args[0])
	case string(crawling.StrategyDynamic):
		bundle, err = crawler.ScrapeDynamic(ctx, args[0])
	default:
		return fmt.Errorf("unknown strategy %q: want auto, static or dynamic", scrapeStrategy)
	}
	if err != nil {
		return err
	}

	if scrapeFaviconDir != "" && bundle.FaviconURL != "" {
		path, err := fetch.DownloadFavicon(ctx, bundle.FaviconURL, scrapeFaviconDir, faviconPrefix(bundle), &fetch.Options{
			Timeout:   appConfig.Scrape.RequestTimeout,
			UserAgent: appConfig.Scrape.UserAgent,
		})
		if err != nil {
			logger.Warn("favicon download failed", zap.String("url", bundle.FaviconURL), zap.Error(err))
		} else {
			logger.Info("favicon saved", zap.String("path", path))
		}
	}

	if p := summary(cmd); p != nil {
		p.PrintScrapeBundle(bundle)
	}
	return emit(cmd, scrapeOutput, bundle, bundleFileName(bundle.BaseURL, "scrape"), schemas.ScrapeBundleSchema)
}

// faviconPrefix turns the company name guess into a file-name-safe slug.
func faviconPrefix(bundle *types.ScrapeBundle) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return unicode.ToLower(r)
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, bundle.CompanyNameGuess)
	if slug = strings.Trim(slug, "-"); slug == "" {
		return "favicon"
	}
	return slug
}
