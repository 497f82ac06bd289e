package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apk-official/PrepLink-Backend/internal/crawling"
	"github.com/apk-official/PrepLink-Backend/internal/fetch"
)

var linksCmd = &cobra.Command{
	Use:   "links <url>",
	Short: "List the relevant internal links of a page",
	Long: "Fetches one page and prints the same-site links whose URL contains a keyword, " +
		"in document order. --set chooses the company (relevant) or legal keyword list.",
	Args: cobra.ExactArgs(1),
	RunE: runLinks,
}

var (
	linksSet      string
	linksKeywords []string
	linksLimit    int
)

func init() {
	linksCmd.Flags().StringVar(&linksSet, "set", "relevant", "Keyword set: relevant or legal")
	linksCmd.Flags().StringSliceVar(&linksKeywords, "keyword", nil, "Custom keywords (overrides --set)")
	linksCmd.Flags().IntVar(&linksLimit, "limit", crawling.DefaultLinkLimit, "Maximum links to print")
	rootCmd.AddCommand(linksCmd)
}

func runLinks(cmd *cobra.Command, args []string) error {
	keywords := linksKeywords
	if len(keywords) == 0 {
		switch linksSet {
		case "relevant":
			keywords = crawling.RelevantKeywords
		case "legal":
			keywords = crawling.LegalKeywords
		default:
			return fmt.Errorf("unknown keyword set %q: want relevant or legal", linksSet)
		}
	}

	pageURL := strings.TrimSpace(args[0])
	cfg := appConfig.Scrape
	result, err := fetch.URL(cmd.Context(), pageURL, &fetch.Options{
		Timeout:      cfg.RequestTimeout,
		UserAgent:    cfg.UserAgent,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})
	if err != nil {
		return &crawling.FetchFailureError{URL: pageURL, Cause: err}
	}

	links, err := crawling.FindInternalLinks(result.HTML, result.FinalURL, keywords, linksLimit)
	if err != nil {
		return err
	}
	for _, link := range links {
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), link); err != nil {
			return err
		}
	}
	return nil
}
