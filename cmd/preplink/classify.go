package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apk-official/PrepLink-Backend/internal/crawling"
	"github.com/apk-official/PrepLink-Backend/internal/fetch"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <url>",
	Short: "Report whether a site needs a headless browser",
	Args:  cobra.ExactArgs(1),
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	pageURL := strings.TrimSpace(args[0])
	if pageURL == "" {
		return &crawling.InvalidInputError{Message: "URL must not be empty"}
	}

	cfg := appConfig.Scrape
	strategy, reason := crawling.StrategyDynamic, ""
	result, err := fetch.URL(cmd.Context(), pageURL, &fetch.Options{
		Timeout:      cfg.RequestTimeout,
		UserAgent:    cfg.UserAgent,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})
	if err != nil {
		reason = "fetch failed: " + err.Error()
	} else {
		strategy, reason = crawling.ClassifyHTML(result.HTML, cfg.Classifier)
	}

	if p := summary(cmd); p != nil {
		p.PrintClassification(pageURL, string(strategy), reason)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", pageURL, strategy, reason)
	return err
}
