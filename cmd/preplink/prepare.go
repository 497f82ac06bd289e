package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/apk-official/PrepLink-Backend/internal/pipeline"
	"github.com/apk-official/PrepLink-Backend/internal/schemas"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare <url>",
	Short: "Collect legal pages, then crawl the site if permitted",
	Long: "Validates the base URL, collects the site's terms and privacy pages and, unless --deny is set, " +
		"crawls the site. The result holds the legal bundle, the decision and the scrape bundle.",
	Args: cobra.ExactArgs(1),
	RunE: runPrepare,
}

var (
	prepareDeny         bool
	prepareAllowPrivate bool
	prepareOutput       outputOptions
)

func init() {
	prepareCmd.Flags().BoolVar(&prepareDeny, "deny", false, "Refuse the crawl whenever legal pages exist (dry run of the gate)")
	prepareCmd.Flags().BoolVar(&prepareAllowPrivate, "allow-private", false, "Accept loopback and private-network URLs")
	addOutputFlags(prepareCmd, &prepareOutput)
	rootCmd.AddCommand(prepareCmd)
}

func runPrepare(cmd *cobra.Command, args []string) error {
	p := summary(cmd)
	result, err := pipeline.Run(cmd.Context(), newCrawler(), pipeline.StaticDecider(!prepareDeny), args[0], pipeline.RunOptions{
		AllowPrivate: prepareAllowPrivate,
		Logger:       logger,
		OnProgress: func(e pipeline.ProgressEvent) {
			logger.Debug(e.Message, zap.String("step", e.Step), zap.String("base_url", e.BaseURL))
		},
	})
	if err != nil {
		return err
	}

	if prepareOutput.validate {
		if err := validateOutput(schemas.TosBundleSchema, result.Tos); err != nil {
			return err
		}
		if result.Scrape != nil {
			if err := validateOutput(schemas.ScrapeBundleSchema, result.Scrape); err != nil {
				return err
			}
		}
	}

	if p != nil {
		p.PrintTosBundle(result.Tos)
		p.PrintDecision(result.BaseURL, result.Permitted)
		p.PrintScrapeBundle(result.Scrape)
	}
	return emit(cmd, prepareOutput, result, bundleFileName(result.BaseURL, "prepare"), "")
}
