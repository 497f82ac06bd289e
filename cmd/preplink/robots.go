package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apk-official/PrepLink-Backend/internal/robots"
)

var robotsCmd = &cobra.Command{
	Use:   "robots <url>...",
	Short: "Check URLs against their sites' robots.txt",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRobots,
}

var robotsUserAgent string

func init() {
	robotsCmd.Flags().StringVar(&robotsUserAgent, "user-agent", "", "User agent to check (default: the configured crawler user agent)")
	rootCmd.AddCommand(robotsCmd)
}

func runRobots(cmd *cobra.Command, args []string) error {
	gate := robots.New(appConfig.Scrape.UserAgent,
		robots.WithTimeout(appConfig.Scrape.RequestTimeout),
		robots.WithLogger(logger),
	)
	ua := robotsUserAgent
	if ua == "" {
		ua = gate.UserAgent()
	}

	for _, arg := range args {
		target := strings.TrimSpace(arg)
		verdict := "disallowed"
		if gate.IsAllowedFor(cmd.Context(), target, ua) {
			verdict = "allowed"
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", target, verdict); err != nil {
			return err
		}
	}
	return nil
}
