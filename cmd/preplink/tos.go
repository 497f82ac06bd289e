package main

import (
	"github.com/spf13/cobra"

	"github.com/apk-official/PrepLink-Backend/internal/schemas"
)

var tosCmd = &cobra.Command{
	Use:   "tos <url>",
	Short: "Collect a site's terms, privacy and cookie pages",
	Args:  cobra.ExactArgs(1),
	RunE:  runTos,
}

var tosOutput outputOptions

func init() {
	addOutputFlags(tosCmd, &tosOutput)
	rootCmd.AddCommand(tosCmd)
}

func runTos(cmd *cobra.Command, args []string) error {
	bundle, err := newCrawler().GetTosData(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if p := summary(cmd); p != nil {
		p.PrintTosBundle(bundle)
	}
	return emit(cmd, tosOutput, bundle, bundleFileName(bundle.BaseURL, "tos"), schemas.TosBundleSchema)
}
