package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/apk-official/PrepLink-Backend/internal/observability"
	"github.com/apk-official/PrepLink-Backend/internal/schemas"
)

// outputOptions are the flags shared by commands that emit bundles.
type outputOptions struct {
	outDir   string
	validate bool
}

func addOutputFlags(cmd *cobra.Command, o *outputOptions) {
	cmd.Flags().StringVarP(&o.outDir, "out", "o", "", "Output directory (default: print JSON to stdout)")
	cmd.Flags().BoolVar(&o.validate, "validate", false, "Validate output against its JSON Schema before writing")
}

// emit validates v against schema when requested and a schema is given, then writes it as
// indented JSON to stdout or to <out>/<name>.
func emit(cmd *cobra.Command, o outputOptions, v any, name, schema string) error {
	if o.validate && schema != "" {
		if err := validateOutput(schema, v); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s to JSON: %w", name, err)
	}

	if o.outDir == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	if err := os.MkdirAll(o.outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", o.outDir, err)
	}
	path := filepath.Join(o.outDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

func validateOutput(schema string, v any) error {
	schemaPath := schemas.ResolveSchemaPath(schema)
	if schemaPath == "" {
		return fmt.Errorf("schema %s not found; run from the repository root or disable --validate", schema)
	}
	if err := schemas.ValidateValue(schemaPath, v); err != nil {
		return fmt.Errorf("output failed schema validation: %w", err)
	}
	return nil
}

// bundleFileName names an output file after the site host, e.g.
// "example.com.scrape.json".
func bundleFileName(baseURL, kind string) string {
	host := "site"
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = strings.NewReplacer(":", "_", "[", "", "]", "").Replace(strings.ToLower(u.Host))
	}
	return host + "." + kind + ".json"
}

// summary returns a printer for --verbose summaries, or nil.
func summary(cmd *cobra.Command) *observability.Printer {
	if !verbose {
		return nil
	}
	return observability.NewPrinter(cmd.ErrOrStderr())
}
