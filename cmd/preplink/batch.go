package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/apk-official/PrepLink-Backend/internal/crawling"
	"github.com/apk-official/PrepLink-Backend/internal/schemas"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Scrape many sites concurrently",
	Long: "Reads one base URL per line (blank lines and # comments are ignored; \"-\" reads stdin), " +
		"crawls up to --concurrency sites at a time and writes one scrape bundle per site plus batch_report.json.",
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

var (
	batchConcurrency int
	batchOutput      outputOptions
)

func init() {
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 4, "Sites crawled at the same time")
	addOutputFlags(batchCmd, &batchOutput)
	if err := batchCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}
	rootCmd.AddCommand(batchCmd)
}

// batchEntry is one line of batch_report.json.
type batchEntry struct {
	URL        string `json:"url"`
	OK         bool   `json:"ok"`
	Status     int    `json:"status"`
	Pages      int    `json:"pages,omitempty"`
	TotalChars int    `json:"total_chars,omitempty"`
	File       string `json:"file,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	urls, err := readURLList(cmd, args[0])
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs in %s", args[0])
	}
	if batchConcurrency < 1 {
		batchConcurrency = 1
	}

	crawler := newCrawler()
	report := make([]batchEntry, len(urls))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(batchConcurrency)
	for i, u := range urls {
		g.Go(func() error {
			start := time.Now()
			entry := batchEntry{URL: u}

			bundle, err := crawler.GetScrapedData(ctx, u)
			if err == nil {
				entry.File = bundleFileName(bundle.BaseURL, "scrape")
				err = emit(cmd, batchOutput, bundle, entry.File, schemas.ScrapeBundleSchema)
			}
			entry.Status = crawling.HTTPStatus(err)
			if err != nil {
				entry.Error = err.Error()
				entry.File = ""
				logger.Warn("batch site failed", zap.String("url", u), zap.Error(err))
			} else {
				entry.OK = true
				entry.Pages = len(bundle.Pages)
				entry.TotalChars = bundle.TotalChars()
			}
			entry.DurationMS = time.Since(start).Milliseconds()

			mu.Lock()
			report[i] = entry
			mu.Unlock()
			// One failed site never cancels the others.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failed := 0
	for _, e := range report {
		if !e.OK {
			failed++
		}
	}
	logger.Info("batch finished", zap.Int("sites", len(urls)), zap.Int("failed", failed))

	reportOutput := outputOptions{outDir: batchOutput.outDir}
	if err := emit(cmd, reportOutput, report, "batch_report.json", ""); err != nil {
		return err
	}
	if failed == len(urls) {
		return fmt.Errorf("all %d sites failed", failed)
	}
	return nil
}

// readURLList reads base URLs, one per line, from path or stdin ("-").
func readURLList(cmd *cobra.Command, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open URL list: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var urls []string
	seen := make(map[string]bool)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return urls, nil
}
