package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/apk-official/PrepLink-Backend/internal/crawling"
)

// getBinaryPath returns the path to the preplink binary for testing
func getBinaryPath(t *testing.T) string {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", "preplink")
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/preplink ./cmd/preplink'", binaryPath)
	}
	return binaryPath
}

// resetFlags restores every command flag variable between in-process runs.
func resetFlags() {
	configPath, verbose = "", false
	scrapeStrategy, scrapeFaviconDir, scrapeOutput = "auto", "", outputOptions{}
	tosOutput = outputOptions{}
	robotsUserAgent = ""
	linksSet, linksKeywords, linksLimit = "relevant", nil, crawling.DefaultLinkLimit
	batchConcurrency, batchOutput = 4, outputOptions{}
	prepareDeny, prepareAllowPrivate, prepareOutput = false, false, outputOptions{}
}

// execute runs the CLI in-process with a fast test config.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()

	cfgPath := filepath.Join(t.TempDir(), "preplink.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfigYAML), 0644))

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

const testConfigYAML = `scrape:
  politeness_delay: 0s
  request_timeout: 5s
log:
  level: error
`

const acmeHome = `<html>
<head><title>Acme | Home</title><link rel="icon" href="/favicon.ico"></head>
<body>
	<h1>Acme builds rockets</h1>
	<p>Acme is a family-owned manufacturer of rockets, anvils and other fine desert equipment since 1949.</p>
	<a href="/about">About</a>
	<a href="/careers">Careers</a>
	<a href="/terms">Terms of service</a>
</body>
</html>`

// acmeSite serves a small static company site.
func acmeSite(t *testing.T, extra map[string]string) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/":        acmeHome,
		"/about":   "<html><body><p>About Acme</p></body></html>",
		"/careers": "<html><body><p>Join Acme</p></body></html>",
		"/terms":   "<html><body><main>Do not misuse anvils.</main></body></html>",
	}
	for k, v := range extra {
		pages[k] = v
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/favicon.ico":
			w.Header().Set("Content-Type", "image/x-icon")
			_, _ = w.Write(bytes.Repeat([]byte{0x01}, 128))
		case pages[r.URL.Path] != "":
			if r.URL.Path == "/robots.txt" {
				w.Header().Set("Content-Type", "text/plain")
			} else {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
			}
			_, _ = io.WriteString(w, pages[r.URL.Path])
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}
