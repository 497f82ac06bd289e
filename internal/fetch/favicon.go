package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MinFaviconBytes is the smallest body accepted as a real icon.
const MinFaviconBytes = 50

const maxFaviconBytes = 1 << 20

// DownloadFavicon fetches faviconURL and writes it to dir as
// <prefix>_<hash><ext>, returning the written path. Anything other than a
// 200 response with at least MinFaviconBytes of content is an *Error.
func DownloadFavicon(ctx context.Context, faviconURL, dir, prefix string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, faviconURL, nil)
	if err != nil {
		return "", &Error{URL: faviconURL, Message: "failed to create request", Cause: err}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := opts.client().Do(req)
	if err != nil {
		return "", &Error{URL: faviconURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			URL:        faviconURL,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFaviconBytes))
	if err != nil {
		return "", &Error{URL: faviconURL, Message: "failed to read response body", Cause: err}
	}
	if len(data) < MinFaviconBytes {
		return "", &Error{URL: faviconURL, Message: fmt.Sprintf("favicon too small (%d bytes)", len(data))}
	}

	sum := sha256.Sum256(data)
	name := fmt.Sprintf("%s_%s%s", prefix, hex.EncodeToString(sum[:])[:12], faviconExt(resp.Header.Get("Content-Type")))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create favicon directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write favicon: %w", err)
	}
	return path, nil
}

func faviconExt(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "png"):
		return ".png"
	case strings.Contains(ct, "svg"):
		return ".svg"
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"):
		return ".jpg"
	default:
		return ".ico"
	}
}
