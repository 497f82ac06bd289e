package fetch

import (
	"net/http"
	"strings"
)

// BlockType describes the kind of block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
)

// challengePageMaxBytes bounds the body size at which captcha markers count.
// Full pages routinely embed a reCAPTCHA widget on a contact form.
const challengePageMaxBytes = 16 << 10

// DetectBlock checks an HTTP response for signs of anti-bot protection.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	// Cloudflare: 403/503 with cf-* headers.
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusServiceUnavailable {
		if resp.Header.Get("cf-ray") != "" || resp.Header.Get("cf-mitigated") != "" {
			return true, BlockCloudflare
		}
		if strings.EqualFold(resp.Header.Get("server"), "cloudflare") {
			return true, BlockCloudflare
		}
	}
	if resp.Header.Get("cf-mitigated") == "challenge" {
		return true, BlockCloudflare
	}

	lower := strings.ToLower(string(body))

	// Cloudflare challenge page markers.
	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		strings.Contains(lower, "cf-challenge") {
		return true, BlockCloudflare
	}

	if len(body) < challengePageMaxBytes {
		if strings.Contains(lower, "captcha") && (strings.Contains(lower, "verify you are human") ||
			strings.Contains(lower, "are you a robot") ||
			strings.Contains(lower, "unusual traffic")) {
			return true, BlockCaptcha
		}
	}

	return false, BlockNone
}
