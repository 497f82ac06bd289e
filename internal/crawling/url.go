package crawling

import (
	"net"
	"net/netip"
	"net/url"
	"strings"
)

var reservedIPv4 = netip.MustParsePrefix("240.0.0.0/4")

// ValidateBaseURL checks that rawURL is a bare site root: http or https,
// a hostname, and no path, query or fragment. Private, loopback and
// reserved IP hosts are rejected unless allowPrivate is set. It returns the
// normalized scheme://host[:port] form.
func ValidateBaseURL(rawURL string, allowPrivate bool) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", &InvalidInputError{Message: "URL must not be empty"}
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", &InvalidInputError{Message: "malformed URL", Cause: err}
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", &InvalidInputError{Message: "invalid URL scheme " + `"` + u.Scheme + `"`}
	}
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" || u.ForceQuery {
		return "", &InvalidInputError{Message: "only base URLs are allowed (no path, query, or fragment)"}
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", &InvalidInputError{Message: "invalid hostname"}
	}

	if !allowPrivate {
		if host == "localhost" || strings.HasSuffix(host, ".localhost") {
			return "", &InvalidInputError{Message: "private or internal hosts are not allowed"}
		}
		if addr, err := netip.ParseAddr(host); err == nil && isInternalAddr(addr) {
			return "", &InvalidInputError{Message: "private or internal IPs are not allowed"}
		}
	}

	hostPort := host
	if port := u.Port(); port != "" {
		hostPort = net.JoinHostPort(host, port)
	} else if strings.Contains(host, ":") {
		hostPort = "[" + host + "]"
	}
	return scheme + "://" + hostPort, nil
}

func isInternalAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsPrivate() ||
		addr.IsLoopback() ||
		addr.IsUnspecified() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		(addr.Is4() && reservedIPv4.Contains(addr))
}
