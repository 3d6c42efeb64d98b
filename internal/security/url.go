// Package security guards outbound fetches of user-supplied URLs.
package security

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrBlocked marks a URL rejected because it points at a local or private target.
var ErrBlocked = errors.New("ssrf blocked")

var privateCIDRs = mustCIDRs([]string{
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
	"100.64.0.0/10",
	"0.0.0.0/8",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
})

func mustCIDRs(cidrs []string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, block, err := net.ParseCIDR(cidr)
		if err == nil {
			out = append(out, block)
		}
	}
	return out
}

// Resolver looks up the addresses of a host.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// URLValidator normalizes and vets URLs before they are fetched.
type URLValidator struct {
	// AllowPrivate disables the local/private address checks. Scheme and host
	// checks still apply.
	AllowPrivate bool
	Resolver     Resolver
}

// NewURLValidator returns a validator using the system resolver.
func NewURLValidator(allowPrivate bool) *URLValidator {
	return &URLValidator{AllowPrivate: allowPrivate, Resolver: net.DefaultResolver}
}

// Validate returns the parsed URL, adding an https scheme when none is given.
func (v *URLValidator) Validate(ctx context.Context, rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("empty url")
	}
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme: %s", parsed.Scheme)
	}

	host := strings.ToLower(strings.TrimSpace(parsed.Hostname()))
	if host == "" {
		return nil, fmt.Errorf("url host is required")
	}
	if v.AllowPrivate {
		return parsed, nil
	}

	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local") || strings.HasSuffix(host, ".internal") {
		return nil, fmt.Errorf("%w: local hostname is not allowed", ErrBlocked)
	}

	if ip := net.ParseIP(host); ip != nil {
		if isPrivateOrLocalIP(ip) {
			return nil, fmt.Errorf("%w: private or local ip is not allowed", ErrBlocked)
		}
		return parsed, nil
	}

	resolver := v.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	addrs, err := resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve host: %w", err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("host resolution returned no addresses")
	}
	for _, addr := range addrs {
		if isPrivateOrLocalIP(addr.IP) {
			return nil, fmt.Errorf("%w: host resolves to private or local ip", ErrBlocked)
		}
	}
	return parsed, nil
}

func isPrivateOrLocalIP(ip net.IP) bool {
	for _, cidr := range privateCIDRs {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}
