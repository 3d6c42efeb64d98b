package security

import (
	"context"
	"errors"
	"net"
	"testing"
)

type staticResolver map[string][]string

func (r staticResolver) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	ips, ok := r[host]
	if !ok {
		return nil, errors.New("no such host")
	}
	out := make([]net.IPAddr, 0, len(ips))
	for _, s := range ips {
		out = append(out, net.IPAddr{IP: net.ParseIP(s)})
	}
	return out, nil
}

func TestValidateBlocksLocalTargets(t *testing.T) {
	tests := []string{
		"http://127.0.0.1",
		"http://localhost:8080",
		"http://10.0.0.5",
		"http://192.168.1.10",
		"http://[::1]",
		"file:///etc/passwd",
		"",
	}

	v := NewURLValidator(false)
	for _, rawURL := range tests {
		if _, err := v.Validate(context.Background(), rawURL); err == nil {
			t.Fatalf("expected SSRF validation to block %q", rawURL)
		}
	}
}

func TestValidateAllowsPublicIPLiteral(t *testing.T) {
	if _, err := NewURLValidator(false).Validate(context.Background(), "https://93.184.216.34"); err != nil {
		t.Fatalf("expected public IP literal to pass, got %v", err)
	}
}

func TestValidatorChecksResolvedAddresses(t *testing.T) {
	v := &URLValidator{Resolver: staticResolver{
		"example.com": {"93.184.216.34"},
		"sneaky.test": {"93.184.216.34", "10.1.2.3"},
	}}

	u, err := v.Validate(context.Background(), "example.com/page")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if u.String() != "https://example.com/page" {
		t.Fatalf("got %q, want https scheme added", u.String())
	}

	if _, err := v.Validate(context.Background(), "http://sneaky.test"); !errors.Is(err, ErrBlocked) {
		t.Fatalf("expected ErrBlocked, got %v", err)
	}
	if _, err := v.Validate(context.Background(), "http://unknown.test"); err == nil || errors.Is(err, ErrBlocked) {
		t.Fatalf("expected resolution error, got %v", err)
	}
}

func TestAllowPrivateStillChecksScheme(t *testing.T) {
	v := NewURLValidator(true)
	if _, err := v.Validate(context.Background(), "http://127.0.0.1:8080/x"); err != nil {
		t.Fatalf("expected loopback to pass with AllowPrivate, got %v", err)
	}
	if _, err := v.Validate(context.Background(), "ftp://127.0.0.1"); err == nil {
		t.Fatal("expected ftp scheme to be rejected")
	}
}
