package assistant

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// AddressAnalyzer produces a markdown report for a cryptocurrency address.
type AddressAnalyzer interface {
	Analyze(ctx context.Context, address string) (string, error)
}

// FamilyAnalyzer identifies which chain family an address belongs to. It
// makes no network calls.
type FamilyAnalyzer struct{}

var addressFamilies = []struct {
	pattern *regexp.Regexp
	name    string
	chains  string
}{
	{regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`), "EVM", "Ethereum and EVM-compatible chains (Base, Arbitrum, Optimism, Polygon, BNB Chain)"},
	{regexp.MustCompile(`^bc1[a-zA-Z0-9]{25,39}$`), "Bitcoin (bech32)", "Bitcoin mainnet, SegWit/Taproot"},
	{regexp.MustCompile(`^[13][a-km-zA-HJ-NP-Z1-9]{25,34}$`), "Bitcoin (base58)", "Bitcoin mainnet, legacy P2PKH/P2SH"},
	{regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`), "Solana-style (base58)", "Solana and other ed25519 base58 chains"},
}

// Family returns the family name and chain description of address, or ok=false.
func Family(address string) (name, chains string, ok bool) {
	for _, f := range addressFamilies {
		if f.pattern.MatchString(address) {
			return f.name, f.chains, true
		}
	}
	return "", "", false
}

func (FamilyAnalyzer) Analyze(_ context.Context, address string) (string, error) {
	address = strings.TrimSpace(address)
	name, chains, ok := Family(address)
	if !ok {
		return "", fmt.Errorf("unrecognized address format: %q", address)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Address Analysis Report for `%s`\n\n", address)
	fmt.Fprintf(&sb, "- **Format:** %s\n", name)
	fmt.Fprintf(&sb, "- **Networks:** %s\n", chains)
	fmt.Fprintf(&sb, "- **Length:** %d characters\n", len(address))
	sb.WriteString("\nPortfolio data is not available for this address.")
	return sb.String(), nil
}

func (a *Agent) analyzeAddress(ctx context.Context, address string) (string, error) {
	return a.address.Analyze(ctx, address)
}
