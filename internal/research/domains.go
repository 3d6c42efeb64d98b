package research

// DefaultDomainWeight is the trust weight of a domain missing from DomainQuality.
const DefaultDomainWeight = 0.4

// DomainQuality maps a bare host to how much its content is trusted.
var DomainQuality = map[string]float64{
	// technical documentation
	"docs.python.org":   0.95,
	"github.com":        0.9,
	"stackoverflow.com": 0.85,

	// market data and exchanges
	"coingecko.com":     0.95,
	"coinmarketcap.com": 0.95,
	"binance.com":       0.9,
	"kraken.com":        0.9,
	"coinbase.com":      0.9,
	"blockchain.info":   0.9,

	// financial press
	"bloomberg.com":   0.95,
	"reuters.com":     0.9,
	"wsj.com":         0.9,
	"ft.com":          0.9,
	"cnbc.com":        0.85,
	"marketwatch.com": 0.8,

	// crypto press
	"coindesk.com":      0.75,
	"cointelegraph.com": 0.7,
	"decrypt.co":        0.75,
	"theblock.co":       0.8,
	"cryptonews.com":    0.65,

	// tech press
	"techcrunch.com":  0.8,
	"wired.com":       0.8,
	"arstechnica.com": 0.85,

	// community
	"medium.com":     0.6,
	"dev.to":         0.7,
	"hackernoon.com": 0.6,
	"reddit.com":     0.5,
	"quora.com":      0.4,
}

// DomainWeight looks a domain up, falling back to DefaultDomainWeight.
func DomainWeight(domain string) float64 {
	if w, ok := DomainQuality[domain]; ok {
		return w
	}
	return DefaultDomainWeight
}

var qualityTerms = []string{
	"official", "documentation", "whitepaper", "announcement",
	"research", "study", "analysis", "report", "data", "statistics",
	"market cap", "trading volume", "price chart", "real-time",
	"institutional", "exchange", "blockchain", "verified",
}

var expertTerms = []string{
	"trading pair", "order book", "market depth", "liquidity",
	"institutional grade", "regulatory compliance", "audit",
	"transparency report", "api documentation",
}

var spamTerms = []string{
	"click here", "amazing", "incredible", "shocking", "unbelievable",
	"you won't believe", "10 ways", "one weird trick", "get rich quick",
	"buy now", "limited time", "exclusive offer", "guaranteed profit",
	"secret method", "insider tip", "pump", "moon", "to the moon",
}
