package fetch

import "math/rand"

// DefaultUserAgent is the static fallback when rotation is disabled or the
// pool yields nothing usable.
const DefaultUserAgent = "Mozilla/5.0"

// userAgentPool holds desktop browser strings the rotator picks from. The
// selection happens once per process, not per request.
var userAgentPool = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

// pickUserAgent selects a user agent for the lifetime of a client. Rotation
// failures fall back to the static default silently.
func pickUserAgent(rotate bool) string {
	if !rotate || len(userAgentPool) == 0 {
		return DefaultUserAgent
	}
	return userAgentPool[rand.Intn(len(userAgentPool))]
}
