// Package ptr answers reverse DNS questions with a TTL cache in front of the
// system resolver.
package ptr

import (
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// cacheTTL bounds how long any answer, positive or negative, is reused.
const cacheTTL = 5 * time.Minute

// Resolver caches PTR lookups. Misses are cached too, so an address that
// never resolves is asked about once per TTL rather than once per render.
type Resolver struct {
	cache      *ttlcache.Cache[string, string]
	lookupAddr func(ip string) ([]string, error)
}

// NewResolver returns a resolver backed by the system's reverse DNS.
// Stop must be called to end the cache's expiration loop.
func NewResolver() *Resolver {
	r := &Resolver{
		cache:      ttlcache.New(ttlcache.WithTTL[string, string](cacheTTL)),
		lookupAddr: net.LookupAddr,
	}
	go r.cache.Start()
	return r
}

// Stop ends the cache expiration loop.
func (r *Resolver) Stop() {
	r.cache.Stop()
}

// Lookup returns the PTR name for ip, or "" when it has none. The empty
// answer is cached like any other.
func (r *Resolver) Lookup(ip string) string {
	if item := r.cache.Get(ip); item != nil {
		return item.Value()
	}

	name := ""
	if ptrs, err := r.lookupAddr(ip); err == nil && len(ptrs) > 0 {
		name = normalizePTR(ptrs[0])
	} else if err != nil {
		slog.Debug("PTR lookup failed", "ip", ip, "error", err)
	}

	r.cache.Set(ip, name, ttlcache.DefaultTTL)
	return name
}

// normalizePTR strips the trailing root dot from a PTR answer.
func normalizePTR(name string) string {
	return strings.TrimSuffix(name, ".")
}
