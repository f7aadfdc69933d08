package network

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
)

var ErrNoProxies = errors.New("no proxies available")

// DefaultBanDuration is how long a proxy sits out after a platform blocks it.
const DefaultBanDuration = 10 * time.Minute

type proxyEntry struct {
	url         *url.URL
	bannedUntil time.Time
}

// Rotator hands out proxies round-robin. A proxy is benched for the ban duration after an ATS
// answers through it with a blocking status or the connection through it fails.
type Rotator struct {
	mu      sync.Mutex
	entries []*proxyEntry
	next    int
	ban     time.Duration
	now     func() time.Time
}

// NewRotator parses raw proxy URLs. Blank and repeated entries are skipped; a URL without an
// http, https or socks5 scheme is an error.
func NewRotator(raw []string, ban time.Duration) (*Rotator, error) {
	if ban <= 0 {
		ban = DefaultBanDuration
	}
	r := &Rotator{ban: ban, now: time.Now}

	seen := make(map[string]struct{}, len(raw))
	for _, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		u, err := parseProxy(value)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[u.String()]; dup {
			continue
		}
		seen[u.String()] = struct{}{}
		r.entries = append(r.entries, &proxyEntry{url: u})
	}
	return r, nil
}

func parseProxy(value string) (*url.URL, error) {
	u, err := url.Parse(value)
	if err != nil {
		return nil, fmt.Errorf("proxy %q: %w", value, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("proxy %q: unsupported scheme %q", value, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy %q: missing host", value)
	}
	return u, nil
}

// Next returns the next proxy that is not benched.
func (r *Rotator) Next() (*url.URL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for range r.entries {
		entry := r.entries[r.next]
		r.next = (r.next + 1) % len(r.entries)
		if !now.Before(entry.bannedUntil) {
			return entry.url, nil
		}
	}
	return nil, ErrNoProxies
}

// Report benches proxy when status is 403, 429 or 503.
func (r *Rotator) Report(proxy *url.URL, status int) {
	if isBlockStatus(status) {
		r.bench(proxy)
	}
}

// ReportFailure benches proxy after a transport error.
func (r *Rotator) ReportFailure(proxy *url.URL) {
	r.bench(proxy)
}

func (r *Rotator) bench(proxy *url.URL) {
	if r == nil || proxy == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.url.String() == proxy.String() {
			entry.bannedUntil = r.now().Add(r.ban)
			return
		}
	}
}

func (r *Rotator) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Available counts proxies that are not benched right now.
func (r *Rotator) Available() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	count := 0
	for _, entry := range r.entries {
		if !now.Before(entry.bannedUntil) {
			count++
		}
	}
	return count
}

func isBlockStatus(status int) bool {
	return status == 403 || status == 429 || status == 503
}
