package transport

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter spaces out requests to each job board host. One limiter is
// shared by every session of a Factory, so two sources that live on the same
// host draw from the same allowance.
type HostLimiter struct {
	mu    sync.Mutex
	hosts map[string]*rate.Limiter
	every rate.Limit
	burst int
}

// NewHostLimiter allows reqPerSec requests per host with the given burst.
func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &HostLimiter{
		hosts: make(map[string]*rate.Limiter),
		every: rate.Limit(reqPerSec),
		burst: burst,
	}
}

func (hl *HostLimiter) forHost(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	lim, ok := hl.hosts[host]
	if !ok {
		lim = rate.NewLimiter(hl.every, hl.burst)
		hl.hosts[host] = lim
	}
	return lim
}

// Wait blocks until a request to u may be sent or ctx is done. Requests
// without a host share one bucket.
func (hl *HostLimiter) Wait(ctx context.Context, u *url.URL) error {
	host := ""
	if u != nil {
		host = u.Hostname()
	}
	return hl.forHost(host).Wait(ctx)
}
