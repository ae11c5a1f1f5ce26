package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

const (
	rateLimiterIdle     = 10 * time.Minute
	rateLimiterSweep    = 5 * time.Minute
	defaultConnectRate  = 1.0
	defaultConnectBurst = 5
)

// LimitReason describes why a connection was refused.
type LimitReason string

const (
	LimitReasonGlobal LimitReason = "global_limit"
	LimitReasonPerIP  LimitReason = "per_ip_limit"
	LimitReasonRate   LimitReason = "rate_limit"
)

// globalLimiter caps concurrent connections per instance.
type globalLimiter struct {
	current atomic.Int64
	max     int64
}

func (l *globalLimiter) acquire() bool {
	for {
		current := l.current.Load()
		if current >= l.max {
			return false
		}
		if l.current.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

func (l *globalLimiter) release() {
	l.current.Add(-1)
}

// ipLimiter caps concurrent connections per remote IP.
type ipLimiter struct {
	mu     sync.Mutex
	ips    map[string]int
	maxPer int
}

func (l *ipLimiter) acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ips[ip] >= l.maxPer {
		return false
	}
	l.ips[ip]++
	return true
}

func (l *ipLimiter) release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if count := l.ips[ip]; count > 1 {
		l.ips[ip] = count - 1
	} else {
		delete(l.ips, ip)
	}
}

func (l *ipLimiter) count(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ips[ip]
}

// connectRateLimiter throttles how often one IP may open a connection.
type connectRateLimiter struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	limiters map[string]*rateEntry
	rate     rate.Limit
	burst    int
	sweepAt  time.Time
}

type rateEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (l *connectRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.After(l.sweepAt) {
		cutoff := now.Add(-rateLimiterIdle)
		for key, e := range l.limiters {
			if e.lastSeen.Before(cutoff) {
				delete(l.limiters, key)
			}
		}
		l.sweepAt = now.Add(rateLimiterSweep)
	}

	e, ok := l.limiters[ip]
	if !ok {
		e = &rateEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[ip] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// ConnectionLimits combines the global, per-IP and connect-rate limits.
type ConnectionLimits struct {
	global *globalLimiter
	perIP  *ipLimiter
	rate   *connectRateLimiter
}

// NewConnectionLimits creates limits allowing globalMax concurrent
// connections overall and perIPMax per address. New connections per address
// are throttled to one per second with a burst of five.
func NewConnectionLimits(globalMax int64, perIPMax int, clock clockwork.Clock) *ConnectionLimits {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ConnectionLimits{
		global: &globalLimiter{max: globalMax},
		perIP:  &ipLimiter{ips: make(map[string]int), maxPer: perIPMax},
		rate: &connectRateLimiter{
			clock:    clock,
			limiters: make(map[string]*rateEntry),
			rate:     rate.Limit(defaultConnectRate),
			burst:    defaultConnectBurst,
			sweepAt:  clock.Now().Add(rateLimiterSweep),
		},
	}
}

// Acquire reserves a slot for ip. On refusal nothing is held.
func (l *ConnectionLimits) Acquire(ip string) (bool, LimitReason) {
	if !l.rate.allow(ip) {
		return false, LimitReasonRate
	}
	if !l.global.acquire() {
		return false, LimitReasonGlobal
	}
	if !l.perIP.acquire(ip) {
		l.global.release()
		return false, LimitReasonPerIP
	}
	return true, ""
}

// Release frees a slot obtained by Acquire.
func (l *ConnectionLimits) Release(ip string) {
	l.perIP.release(ip)
	l.global.release()
}

// Current returns the number of held slots.
func (l *ConnectionLimits) Current() int64 {
	return l.global.current.Load()
}
