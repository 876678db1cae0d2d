package limiter

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rohmanhakim/tariff-mirror/pkg/timeutil"
)

// Pacer
// Specialized component to enforce politeness pacing against the origin
// Responsibilities:
// - Bookkeep each hostname's last request timestamp
// - Compute the remaining delay before the next request may be issued
// - Make sure the mirroring process never bursts against the origin
//
// Retry backoff growth is NOT the pacer's concern; that lives in pkg/retry.
type Pacer interface {
	SetBaseDelay(baseDelay time.Duration)
	SetJitter(jitter time.Duration)
	SetRandomSeed(randomSeed int64)
	SetCrawlDelay(host string, delay time.Duration)
	MarkLastRequestAsNow(host string)
	ResolveDelay(host string) time.Duration
	ResolveProbeDelay(host string) time.Duration
}

// probeDelayDivisor scales the politeness delay applied before HEAD
// probes. A HEAD is still a request to the origin, but a cheap one.
const probeDelayDivisor = 4

type OriginPacer struct {
	mu          sync.RWMutex
	rngMu       sync.Mutex
	baseDelay   time.Duration
	jitter      time.Duration
	hostTimings map[string]hostTiming
	rng         *rand.Rand
}

func NewOriginPacer() *OriginPacer {
	return &OriginPacer{
		hostTimings: make(map[string]hostTiming),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *OriginPacer) SetBaseDelay(baseDelay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.baseDelay = baseDelay
}

func (p *OriginPacer) SetJitter(jitter time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.jitter = jitter
}

func (p *OriginPacer) SetRandomSeed(randomSeed int64) {
	p.rngMu.Lock()
	defer p.rngMu.Unlock()

	p.rng = rand.New(rand.NewSource(randomSeed))
}

// Set delay to given host, separated from global base delay
func (p *OriginPacer) SetCrawlDelay(host string, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	currentHostTiming, exists := p.hostTimings[host]
	if exists {
		currentHostTiming.crawlDelay = delay
		p.hostTimings[host] = currentHostTiming
	} else {
		p.hostTimings[host] = hostTiming{
			crawlDelay: delay,
		}
	}
}

// Mark the given host lastRequest to time.Now()
func (p *OriginPacer) MarkLastRequestAsNow(host string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	currentHostTiming, exists := p.hostTimings[host]
	if exists {
		currentHostTiming.lastRequestAt = time.Now()
		p.hostTimings[host] = currentHostTiming
	} else {
		p.hostTimings[host] = hostTiming{
			lastRequestAt: time.Now(),
		}
	}
}

// Compute jitter for the given max duration
// Returns a pseudo-random duration between 0 and max (inclusive)
func (p *OriginPacer) computeJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}

	p.rngMu.Lock()
	defer p.rngMu.Unlock()

	if p.rng == nil {
		p.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return time.Duration(p.rng.Int63n(int64(max)))
}

// ResolveDelay computes the remaining wait for the given host.
// FinalDelay = max(BaseDelay, crawlDelay) + Jitter, minus the time
// already elapsed since the last request.
func (p *OriginPacer) ResolveDelay(host string) time.Duration {
	return p.resolveDelay(host, 1)
}

// ResolveProbeDelay is ResolveDelay scaled down for HEAD probes.
func (p *OriginPacer) ResolveProbeDelay(host string) time.Duration {
	return p.resolveDelay(host, probeDelayDivisor)
}

func (p *OriginPacer) resolveDelay(host string, divisor int) time.Duration {
	// copy needed state under read lock, then compute without holding p.mu
	p.mu.RLock()
	currentHostTiming, exists := p.hostTimings[host]
	base := p.baseDelay
	jitter := p.jitter
	p.mu.RUnlock()

	// return no delay if the host not registered yet
	if !exists {
		return time.Duration(0)
	}

	delays := []time.Duration{base, currentHostTiming.crawlDelay}
	finalDelay := timeutil.MaxDuration(delays)

	// add jitter to the final delay (computeJitter protects rng)
	finalDelay += p.computeJitter(jitter)

	if divisor > 1 {
		finalDelay /= time.Duration(divisor)
	}

	elapsed := time.Since(currentHostTiming.lastRequestAt)

	// return the remaining time since the host last been contacted,
	// else don't delay
	if elapsed < finalDelay {
		return finalDelay - elapsed
	}

	return time.Duration(0)
}

func (p *OriginPacer) GetBaseDelay() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.baseDelay
}

func (p *OriginPacer) GetJitter() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jitter
}
