package limiter

import "time"

// timing-related data used to track when the origin host was last contacted
type hostTiming struct {
	lastRequestAt time.Time
	crawlDelay    time.Duration
}

func (h *hostTiming) CrawlDelay() time.Duration {
	return h.crawlDelay
}

func (h *hostTiming) LastRequestAt() time.Time {
	return h.lastRequestAt
}
