package report

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mbwk25/optimum-solutions-group-sub000/internal/metrics"
)

// DefaultErrorLimit caps identical error signatures per minute bucket.
const DefaultErrorLimit = 10

// bucketKey identifies one error signature within one minute bucket.
type bucketKey struct {
	signature string
	minute    int64
}

// ErrorLimiter suppresses error storms: each identical signature is allowed
// at most limit occurrences per minute bucket. When a signature first
// crosses the cap, the category is logged once; further occurrences in the
// same bucket are counted silently. Safe for concurrent use.
type ErrorLimiter struct {
	mu     sync.Mutex
	limit  int
	counts map[bucketKey]int
	now    func() time.Time // injectable for tests
}

// NewErrorLimiter returns a limiter allowing limit occurrences per
// signature per minute. limit <= 0 selects DefaultErrorLimit.
func NewErrorLimiter(limit int) *ErrorLimiter {
	if limit <= 0 {
		limit = DefaultErrorLimit
	}
	return &ErrorLimiter{
		limit:  limit,
		counts: make(map[bucketKey]int),
		now:    time.Now,
	}
}

// Allow reports whether an error with the given signature may be processed.
// Counters for past minute buckets are pruned lazily on each call.
func (l *ErrorLimiter) Allow(signature string) bool {
	minute := l.now().Unix() / 60

	l.mu.Lock()
	defer l.mu.Unlock()

	for k := range l.counts {
		if k.minute < minute {
			delete(l.counts, k)
		}
	}

	key := bucketKey{signature: signature, minute: minute}
	l.counts[key]++
	n := l.counts[key]

	if n > l.limit {
		if n == l.limit+1 {
			slog.Warn("errlimit: suppressing repeated error for the rest of the minute",
				"signature", signature, "limit", l.limit)
		}
		metrics.ErrorsSuppressed.Inc()
		return false
	}
	return true
}
