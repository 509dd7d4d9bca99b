// Package adaptive routes chat calls by weighted random selection over
// provider scores combining time to first event, error rate, and current
// inflight load, with circuit breaker protection.
package adaptive

import (
	"context"
	"errors"
	"iter"
	"math/rand"
	"time"

	"github.com/neverliie/ai-sdk-go/pkg/provider"
	"github.com/neverliie/ai-sdk-go/pkg/router"
)

const defaultLatencyAlpha = 0.3 // exponential moving average weight

var _ provider.Completer = (*Completer)(nil)

type Completer struct {
	completers []provider.Completer
	stats      []*router.ProviderStats

	failureThreshold int
	recoveryTimeout  time.Duration
	latencyAlpha     float64
}

func NewCompleter(completers ...provider.Completer) (*Completer, error) {
	if len(completers) == 0 {
		return nil, errors.New("at least one completer is required")
	}

	stats := make([]*router.ProviderStats, len(completers))

	for i := range stats {
		stats[i] = router.NewProviderStats()
	}

	return &Completer{
		completers: completers,
		stats:      stats,

		failureThreshold: router.DefaultFailureThreshold,
		recoveryTimeout:  router.DefaultRecoveryTimeout,
		latencyAlpha:     defaultLatencyAlpha,
	}, nil
}

func (c *Completer) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Response, error) {
	index := c.selectProvider()

	if index < 0 {
		return nil, errors.New("all providers are unavailable")
	}

	c.stats[index].AddInflight(1)
	defer c.stats[index].AddInflight(-1)

	start := time.Now()

	response, err := c.completers[index].Complete(ctx, messages, options)

	if err != nil {
		c.stats[index].RecordFailure(c.failureThreshold)
		return nil, err
	}

	c.stats[index].RecordSuccess(time.Since(start), c.latencyAlpha)

	return response, nil
}

func (c *Completer) Stream(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) iter.Seq2[provider.StreamEvent, error] {
	return func(yield func(provider.StreamEvent, error) bool) {
		index := c.selectProvider()

		if index < 0 {
			yield(provider.StreamEvent{}, errors.New("all providers are unavailable"))
			return
		}

		c.stats[index].AddInflight(1)
		defer c.stats[index].AddInflight(-1)

		start := time.Now()

		var ttft time.Duration
		var failed, hasEvent bool

		for event, err := range c.completers[index].Stream(ctx, messages, options) {
			if err != nil {
				failed = true
			} else if !hasEvent {
				hasEvent = true
				ttft = time.Since(start)
			}

			if !yield(event, err) {
				break
			}
		}

		if failed {
			c.stats[index].RecordFailure(c.failureThreshold)
		} else {
			c.stats[index].RecordSuccess(ttft, c.latencyAlpha)
		}
	}
}

func (c *Completer) Close() error {
	var errs []error

	for _, completer := range c.completers {
		errs = append(errs, completer.Close())
	}

	return errors.Join(errs...)
}

// selectProvider scores every available provider and performs weighted
// random selection. Higher scores go to providers with lower time to first
// event, lower error rate, and fewer inflight requests; half-open circuits
// are penalized to limit probe traffic.
func (c *Completer) selectProvider() int {
	candidates := make([]int, 0, len(c.completers))
	scores := make([]float64, 0, len(c.completers))

	for i, stat := range c.stats {
		if !stat.IsAvailable(c.recoveryTimeout) {
			continue
		}

		state, avgTTFT, totalRequests, totalFailures, inflight := stat.Metrics()

		candidates = append(candidates, i)

		ttftMs := float64(avgTTFT.Milliseconds())

		if ttftMs < 1 {
			ttftMs = 1
		}

		var errorRate float64

		if totalRequests > 0 {
			errorRate = float64(totalFailures) / float64(totalRequests)
		}

		inflightFactor := 1.0 / (1.0 + float64(inflight))

		score := inflightFactor / (ttftMs * (1 + errorRate*10))

		if state == router.CircuitHalfOpen {
			score *= 0.1
		}

		scores = append(scores, score)
	}

	if len(candidates) == 0 {
		return c.fallbackProvider()
	}

	return weightedSelect(candidates, scores)
}

func weightedSelect(candidates []int, scores []float64) int {
	if len(candidates) == 1 {
		return candidates[0]
	}

	var totalScore float64

	for _, score := range scores {
		totalScore += score
	}

	if totalScore <= 0 {
		return candidates[rand.Intn(len(candidates))]
	}

	r := rand.Float64() * totalScore

	var cumulative float64

	for i, score := range scores {
		cumulative += score

		if r <= cumulative {
			return candidates[i]
		}
	}

	return candidates[len(candidates)-1]
}

func (c *Completer) fallbackProvider() int {
	bestIndex := 0

	var oldestFailure time.Time

	for i, stat := range c.stats {
		lastFailure := stat.LastFailure()

		if i == 0 || lastFailure.Before(oldestFailure) {
			oldestFailure = lastFailure
			bestIndex = i
		}
	}

	c.stats[bestIndex].SetHalfOpen()

	return bestIndex
}
