// Package roundrobin distributes chat calls randomly among healthy
// providers, with circuit breaker protection. Unlike the adaptive router it
// tracks no latency or load, only failures.
package roundrobin

import (
	"context"
	"errors"
	"iter"
	"math/rand"
	"time"

	"github.com/neverliie/ai-sdk-go/pkg/provider"
	"github.com/neverliie/ai-sdk-go/pkg/router"
)

var _ provider.Completer = (*Completer)(nil)

type Completer struct {
	completers []provider.Completer
	stats      []*router.ProviderStats

	failureThreshold int
	recoveryTimeout  time.Duration
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
	}, nil
}

func (c *Completer) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Response, error) {
	index := c.selectProvider()

	if index < 0 {
		return nil, errors.New("all providers are unavailable")
	}

	response, err := c.completers[index].Complete(ctx, messages, options)

	if err != nil {
		c.stats[index].RecordFailure(c.failureThreshold)
		return nil, err
	}

	c.stats[index].RecordSuccess(0, 0)

	return response, nil
}

func (c *Completer) Stream(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) iter.Seq2[provider.StreamEvent, error] {
	return func(yield func(provider.StreamEvent, error) bool) {
		index := c.selectProvider()

		if index < 0 {
			yield(provider.StreamEvent{}, errors.New("all providers are unavailable"))
			return
		}

		var failed bool

		for event, err := range c.completers[index].Stream(ctx, messages, options) {
			if err != nil {
				failed = true
			}

			if !yield(event, err) {
				break
			}
		}

		if failed {
			c.stats[index].RecordFailure(c.failureThreshold)
		} else {
			c.stats[index].RecordSuccess(0, 0)
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

// selectProvider picks randomly among healthy providers.
func (c *Completer) selectProvider() int {
	candidates := make([]int, 0, len(c.completers))

	for i, stat := range c.stats {
		if stat.IsAvailable(c.recoveryTimeout) {
			candidates = append(candidates, i)
		}
	}

	if len(candidates) == 0 {
		return c.fallbackProvider()
	}

	return candidates[rand.Intn(len(candidates))]
}

// fallbackProvider returns the least recently failed provider when all
// circuits are open, transitioning it to half-open for the probe.
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
