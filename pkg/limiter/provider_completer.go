package limiter

import (
	"context"
	"iter"

	"github.com/neverliie/ai-sdk-go/pkg/provider"

	"golang.org/x/time/rate"
)

var _ provider.Completer = (*Completer)(nil)

// Completer rate-limits a provider. Streams wait before the first pull, not
// at construction, preserving the lazy-sequence contract.
type Completer struct {
	limiter *rate.Limiter

	provider provider.Completer
}

func NewCompleter(l *rate.Limiter, p provider.Completer) *Completer {
	return &Completer{
		limiter: l,

		provider: p,
	}
}

func (c *Completer) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	return c.provider.Complete(ctx, messages, options)
}

func (c *Completer) Stream(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) iter.Seq2[provider.StreamEvent, error] {
	return func(yield func(provider.StreamEvent, error) bool) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				yield(provider.StreamEvent{}, err)
				return
			}
		}

		for event, err := range c.provider.Stream(ctx, messages, options) {
			if !yield(event, err) {
				return
			}
		}
	}
}

func (c *Completer) Close() error {
	return c.provider.Close()
}
