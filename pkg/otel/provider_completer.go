// Package otel decorates a provider with tracing and gen-AI client metrics
// through the global OpenTelemetry API. No SDK or exporter is wired here;
// applications that install none get no-op instruments.
package otel

import (
	"context"
	"iter"
	"time"

	"github.com/neverliie/ai-sdk-go/pkg/provider"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/semconv/v1.38.0/genaiconv"
)

var _ provider.Completer = (*Completer)(nil)

type Completer struct {
	model    string
	provider string

	completer provider.Completer

	tokenUsageMetric        genaiconv.ClientTokenUsage
	operationDurationMetric genaiconv.ClientOperationDuration
}

func NewCompleter(providerName, model string, p provider.Completer) *Completer {
	meter := otel.Meter(instrumentationName)

	tokenUsageMetric, _ := genaiconv.NewClientTokenUsage(meter)
	operationDurationMetric, _ := genaiconv.NewClientOperationDuration(meter)

	return &Completer{
		model:    model,
		provider: providerName,

		completer: p,

		tokenUsageMetric:        tokenUsageMetric,
		operationDurationMetric: operationDurationMetric,
	}
}

func (c *Completer) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Response, error) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "chat "+c.model)
	defer span.End()

	timestamp := time.Now()

	response, err := c.completer.Complete(ctx, messages, options)

	if err != nil {
		return nil, err
	}

	usage := response.Usage

	c.record(ctx, time.Since(timestamp), response.Model, usage)

	return response, nil
}

func (c *Completer) Stream(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) iter.Seq2[provider.StreamEvent, error] {
	return func(yield func(provider.StreamEvent, error) bool) {
		ctx, span := otel.Tracer(instrumentationName).Start(ctx, "chat "+c.model)
		defer span.End()

		timestamp := time.Now()

		for event, err := range c.completer.Stream(ctx, messages, options) {
			if err != nil {
				yield(provider.StreamEvent{}, err)
				return
			}

			if !yield(event, nil) {
				return
			}
		}

		c.record(ctx, time.Since(timestamp), "", nil)
	}
}

func (c *Completer) Close() error {
	return c.completer.Close()
}

func (c *Completer) record(ctx context.Context, duration time.Duration, responseModel string, usage *provider.Usage) {
	providerName := genaiconv.ProviderNameAttr(c.provider)

	model := c.model

	if responseModel != "" {
		model = responseModel
	}

	c.operationDurationMetric.Record(ctx, duration.Seconds(),
		genaiconv.OperationNameChat,
		providerName,
		KeyValues([]KeyValue{
			c.operationDurationMetric.AttrRequestModel(c.model),
			c.operationDurationMetric.AttrResponseModel(model),
		})...,
	)

	if usage == nil {
		return
	}

	if usage.PromptTokens > 0 {
		c.tokenUsageMetric.Record(ctx, int64(usage.PromptTokens),
			genaiconv.OperationNameChat,
			providerName,
			genaiconv.TokenTypeInput,
			KeyValues([]KeyValue{
				c.tokenUsageMetric.AttrRequestModel(c.model),
				c.tokenUsageMetric.AttrResponseModel(model),
			})...,
		)
	}

	if usage.CompletionTokens > 0 {
		c.tokenUsageMetric.Record(ctx, int64(usage.CompletionTokens),
			genaiconv.OperationNameChat,
			providerName,
			genaiconv.TokenTypeOutput,
			KeyValues([]KeyValue{
				c.tokenUsageMetric.AttrRequestModel(c.model),
				c.tokenUsageMetric.AttrResponseModel(model),
			})...,
		)
	}
}
