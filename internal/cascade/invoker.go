// Package cascade implements the multi-provider fallback invoker used for all
// generation requests. One routine owns the attempt ordering and error
// classification; callers supply provider-specific request shaping and a parse
// function for the raw response text.
package cascade

import (
	"context"
	"fmt"
	"log/slog"
)

// Provider pairs a stable identifier with a call that turns a prompt into raw
// response text. Providers are registered once in a fixed order; that order
// determines the fallback sequence.
type Provider struct {
	ID       string
	Generate func(ctx context.Context, prompt string) (string, error)
}

// Invoker tries a primary provider, then the remaining registered providers in
// registration order. It holds no mutable state and is safe for concurrent use.
type Invoker struct {
	providers []Provider
	logger    *slog.Logger
}

// NewInvoker creates an invoker over the given providers. Registration order
// is the fallback order.
func NewInvoker(providers ...Provider) *Invoker {
	return &Invoker{
		providers: providers,
		logger:    slog.Default().With("component", "cascade"),
	}
}

// Providers returns the registered provider IDs in fallback order.
func (inv *Invoker) Providers() []string {
	ids := make([]string, 0, len(inv.providers))
	for _, p := range inv.providers {
		ids = append(ids, p.ID)
	}
	return ids
}

// attemptOrder returns [primary] followed by the remaining providers in
// registration order. An unknown primary ID yields the plain registration
// order.
func (inv *Invoker) attemptOrder(primaryID string) []Provider {
	order := make([]Provider, 0, len(inv.providers))
	for _, p := range inv.providers {
		if p.ID == primaryID {
			order = append(order, p)
			break
		}
	}
	for _, p := range inv.providers {
		if p.ID != primaryID {
			order = append(order, p)
		}
	}
	return order
}

// Invoke runs the cascade for one generation request. Each provider's raw
// output is handed to parse; the first parsed success is returned and no
// further providers are tried. Failure policy:
//
//   - rate-limited errors always move on to the next provider
//   - a general failure on the primary still gets exactly one fallback attempt
//   - a general failure on any fallback provider aborts the cascade
//
// Parse failures count as general failures of the provider that produced the
// text. When every provider has been tried, the last error is surfaced wrapped
// in an ExhaustedError.
func Invoke[T any](ctx context.Context, inv *Invoker, primaryID, prompt string, parse func(string) (T, error)) (T, error) {
	var zero T

	order := inv.attemptOrder(primaryID)
	if len(order) == 0 {
		return zero, fmt.Errorf("no providers registered")
	}

	var lastErr error
	for i, p := range order {
		raw, err := p.Generate(ctx, prompt)
		if err == nil {
			out, perr := parse(raw)
			if perr == nil {
				if i > 0 {
					inv.logger.InfoContext(ctx, "fallback provider succeeded",
						"provider", p.ID, "attempt", i+1)
				}
				return out, nil
			}
			err = perr
		}
		lastErr = err

		if RateLimited(err) {
			inv.logger.WarnContext(ctx, "provider rate limited, trying next",
				"provider", p.ID, "error", err)
			continue
		}
		if i == 0 {
			// The primary gets one guaranteed fallback regardless of
			// failure kind.
			inv.logger.WarnContext(ctx, "primary provider failed, trying fallback",
				"provider", p.ID, "error", err)
			continue
		}
		// Already degraded into the fallback chain: fail fast.
		inv.logger.ErrorContext(ctx, "fallback provider failed, aborting cascade",
			"provider", p.ID, "error", err)
		return zero, err
	}

	return zero, &ExhaustedError{Attempts: len(order), Last: lastErr}
}

// Text is a parse function for callers that want the raw response text with
// no structural validation beyond non-emptiness.
func Text(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("empty response text")
	}
	return raw, nil
}

// TextInvoker adapts the cascade to a plain text-generation call with a fixed
// primary provider.
type TextInvoker struct {
	Invoker *Invoker
	Primary string
}

// Generate runs the cascade for the prompt and returns the raw response text.
func (t *TextInvoker) Generate(ctx context.Context, prompt string) (string, error) {
	return Invoke(ctx, t.Invoker, t.Primary, prompt, Text)
}
