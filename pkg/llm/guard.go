package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// GenerationError reports a failed or timed-out text generation call.
type GenerationError struct {
	Provider string
	Timeout  bool
	Err      error
}

func (e *GenerationError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("generation via %s timed out: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("generation via %s failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether err wraps a GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

// guardedProvider bounds every call with a deadline and normalizes failures.
type guardedProvider struct {
	name    string
	inner   LLMProvider
	timeout time.Duration
}

// WithGuard wraps a provider so each call runs under timeout and every
// failure surfaces as *GenerationError. A zero timeout disables the deadline.
func WithGuard(name string, p LLMProvider, timeout time.Duration) LLMProvider {
	return &guardedProvider{name: name, inner: p, timeout: timeout}
}

func (g *guardedProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	return g.call(ctx, func(ctx context.Context) (string, error) {
		return g.inner.Chat(ctx, history, options...)
	})
}

func (g *guardedProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return g.call(ctx, func(ctx context.Context) (string, error) {
		return g.inner.Generate(ctx, prompt, options...)
	})
}

func (g *guardedProvider) call(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	out, err := fn(ctx)
	if err == nil {
		return out, nil
	}
	if IsGenerationError(err) {
		return "", err
	}
	return "", &GenerationError{
		Provider: g.name,
		Timeout:  errors.Is(ctx.Err(), context.DeadlineExceeded),
		Err:      err,
	}
}
