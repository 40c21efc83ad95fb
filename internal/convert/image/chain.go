package image

import (
	"context"

	dverrors "github.com/standardbeagle/docvault/internal/errors"
)

// Chain tries each Provider in order and returns the first successful
// description. Every failure is recorded so a total failure reports a
// ProviderChainError whose message contains a substring per attempted
// provider (spec.md §4.5 step 4, §8).
type Chain struct {
	providers []Provider
}

// NewChain builds a fallback chain in the given try-order.
func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers}
}

// Describe returns the first provider's successful description, or a
// *errors.ProviderChainError if every provider in the chain failed.
func (c *Chain) Describe(ctx context.Context, path string) (string, string, error) {
	if len(c.providers) == 0 {
		return "", "", dverrors.NewProviderChainError(nil)
	}

	var attempts []dverrors.ProviderAttempt
	for _, p := range c.providers {
		select {
		case <-ctx.Done():
			attempts = append(attempts, dverrors.ProviderAttempt{Provider: p.Name(), Err: ctx.Err()})
			continue
		default:
		}

		desc, err := p.Describe(ctx, path)
		if err == nil && desc != "" {
			return desc, p.Name(), nil
		}
		if err == nil {
			err = errEmpty
		}
		attempts = append(attempts, dverrors.ProviderAttempt{Provider: p.Name(), Err: err})
	}

	return "", "", dverrors.NewProviderChainError(attempts)
}

var errEmpty = emptyDescriptionError{}

type emptyDescriptionError struct{}

func (emptyDescriptionError) Error() string { return "provider returned an empty description" }
