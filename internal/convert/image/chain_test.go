package image

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name string
	desc string
	err  error
}

func (s stubProvider) Name() string { return s.name }
func (s stubProvider) Describe(_ context.Context, _ string) (string, error) {
	return s.desc, s.err
}

func TestChainFirstProviderSucceeds(t *testing.T) {
	chain := NewChain(
		stubProvider{name: "local_ocr", desc: "a scanned receipt"},
		stubProvider{name: "remote_llm", desc: "never reached"},
	)

	desc, provider, err := chain.Describe(context.Background(), "/x/img.png")
	require.NoError(t, err)
	assert.Equal(t, "a scanned receipt", desc)
	assert.Equal(t, "local_ocr", provider)
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	chain := NewChain(
		stubProvider{name: "local_ocr", err: errors.New("tesseract not installed")},
		stubProvider{name: "remote_llm", desc: "a diagram of a pipeline"},
	)

	desc, provider, err := chain.Describe(context.Background(), "/x/img.png")
	require.NoError(t, err)
	assert.Equal(t, "a diagram of a pipeline", desc)
	assert.Equal(t, "remote_llm", provider)
}

func TestChainExhaustedAggregatesEveryFailure(t *testing.T) {
	chain := NewChain(
		stubProvider{name: "local_ocr", err: errors.New("tesseract not installed")},
		stubProvider{name: "remote_llm", err: errors.New("401 unauthorized")},
	)

	_, _, err := chain.Describe(context.Background(), "/x/img.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "local_ocr")
	assert.Contains(t, err.Error(), "tesseract not installed")
	assert.Contains(t, err.Error(), "remote_llm")
	assert.Contains(t, err.Error(), "401 unauthorized")
}

func TestChainEmptyDescriptionCountsAsFailure(t *testing.T) {
	chain := NewChain(stubProvider{name: "local_ocr", desc: ""})

	_, _, err := chain.Describe(context.Background(), "/x/img.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "local_ocr")
	assert.Contains(t, err.Error(), "empty description")
}

func TestChainNoProvidersConfigured(t *testing.T) {
	chain := NewChain()

	_, _, err := chain.Describe(context.Background(), "/x/img.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no providers configured")
}

func TestChainRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chain := NewChain(stubProvider{name: "local_ocr", desc: "unreachable"})

	_, _, err := chain.Describe(ctx, "/x/img.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "local_ocr")
}
