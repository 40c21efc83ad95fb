// Package image implements the image-to-Markdown provider fallback
// chain (C5, spec.md §4.5): a local OCR+EXIF provider and one or more
// remote LLM captioning providers, tried in configured order until one
// succeeds.
package image

import "context"

// Provider converts one image file's bytes into Markdown content.
type Provider interface {
	// Name identifies the provider in ProviderChainError attempts and
	// the Document's conversion_provider column.
	Name() string
	Describe(ctx context.Context, path string) (string, error)
}
