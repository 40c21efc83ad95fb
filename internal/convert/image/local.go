package image

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rwcarlson/goexif/exif"
)

// LocalProvider runs tesseract OCR over an image and prepends whatever
// EXIF tags it can read, so the local-only provider degrades gracefully
// on images with no recognizable text (e.g. photographs) by still
// surfacing capture metadata (spec.md §4.5 "local_ocr").
type LocalProvider struct {
	Lang string
}

// NewLocalProvider returns the local OCR+EXIF provider for the given
// tesseract language code (e.g. "eng").
func NewLocalProvider(lang string) *LocalProvider {
	if lang == "" {
		lang = "eng"
	}
	return &LocalProvider{Lang: lang}
}

func (p *LocalProvider) Name() string { return "local_ocr" }

func (p *LocalProvider) Describe(ctx context.Context, path string) (string, error) {
	var sb strings.Builder

	if meta := p.readExif(path); meta != "" {
		sb.WriteString(meta)
		sb.WriteString("\n\n")
	}

	text, err := p.runTesseract(ctx, path)
	if err != nil && sb.Len() == 0 {
		return "", err
	}
	sb.WriteString(text)

	return strings.TrimSpace(sb.String()), nil
}

func (p *LocalProvider) runTesseract(ctx context.Context, path string) (string, error) {
	cmd := exec.CommandContext(ctx, "tesseract", path, "stdout", "-l", p.Lang)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, stderr.String())
	}
	return out.String(), nil
}

func (p *LocalProvider) readExif(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("## Image metadata\n\n")
	for _, tag := range []exif.FieldName{exif.Model, exif.Make, exif.DateTimeOriginal, exif.PixelXDimension, exif.PixelYDimension} {
		if val, err := x.Get(tag); err == nil {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", tag, val.String()))
		}
	}
	return sb.String()
}
