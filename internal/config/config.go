// Package config loads and validates the docvault configuration surface
// described in spec.md §6: exclusion patterns, the per-category
// extension lists the Converter Registry bootstraps from, image
// provider ordering, and session/runtime tuning.
package config

import (
	"os"
	"runtime"

	"github.com/standardbeagle/docvault/internal/types"
)

// Config is the full, merged configuration for one docvault invocation.
type Config struct {
	Version int
	Project Project
	Index   Index

	// Converters groups the per-category extension lists that seed the
	// Converter Registry at bootstrap (spec.md §4.3, §6).
	Converters ConverterTypes

	Image   Image
	Runtime Runtime

	Include []string
	Exclude []string
}

// Project describes the scan root.
type Project struct {
	Root string
	Name string
}

// Index controls scanning limits and behavior.
type Index struct {
	MaxFileSize      int64
	MaxTotalSizeMB   int64
	MaxFileCount     int
	FollowSymlinks   bool
	RespectGitignore bool
	Recursive        bool
}

// ConverterTypes is the extension-to-category configuration surface
// named in spec.md §6 ("native_markdown_types", "plain_text_types", ...).
type ConverterTypes struct {
	NativeMarkdown []string
	PlainText      []string
	Code           []string
	Structured     []string
	XMind          []string
	Image          []string
	Video          []string
	HTML           []string
	Diagram        []string
}

// AllKnownExtensions returns every extension the registry would bootstrap,
// used by the validator to check the configured include list.
func (c ConverterTypes) AllKnownExtensions() []string {
	var all []string
	all = append(all, c.NativeMarkdown...)
	all = append(all, c.PlainText...)
	all = append(all, c.Code...)
	all = append(all, c.Structured...)
	all = append(all, c.XMind...)
	all = append(all, c.Image...)
	all = append(all, c.Video...)
	all = append(all, c.HTML...)
	all = append(all, c.Diagram...)
	return all
}

// Image configures the provider fallback chain (spec.md §4.5).
type Image struct {
	ProviderPrimary        string
	ProviderChain          []string
	TesseractLang          string
	EnableFrontMatter      bool
	LLMTimeoutMs           int
}

// Runtime configures the coordinator's concurrency and session behavior
// (spec.md §5, §8).
type Runtime struct {
	WorkerPoolSize        int
	SessionHistoryCap     int
	SessionGraceSeconds   int
	ProbeTimeoutSec       int
}

// Load reads a .docvault.kdl from rootDir if present, then a
// .docvault.toml, falling back to defaults if neither exists. A
// missing config file is not an error.
func Load(rootDir string) (*Config, error) {
	if kdlCfg, err := LoadKDL(rootDir); err != nil {
		return nil, err
	} else if kdlCfg != nil {
		return kdlCfg, nil
	}
	if tomlCfg, err := LoadTOML(rootDir); err != nil {
		return nil, err
	} else if tomlCfg != nil {
		return tomlCfg, nil
	}
	return Default(rootDir), nil
}

// Default returns a Config populated with the teacher-style sane
// defaults, rooted at rootDir (or the current working directory).
func Default(rootDir string) *Config {
	root := rootDir
	if root == "" {
		if cwd, err := os.Getwd(); err == nil {
			root = cwd
		} else {
			root = "."
		}
	}

	return &Config{
		Version: 1,
		Project: Project{Root: root},
		Index: Index{
			MaxFileSize:      types.DefaultMaxFileSize,
			MaxTotalSizeMB:   types.DefaultMaxTotalSizeMB,
			MaxFileCount:     types.DefaultMaxFileCount,
			FollowSymlinks:   false,
			RespectGitignore: true,
			Recursive:        true,
		},
		Converters: defaultConverterTypes(),
		Image: Image{
			ProviderPrimary:   "local_ocr",
			ProviderChain:     []string{"local_ocr"},
			TesseractLang:     "eng",
			EnableFrontMatter: true,
			LLMTimeoutMs:      60000,
		},
		Runtime: Runtime{
			WorkerPoolSize:      defaultWorkerPoolSize(),
			SessionHistoryCap:   1000,
			SessionGraceSeconds: 300,
			ProbeTimeoutSec:     60,
		},
		Exclude: getDefaultExclusions(),
	}
}

func defaultWorkerPoolSize() int {
	n := runtime.NumCPU()
	if n < 4 {
		return 4
	}
	if n > 8 {
		return 8
	}
	return n
}

func defaultConverterTypes() ConverterTypes {
	return ConverterTypes{
		NativeMarkdown: []string{"md", "markdown"},
		PlainText:      []string{"txt", "log", "csv", "tsv", "ini", "cfg"},
		Code:           []string{"go", "py", "js", "ts", "jsx", "tsx", "java", "c", "h", "cpp", "hpp", "rs", "rb", "php", "sh", "yaml", "yml", "json", "toml", "sql"},
		Structured:     []string{"pdf", "doc", "docx", "ppt", "pptx", "xls", "xlsx"},
		XMind:          []string{"xmind"},
		Image:          []string{"png", "jpg", "jpeg", "gif", "bmp", "webp", "tiff"},
		Video:          []string{"mp4", "mov", "avi", "mkv", "webm"},
		HTML:           []string{"html", "htm"},
		Diagram:        []string{"drawio"},
	}
}
