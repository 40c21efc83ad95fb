package config

import (
	"errors"
	"fmt"
	"runtime"

	dverrors "github.com/standardbeagle/docvault/internal/errors"
)

// Validator validates configuration and fills in sane defaults for any
// zero-valued tuning field.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates cfg and applies smart defaults in place.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProject(&cfg.Project); err != nil {
		return dverrors.NewConfigError("project", cfg.Project.Root, err)
	}
	if err := v.validateIndex(&cfg.Index); err != nil {
		return dverrors.NewConfigError("index", "", err)
	}
	if err := v.validateRuntime(&cfg.Runtime); err != nil {
		return dverrors.NewConfigError("runtime", "", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProject(p *Project) error {
	if p.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validateIndex(idx *Index) error {
	if idx.MaxFileSize <= 0 {
		return fmt.Errorf("MaxFileSize must be positive, got %d", idx.MaxFileSize)
	}
	if idx.MaxFileCount <= 0 {
		return fmt.Errorf("MaxFileCount must be positive, got %d", idx.MaxFileCount)
	}
	return nil
}

func (v *Validator) validateRuntime(r *Runtime) error {
	if r.WorkerPoolSize < 0 {
		return fmt.Errorf("WorkerPoolSize cannot be negative, got %d", r.WorkerPoolSize)
	}
	if r.SessionHistoryCap < 0 {
		return fmt.Errorf("SessionHistoryCap cannot be negative, got %d", r.SessionHistoryCap)
	}
	return nil
}

func (v *Validator) setSmartDefaults(cfg *Config) {
	if cfg.Runtime.WorkerPoolSize == 0 {
		n := runtime.NumCPU()
		if n < 4 {
			n = 4
		}
		if n > 8 {
			n = 8
		}
		cfg.Runtime.WorkerPoolSize = n
	}
	if cfg.Runtime.SessionHistoryCap == 0 {
		cfg.Runtime.SessionHistoryCap = 1000
	}
	if cfg.Runtime.SessionGraceSeconds == 0 {
		cfg.Runtime.SessionGraceSeconds = 300
	}
	if cfg.Runtime.ProbeTimeoutSec == 0 {
		cfg.Runtime.ProbeTimeoutSec = 60
	}
	if cfg.Image.LLMTimeoutMs == 0 {
		cfg.Image.LLMTimeoutMs = 60000
	}
	if len(cfg.Converters.AllKnownExtensions()) == 0 {
		cfg.Converters = defaultConverterTypes()
	}
}
