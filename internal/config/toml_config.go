package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// tomlConfig mirrors Config's fields that are reasonable to hand-edit
// in TOML, for projects that prefer it over KDL.
type tomlConfig struct {
	Project struct {
		Name string `toml:"name"`
	} `toml:"project"`
	Index struct {
		MaxFileSize      string `toml:"max_file_size"`
		MaxTotalSizeMB   int64  `toml:"max_total_size_mb"`
		MaxFileCount     int    `toml:"max_file_count"`
		FollowSymlinks   bool   `toml:"follow_symlinks"`
		RespectGitignore bool   `toml:"respect_gitignore"`
		Recursive        bool   `toml:"recursive"`
	} `toml:"index"`
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

// LoadTOML attempts to load configuration from a .docvault.toml file
// under projectRoot, the secondary supported format alongside
// .docvault.kdl. A missing file returns (nil, nil).
func LoadTOML(projectRoot string) (*Config, error) {
	tomlPath := filepath.Join(projectRoot, ".docvault.toml")

	data, err := os.ReadFile(tomlPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read .docvault.toml: %w", err)
	}

	var parsed tomlConfig
	if err := toml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse .docvault.toml: %w", err)
	}

	cfg := Default(projectRoot)
	if parsed.Project.Name != "" {
		cfg.Project.Name = parsed.Project.Name
	}
	if parsed.Index.MaxFileSize != "" {
		if sz, err := parseSize(parsed.Index.MaxFileSize); err == nil {
			cfg.Index.MaxFileSize = sz
		}
	}
	if parsed.Index.MaxTotalSizeMB > 0 {
		cfg.Index.MaxTotalSizeMB = parsed.Index.MaxTotalSizeMB
	}
	if parsed.Index.MaxFileCount > 0 {
		cfg.Index.MaxFileCount = parsed.Index.MaxFileCount
	}
	cfg.Index.FollowSymlinks = parsed.Index.FollowSymlinks
	cfg.Index.RespectGitignore = parsed.Index.RespectGitignore
	if parsed.Index.Recursive {
		cfg.Index.Recursive = parsed.Index.Recursive
	}
	if len(parsed.Include) > 0 {
		cfg.Include = parsed.Include
	}
	if len(parsed.Exclude) > 0 {
		cfg.Exclude = append(cfg.Exclude, parsed.Exclude...)
	}

	return cfg, nil
}
