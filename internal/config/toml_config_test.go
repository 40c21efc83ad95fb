package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTOMLMissingFileReturnsNilNil(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadTOML(dir)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadTOMLParsesProjectAndIndex(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".docvault.toml", `
include = ["md", "txt"]
exclude = ["**/tmp/**"]

[project]
name = "my-vault"

[index]
max_file_size = "50MB"
max_total_size_mb = 500
follow_symlinks = true
respect_gitignore = false
recursive = true
`)

	cfg, err := LoadTOML(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "my-vault", cfg.Project.Name)
	assert.Equal(t, int64(50*1024*1024), cfg.Index.MaxFileSize)
	assert.Equal(t, int64(500), cfg.Index.MaxTotalSizeMB)
	assert.True(t, cfg.Index.FollowSymlinks)
	assert.False(t, cfg.Index.RespectGitignore)
	assert.ElementsMatch(t, []string{"md", "txt"}, cfg.Include)
	assert.Contains(t, cfg.Exclude, "**/tmp/**")
}

func TestLoadTOMLMalformedReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".docvault.toml", `[project`)

	cfg, err := LoadTOML(dir)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadTOMLDefaultsUnsetFields(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".docvault.toml", `
[project]
name = "bare"
`)

	cfg, err := LoadTOML(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.Converters.NativeMarkdown)
	assert.Equal(t, 60000, cfg.Image.LLMTimeoutMs)
}

func TestLoadFallsBackToDefaultWhenNoConfigFilePresent(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, dir, cfg.Project.Root)
}

func TestLoadPrefersKDLOverTOML(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".docvault.kdl", `project { name "from-kdl" }`)
	writeConfigFile(t, dir, ".docvault.toml", `[project]
name = "from-toml"
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "from-kdl", cfg.Project.Name)
}

func TestLoadFallsBackToTOMLWhenNoKDL(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".docvault.toml", `[project]
name = "from-toml"
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "from-toml", cfg.Project.Name)
}
