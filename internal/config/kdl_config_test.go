package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadKDLMissingFileReturnsNilNil(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadKDLParsesProjectAndIndex(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".docvault.kdl", `
project {
    name "my-vault"
}
index {
    recursive #false
    follow_symlinks #true
}
include "md" "txt"
exclude "**/tmp/**"
`)

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "my-vault", cfg.Project.Name)
	assert.False(t, cfg.Index.Recursive)
	assert.True(t, cfg.Index.FollowSymlinks)
	assert.ElementsMatch(t, []string{"md", "txt"}, cfg.Include)
	assert.Contains(t, cfg.Exclude, "**/tmp/**")
}

func TestLoadKDLParsesRuntimeAndImage(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".docvault.kdl", `
runtime {
    worker_pool_size 3
    session_grace_seconds 120
}
image {
    provider_primary "local_ocr"
    provider_chain "local_ocr" "remote_llm"
    tesseract_lang "eng"
}
`)

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 3, cfg.Runtime.WorkerPoolSize)
	assert.Equal(t, 120, cfg.Runtime.SessionGraceSeconds)
	assert.Equal(t, "local_ocr", cfg.Image.ProviderPrimary)
	assert.Equal(t, []string{"local_ocr", "remote_llm"}, cfg.Image.ProviderChain)
}

func TestLoadKDLMalformedReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".docvault.kdl", `project { name "unterminated `)

	cfg, err := LoadKDL(dir)
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadKDLDefaultsUnsetFieldsFromDefault(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, ".docvault.kdl", `project { name "bare" }`)

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.Converters.NativeMarkdown)
	assert.Equal(t, 60000, cfg.Image.LLMTimeoutMs)
}

func TestParseSizeUnits(t *testing.T) {
	cases := map[string]int64{
		"10MB": 10 * 1024 * 1024,
		"500KB": 500 * 1024,
		"1GB":  1024 * 1024 * 1024,
		"42B":  42,
		"7":    7,
	}
	for in, want := range cases {
		got, err := parseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
