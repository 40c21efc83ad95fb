package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGitignoreShouldIgnoreSimplePattern(t *testing.T) {
	gp := NewGitignoreParser()
	gp.AddPattern("*.log")

	assert.True(t, gp.ShouldIgnore("debug.log", false))
	assert.False(t, gp.ShouldIgnore("debug.txt", false))
}

func TestGitignoreShouldIgnoreDirectoryPattern(t *testing.T) {
	gp := NewGitignoreParser()
	gp.AddPattern("node_modules/")

	assert.True(t, gp.ShouldIgnore("node_modules", true))
	assert.True(t, gp.ShouldIgnore("node_modules/left-pad/index.js", false))
	assert.False(t, gp.ShouldIgnore("src/node_modules_helper.go", false))
}

func TestGitignoreNegationReincludesPath(t *testing.T) {
	gp := NewGitignoreParser()
	gp.AddPattern("*.log")
	gp.AddPattern("!keep.log")

	assert.True(t, gp.ShouldIgnore("debug.log", false))
	assert.False(t, gp.ShouldIgnore("keep.log", false))
}

func TestGitignoreAbsolutePatternMatchesOnlyFromRoot(t *testing.T) {
	gp := NewGitignoreParser()
	gp.AddPattern("/build")

	assert.True(t, gp.ShouldIgnore("build", false))
	assert.False(t, gp.ShouldIgnore("nested/build", false))
}

func TestGitignoreCommentsAndBlankLinesSkipped(t *testing.T) {
	gp := NewGitignoreParser()
	gp.AddPattern("# a comment")
	assert.False(t, gp.ShouldIgnore("# a comment", false))
}

func TestGetExclusionPatternsConvertsDirectoryPattern(t *testing.T) {
	gp := NewGitignoreParser()
	gp.AddPattern("node_modules/")

	patterns := gp.GetExclusionPatterns()
	assert.Contains(t, patterns, "**/node_modules/**")
}

func TestGetExclusionPatternsConvertsFilePattern(t *testing.T) {
	gp := NewGitignoreParser()
	gp.AddPattern("*.log")

	patterns := gp.GetExclusionPatterns()
	assert.Contains(t, patterns, "**/*.log")
}

func TestGetExclusionPatternsSkipsNegations(t *testing.T) {
	gp := NewGitignoreParser()
	gp.AddPattern("*.log")
	gp.AddPattern("!keep.log")

	patterns := gp.GetExclusionPatterns()
	assert.Len(t, patterns, 1)
}

func TestLoadGitignoreMissingFileIsNotAnError(t *testing.T) {
	gp := NewGitignoreParser()
	err := gp.LoadGitignore(t.TempDir())
	assert.NoError(t, err)
}
