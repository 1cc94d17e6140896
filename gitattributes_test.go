package lfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitAttributesProviderMatchesLFSPattern(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitattributes"), []byte("*.bin filter=lfs diff=lfs merge=lfs -text\n*.txt text\n"), 0o644))

	provider := NewGitAttributesProvider(dir)
	assert.True(t, provider.IsTracked("video.bin"))
	assert.True(t, provider.IsTracked("nested/video.bin"))
	assert.False(t, provider.IsTracked("readme.txt"))
}

func TestGitAttributesProviderNoFileMatchesNothing(t *testing.T) {
	dir := t.TempDir()
	provider := NewGitAttributesProvider(dir)
	assert.False(t, provider.IsTracked("anything.bin"))
}

func TestLFSFilterPattern(t *testing.T) {
	pattern, ok := lfsFilterPattern("*.psd filter=lfs diff=lfs merge=lfs -text")
	assert.True(t, ok)
	assert.Equal(t, "*.psd", pattern)

	_, ok = lfsFilterPattern("*.md text")
	assert.False(t, ok)

	_, ok = lfsFilterPattern("")
	assert.False(t, ok)
}
