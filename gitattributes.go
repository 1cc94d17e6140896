package lfs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/denormal/go-gitignore"
)

// AttributesProvider answers whether a repository path is LFS-tracked
// (§4.7 "Attribute gate"), the only point at which .gitattributes
// semantics enter the core. It is an external collaborator the core
// borrows rather than implements (§1); GitAttributesProvider is a
// concrete default.
type AttributesProvider interface {
	IsTracked(path string) bool
}

// GitAttributesProvider answers IsTracked by parsing .gitattributes lines
// of the form "<pattern> filter=lfs" as gitignore-style patterns and
// matching candidate paths against them.
type GitAttributesProvider struct {
	root string

	mu      sync.Mutex
	matcher gitignore.GitIgnore
	loaded  bool
}

// NewGitAttributesProvider returns a provider rooted at the repository
// root containing .gitattributes.
func NewGitAttributesProvider(root string) *GitAttributesProvider {
	return &GitAttributesProvider{root: root}
}

// IsTracked reports whether path (relative to the repository root) is
// matched by an "lfs" filter pattern in .gitattributes.
func (p *GitAttributesProvider) IsTracked(path string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		p.matcher = loadLFSPatternMatcher(p.root)
		p.loaded = true
	}

	slashed := filepath.ToSlash(path)
	match := p.matcher.Relative(slashed, false)
	return match != nil && match.Ignore()
}

// loadLFSPatternMatcher reads .gitattributes at root and compiles the
// patterns of every "filter=lfs" line into a gitignore-style matcher.
func loadLFSPatternMatcher(root string) gitignore.GitIgnore {
	var patterns []string

	content, err := os.ReadFile(filepath.Join(root, ".gitattributes"))
	if err == nil {
		for _, line := range strings.Split(string(content), "\n") {
			if pattern, ok := lfsFilterPattern(line); ok {
				patterns = append(patterns, pattern)
			}
		}
	}

	reader := strings.NewReader(strings.Join(patterns, "\n"))
	matcher := gitignore.New(reader, root, func(gitignore.Error) bool { return false })
	if matcher == nil {
		return gitignore.New(strings.NewReader(""), root, nil)
	}
	return matcher
}

// lfsFilterPattern extracts the pattern from a .gitattributes line that
// carries "filter=lfs" among its attributes, e.g. "*.bin filter=lfs diff=lfs merge=lfs -text".
func lfsFilterPattern(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", false
	}
	for _, attr := range fields[1:] {
		if attr == "filter=lfs" {
			return fields[0], true
		}
	}
	return "", false
}
