package lfs

import "context"

// RepositoryHandle is the open Git repository handle the host already
// holds (§1, §4.8): the core never opens or owns a repository itself.
type RepositoryHandle interface {
	// ReadWorkingFile returns the current working-tree bytes at path.
	ReadWorkingFile(path string) ([]byte, error)
	// WriteWorkingFile overwrites path's working-tree bytes with content.
	WriteWorkingFile(path string, content []byte) error
	// StageBlob records content as path's staged content in the index.
	StageBlob(path string, content []byte) error
	// Commit creates a commit from the current index with message.
	Commit(message string) error
	// TrackedPaths lists every working-tree path currently tracked by LFS.
	TrackedPaths() ([]string, error)
}

// Repo is the thin orchestrator of §4.8: given a repository handle, an
// attributes provider, and a resolved Filter, it offers Add, Commit, and
// SmudgeAll. It owns no state beyond references to its collaborators.
type Repo struct {
	handle RepositoryHandle
	attrs  AttributesProvider
	filter *Filter
}

// NewRepo builds a Repo over handle, attrs, and filter.
func NewRepo(handle RepositoryHandle, attrs AttributesProvider, filter *Filter) *Repo {
	return &Repo{handle: handle, attrs: attrs, filter: filter}
}

// Add runs clean over path's current working-tree content and stages the
// result, so the committed blob is a pointer for tracked paths and the
// content unchanged for everything else (§4.8).
func (r *Repo) Add(ctx context.Context, path string) error {
	content, err := r.handle.ReadWorkingFile(path)
	if err != nil {
		return err
	}
	cleaned, err := r.filter.Clean(ctx, path, content)
	if err != nil {
		return err
	}
	return r.handle.StageBlob(path, cleaned)
}

// Commit delegates to the repository handle (§4.8).
func (r *Repo) Commit(message string) error {
	return r.handle.Commit(message)
}

// SmudgeAll iterates every LFS-tracked path and smudges it in place,
// materializing real content into the working tree from pointers (§4.8).
func (r *Repo) SmudgeAll(ctx context.Context) error {
	paths, err := r.handle.TrackedPaths()
	if err != nil {
		return err
	}
	for _, path := range paths {
		content, err := r.handle.ReadWorkingFile(path)
		if err != nil {
			return err
		}
		smudged, err := r.filter.Smudge(ctx, path, content)
		if err != nil {
			return err
		}
		if err := r.handle.WriteWorkingFile(path, smudged); err != nil {
			return err
		}
	}
	return nil
}
