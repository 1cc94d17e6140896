// Package lfs implements the core of a Git Large File Storage client:
// the pointer codec, the Batch API HTTP client, a content-addressed
// object cache compatible with the reference tool's on-disk layout, and
// the clean/smudge filter bridging the two. It is meant to be called as
// a library by programs that already hold an open handle to a Git
// repository, not shelled out to.
package lfs
