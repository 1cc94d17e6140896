package lfs

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// ConfigProvider is the repository-local Git config key-value lookup the
// core borrows from the host rather than implementing itself (§1). Keys
// are dotted the way `git config --get <key>` addresses them, e.g.
// "lfs.url" or "remote.origin.url".
type ConfigProvider interface {
	Get(key string) (value string, ok bool)
}

// MapConfig is a ConfigProvider backed by a plain map, useful for tests
// and for hosts that already have their config flattened.
type MapConfig map[string]string

// Get implements ConfigProvider.
func (m MapConfig) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// ClientConfig is the resolved configuration a Client is built from: an
// endpoint base URL, optional credentials, and an optional ref (§3).
type ClientConfig struct {
	Endpoint string
	Ref      *RefInfo

	Token    string
	Username string
	Password string
}

// hasCredentials reports whether any credential is set.
func (c ClientConfig) hasCredentials() bool {
	return c.Token != "" || c.Username != "" || c.Password != ""
}

// Validate checks the invariants of §3/§4.5: the endpoint is a
// syntactically valid absolute HTTPS URL, and credentials are never
// attached to anything else.
func (c ClientConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("%w: empty endpoint", ErrInvalidConfig)
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: endpoint %q is not an absolute URL", ErrInvalidConfig, c.Endpoint)
	}
	if c.hasCredentials() && u.Scheme != "https" {
		return fmt.Errorf("%w: endpoint %q", ErrInsecureCredential, c.Endpoint)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("%w: endpoint %q is not https", ErrInvalidConfig, c.Endpoint)
	}
	return nil
}

// ResolveEndpoint implements the discovery order of §4.5, first match
// wins:
//  1. lfs.url from the repository-local config.
//  2. lfs.url from a .lfsconfig file at the repository root.
//  3. remote.<name>.lfsurl for the chosen remote.
//  4. Derived from the remote URL.
func ResolveEndpoint(cfg ConfigProvider, repoRoot, remoteName string) (string, error) {
	if v, ok := cfg.Get("lfs.url"); ok && v != "" {
		return v, nil
	}

	if v, ok := lfsConfigURL(repoRoot); ok && v != "" {
		return v, nil
	}

	if v, ok := cfg.Get(fmt.Sprintf("remote.%s.lfsurl", remoteName)); ok && v != "" {
		return v, nil
	}

	remoteURL, ok := cfg.Get(fmt.Sprintf("remote.%s.url", remoteName))
	if !ok || remoteURL == "" {
		return "", fmt.Errorf("%w: no lfs.url, .lfsconfig, remote.%s.lfsurl, or remote.%s.url", ErrInvalidConfig, remoteName, remoteName)
	}
	derived, err := deriveEndpoint(remoteURL)
	if err != nil {
		return "", err
	}
	return derived, nil
}

// lfsConfigURL reads lfs.url out of a .lfsconfig file at repoRoot, if one
// exists. A missing file is not an error; it simply yields no match.
func lfsConfigURL(repoRoot string) (string, bool) {
	path := repoRoot + string(os.PathSeparator) + ".lfsconfig"
	cfg, err := ini.Load(path)
	if err != nil {
		return "", false
	}
	v := cfg.Section("lfs").Key("url").String()
	return v, v != ""
}

// deriveEndpoint implements §4.5 point 4: parse the remote, strip any
// "git+" prefix, coerce git@host:path into https://host/path, and append
// /info/lfs to the path, preserving any existing .git suffix rather than
// adding one.
func deriveEndpoint(remoteURL string) (string, error) {
	raw := strings.TrimPrefix(remoteURL, "git+")

	if host, path, ok := splitSCPLikeURL(raw); ok {
		raw = "https://" + host + "/" + path
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return "", fmt.Errorf("%w: cannot derive lfs endpoint from remote url %q", ErrInvalidConfig, remoteURL)
	}
	if u.Scheme == "ssh" {
		u.Scheme = "https"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/info/lfs"
	u.User = nil
	return u.String(), nil
}

// splitSCPLikeURL recognizes the scp-like "user@host:path" form git
// accepts for SSH remotes, e.g. "git@github.com:owner/repo.git".
func splitSCPLikeURL(s string) (host, path string, ok bool) {
	if strings.Contains(s, "://") {
		return "", "", false
	}
	at := strings.Index(s, "@")
	colon := strings.Index(s, ":")
	if at < 0 || colon < 0 || colon < at {
		return "", "", false
	}
	return s[at+1 : colon], s[colon+1:], true
}
