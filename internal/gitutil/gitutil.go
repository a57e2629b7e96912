// Package gitutil derives stable repository and branch identifiers for a
// working directory, suitable as partition keys.
//
// Detection shells out to git and never raises: any failure (no git binary,
// not a repository, no remote configured) falls back to a deterministic
// default so callers always receive a usable identifier.
package gitutil

import (
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultBranch is the sentinel branch name used when the working directory
// is not inside a version-controlled checkout.
const DefaultBranch = "default"

// remotePatterns are tried in order against a remote URL; the first match
// wins, so an ambiguous URL takes the earliest-listed interpretation.
//
// Shapes covered:
//
//	https://host/owner/name[.git]
//	user@host:owner/name[.git]
//	ssh://user@host/owner/name[.git]
var remotePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://(?:[^@/]+@)?([^/:]+)[/:](.+?)(?:\.git)?/?$`),
	regexp.MustCompile(`^[^@/]+@([^:]+):(.+?)(?:\.git)?/?$`),
	regexp.MustCompile(`^ssh://(?:[^@/]+@)?([^/:]+)/(.+?)(?:\.git)?/?$`),
}

// ExtractRepoIdentifier normalizes a version-control remote URL to the
// canonical "host/owner/name" form. Returns "" when no pattern matches.
func ExtractRepoIdentifier(remoteURL string) string {
	url := strings.TrimSpace(remoteURL)
	if url == "" {
		return ""
	}
	for _, pattern := range remotePatterns {
		m := pattern.FindStringSubmatch(url)
		if m == nil {
			continue
		}
		host := m[1]
		path := strings.Trim(m[2], "/")
		if host == "" || path == "" {
			continue
		}
		return host + "/" + path
	}
	return ""
}

// DetectRepositoryID returns the canonical repository identifier for path,
// derived from the configured origin remote. Falls back to the last path
// segment of path when no remote can be resolved. path "" means the current
// working directory. Always returns a non-empty string.
func DetectRepositoryID(path string) string {
	if remote := remoteURL(path); remote != "" {
		if id := ExtractRepoIdentifier(remote); id != "" {
			return id
		}
	}
	return FolderID(path)
}

// FolderID returns the last path segment of path, the pseudo-identifier used
// when remote resolution is unavailable or disabled.
func FolderID(path string) string {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	name := filepath.Base(abs)
	if name == "" || name == string(filepath.Separator) || name == "." {
		return "local"
	}
	return name
}

// DetectCurrentBranch returns the checked-out branch name for path, or
// DefaultBranch when path is not inside a repository, the command fails, or
// HEAD is detached. Never raises.
func DetectCurrentBranch(path string) string {
	out, err := gitOutput(path, "branch", "--show-current")
	if err != nil {
		return DefaultBranch
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		return DefaultBranch
	}
	return branch
}

// SanitizeBranchName maps every character outside [A-Za-z0-9_-] to '-',
// producing a filesystem-safe token. Pure and total.
func SanitizeBranchName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}

// remoteURL reads the origin remote for path, returning "" on any failure.
func remoteURL(path string) string {
	out, err := gitOutput(path, "remote", "get-url", "origin")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

func gitOutput(path string, args ...string) (string, error) {
	if path == "" {
		path = "."
	}
	cmd := exec.Command("git", append([]string{"-C", path}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
