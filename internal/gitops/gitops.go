// Package gitops puts an rdtrends project under git so input tables and
// config are versioned while rendered outputs are not.
package gitops

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Identity used for commits made by rdtrends itself.
const (
	authorName  = "rdtrends"
	authorEmail = "rdtrends@localhost"
)

// IgnoreFile is the name of the git ignore file.
const IgnoreFile = ".gitignore"

// Init initializes a git repository at dir unless one already exists.
func Init(ctx context.Context, dir string) error {
	if IsRepo(dir) {
		return nil
	}
	if _, err := git(ctx, dir, "init", "--quiet"); err != nil {
		return err
	}
	return nil
}

// EnsureIgnored appends each pattern missing from dir/.gitignore, creating
// the file if needed, and reports whether the file changed.
func EnsureIgnored(dir string, patterns ...string) (changed bool, err error) {
	path := filepath.Join(dir, IgnoreFile)

	present := map[string]bool{}
	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("reading %s: %w", IgnoreFile, err)
	}
	sc := bufio.NewScanner(strings.NewReader(string(existing)))
	for sc.Scan() {
		present[strings.TrimSpace(sc.Text())] = true
	}

	var b strings.Builder
	b.Write(existing)
	if len(existing) > 0 && !strings.HasSuffix(string(existing), "\n") {
		b.WriteByte('\n')
	}
	for _, p := range patterns {
		if present[p] {
			continue
		}
		present[p] = true
		b.WriteString(p)
		b.WriteByte('\n')
		changed = true
	}
	if !changed {
		return false, nil
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", IgnoreFile, err)
	}
	return true, nil
}

// CommitAll stages all files and creates a commit. Returns the short commit hash.
func CommitAll(ctx context.Context, dir, message string) (string, error) {
	if _, err := git(ctx, dir, "add", "-A"); err != nil {
		return "", err
	}

	if _, err := git(ctx, dir, "commit", "--quiet", "-m", message); err != nil {
		return "", err
	}

	out, err := git(ctx, dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Available reports whether a git binary is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// identityEnv sets author and committer so commits work without any git config.
func identityEnv() []string {
	return append(os.Environ(),
		"GIT_AUTHOR_NAME="+authorName,
		"GIT_AUTHOR_EMAIL="+authorEmail,
		"GIT_COMMITTER_NAME="+authorName,
		"GIT_COMMITTER_EMAIL="+authorEmail,
	)
}

// git runs a git subcommand in dir. Errors are labelled with the subcommand.
func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Env = identityEnv()
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", subcommand(args), strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}

// subcommand returns the first argument that is not a global option.
func subcommand(args []string) string {
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-c" || args[i] == "-C":
			i++
		case strings.HasPrefix(args[i], "-"):
		default:
			return args[i]
		}
	}
	return ""
}
