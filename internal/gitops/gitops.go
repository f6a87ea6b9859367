// Package gitops shells out to git so every change to the books lands in
// version control with a meaningful author and message.
package gitops

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoChanges is returned by CommitAll when the working tree is clean.
var ErrNoChanges = errors.New("gitops: nothing to commit")

func run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", subcommand(args), strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// subcommand names the git verb for error messages, skipping -c overrides.
func subcommand(args []string) string {
	for i := 0; i < len(args); i++ {
		if args[i] == "-c" {
			i++
			continue
		}
		return args[i]
	}
	return "git"
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	_, err := run(dir, "init")
	return err
}

// IsRepo reports whether dir is a git repository root.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// HasChanges reports whether dir has staged or unstaged modifications.
func HasChanges(dir string) (bool, error) {
	out, err := run(dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// CommitAll stages everything and commits it, returning the short commit
// hash. A clean tree returns ErrNoChanges rather than an empty commit.
// The configured identity is used for both author and committer, so commits
// work on machines with no global git config.
func CommitAll(dir, message, authorName, authorEmail string) (string, error) {
	dirty, err := HasChanges(dir)
	if err != nil {
		return "", err
	}
	if !dirty {
		return "", ErrNoChanges
	}

	if _, err := run(dir, "add", "-A"); err != nil {
		return "", err
	}
	author := fmt.Sprintf("%s <%s>", authorName, authorEmail)
	if _, err := run(dir,
		"-c", "user.name="+authorName,
		"-c", "user.email="+authorEmail,
		"commit", "-m", message, "--author", author); err != nil {
		return "", err
	}
	return run(dir, "rev-parse", "--short", "HEAD")
}
