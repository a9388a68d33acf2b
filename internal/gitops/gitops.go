// Package gitops snapshots a business directory with the git executable.
package gitops

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author identifies who snapshots are recorded as.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// env sets both author and committer so commits work on machines with no
// git identity configured.
func (a Author) env() []string {
	return append(os.Environ(),
		"GIT_AUTHOR_NAME="+a.Name,
		"GIT_AUTHOR_EMAIL="+a.Email,
		"GIT_COMMITTER_NAME="+a.Name,
		"GIT_COMMITTER_EMAIL="+a.Email,
	)
}

func git(dir string, env []string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = env
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	_, err := git(dir, nil, "init", "--quiet")
	return err
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// HasChanges reports whether the working tree differs from HEAD, counting
// untracked files.
func HasChanges(dir string) (bool, error) {
	out, err := git(dir, nil, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// CommitAll stages every file and commits. It returns the short hash of the
// new commit, or "" when there was nothing to commit.
func CommitAll(dir, message string, author Author) (string, error) {
	changed, err := HasChanges(dir)
	if err != nil {
		return "", err
	}
	if !changed {
		return "", nil
	}
	env := author.env()
	if _, err := git(dir, env, "add", "-A"); err != nil {
		return "", err
	}
	if _, err := git(dir, env, "commit", "--quiet", "-m", message, "--author", author.String()); err != nil {
		return "", err
	}
	return git(dir, env, "rev-parse", "--short", "HEAD")
}
