package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuthor = Author{Name: "Test Author", Email: "test@example.com"}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func gitLog(t *testing.T, dir, format string) string {
	t.Helper()
	cmd := exec.Command("git", "log", "--format="+format, "-1")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return string(out)
}

func TestInit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(dir))
	assert.True(t, IsRepo(dir))
}

func TestCommitAll(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{}"), 0o644))

	hash, err := CommitAll(dir, "init: Earthworks Studio", testAuthor)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	assert.Contains(t, gitLog(t, dir, "%s"), "init: Earthworks Studio")
	assert.Contains(t, gitLog(t, dir, "%an <%ae>"), "Test Author <test@example.com>")
}

func TestCommitAll_NothingToCommit(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	_, err := CommitAll(dir, "first", testAuthor)
	require.NoError(t, err)

	changed, err := HasChanges(dir)
	require.NoError(t, err)
	assert.False(t, changed)

	hash, err := CommitAll(dir, "second", testAuthor)
	require.NoError(t, err)
	assert.Empty(t, hash)
}

func TestCommitAll_NotARepo(t *testing.T) {
	requireGit(t)
	_, err := CommitAll(t.TempDir(), "msg", testAuthor)
	assert.Error(t, err)
}
