// Package business creates and snapshots a business data directory.
package business

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/smallbiz-dev/smallbiz/internal/accounts"
	"github.com/smallbiz-dev/smallbiz/internal/classify"
	"github.com/smallbiz-dev/smallbiz/internal/config"
	"github.com/smallbiz-dev/smallbiz/internal/errs"
	"github.com/smallbiz-dev/smallbiz/internal/gitops"
	"github.com/smallbiz-dev/smallbiz/internal/logger"
	"github.com/smallbiz-dev/smallbiz/internal/model"
	"github.com/smallbiz-dev/smallbiz/internal/storage"
)

// Dirs are created under every new business directory.
var Dirs = []string{
	"clients",
	"config",
	"reports",
	"receipts",
	"imports",
	filepath.Join("imports", "processed"),
	"logs",
}

const gitignore = "receipts/\nreports/\n.env\n"

// DirName turns a business name into its directory name: lower case with
// spaces replaced by underscores.
func DirName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Init creates parent/<DirName(settings.BusinessName)> with the standard
// layout, the settings, the default chart of accounts, the default tool
// config and an empty rules file. It returns the new directory.
//
// An existing empty directory is reused; a non-empty one is a conflict.
func Init(settings model.Settings, parent string) (string, error) {
	name := DirName(settings.BusinessName)
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, os.PathSeparator) {
		return "", fmt.Errorf("business name %q: %w", settings.BusinessName, errs.ErrInvalid)
	}
	if err := settings.Validate(); err != nil {
		return "", err
	}
	dir := filepath.Join(parent, name)

	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return "", fmt.Errorf("reading %s: %w", dir, err)
	case len(entries) > 0:
		return "", fmt.Errorf("business directory %s already contains data: %w", dir, errs.ErrConflict)
	}

	for _, d := range Dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	reg, err := storage.Open(dir)
	if err != nil {
		return "", err
	}
	if err := reg.SaveSettings(settings); err != nil {
		return "", err
	}

	if err := accounts.Save(filepath.Join(dir, "config", "chart_of_accounts.yaml"), accounts.DefaultChart()); err != nil {
		return "", fmt.Errorf("writing chart of accounts: %w", err)
	}

	cfg := config.Default()
	if err := config.Save(config.Path(dir), cfg); err != nil {
		return "", err
	}
	if err := classify.SaveRules(filepath.Join(dir, cfg.Classification.RulesFile), nil); err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "imports", ".gitkeep"), nil, 0o644); err != nil {
		return "", fmt.Errorf("writing .gitkeep: %w", err)
	}
	return dir, nil
}

// InitRepo turns dir into a git repository and commits its contents.
func InitRepo(dir string, cfg *config.Config, businessName string) (string, error) {
	if err := gitops.Init(dir); err != nil {
		return "", err
	}
	hash, err := gitops.CommitAll(dir, "init: "+businessName, author(cfg))
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}

// Snapshot commits every change under dir when auto-commit is enabled and
// dir is a git repository. It returns "" when nothing was committed.
func Snapshot(ctx context.Context, dir string, cfg *config.Config, message string) (string, error) {
	if !cfg.Git.AutoCommit || !gitops.IsRepo(dir) {
		return "", nil
	}
	hash, err := gitops.CommitAll(dir, message, author(cfg))
	if err != nil {
		return "", err
	}
	if hash != "" {
		log := logger.FromContext(ctx)
		log.Debug().Str("commit", hash).Str("message", message).Msg("snapshot committed")
	}
	return hash, nil
}

func author(cfg *config.Config) gitops.Author {
	return gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
}
