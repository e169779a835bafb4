package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ralt/coprctl/internal/copr"
	"github.com/ralt/coprctl/internal/models"
	"github.com/sirupsen/logrus"
)

// FileSystemScanner implements Scanner interface for a yum.repos.d directory
type FileSystemScanner struct{}

// NewFileSystemScanner creates a new filesystem scanner
func NewFileSystemScanner() *FileSystemScanner {
	return &FileSystemScanner{}
}

// Scan lists COPR repository files in dir, sorted by file name
func (s *FileSystemScanner) Scan(ctx context.Context, dir string) ([]ScannedRepo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &models.CoprError{
			Type: models.ErrFileOp,
			Err:  fmt.Errorf("failed to scan directory: %w", err),
		}
	}

	var repos []ScannedRepo
	for _, entry := range entries {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !entry.Type().IsRegular() {
			continue
		}

		isCopr, legacy := copr.IsCoprFile(entry.Name())
		if !isCopr {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		repo, err := inspect(path, legacy)
		if err != nil {
			logrus.Warnf("Failed to inspect %s: %v", path, err)
			continue
		}

		logrus.Debugf("Found %s COPR repository: %s", repo.Naming, path)
		repos = append(repos, repo)
	}

	logrus.Debugf("Found %d COPR repositories in %s", len(repos), dir)
	return repos, nil
}

func inspect(path string, legacy bool) (ScannedRepo, error) {
	repo := ScannedRepo{
		Path:   path,
		Naming: NamingModern,
		State:  models.StateUnknown,
	}
	if legacy {
		repo.Naming = NamingLegacy
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return repo, err
	}

	section, ok := copr.FirstSection(data)
	if !ok {
		return repo, nil
	}
	repo.Section = section
	repo.State = copr.ObserveState(data, section)

	if id, err := copr.IdentifierFromSection(section); err == nil {
		repo.ID = id.String()
	}
	return repo, nil
}
