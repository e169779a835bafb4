package scanner

import (
	"context"

	"github.com/ralt/coprctl/internal/models"
)

// Naming identifies which plugin convention a repository file follows
type Naming int

const (
	NamingModern Naming = iota
	NamingLegacy
)

// String returns the string representation of Naming
func (n Naming) String() string {
	switch n {
	case NamingModern:
		return "modern"
	case NamingLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// ScannedRepo represents a COPR repository file found during scanning
type ScannedRepo struct {
	Path    string
	ID      string // empty when the section name is not a COPR one
	Section string
	Naming  Naming
	State   models.State
}

// Scanner lists COPR repository files
type Scanner interface {
	// Scan lists COPR repository files directly inside dir
	Scan(ctx context.Context, dir string) ([]ScannedRepo, error)
}
