// Package manifest loads declarative COPR resource manifests.
//
// A manifest is a TOML file:
//
//	[settings]
//	repos_dir = "/etc/yum.repos.d"
//
//	[[copr]]
//	id = "copart/restic"
//	ensure = "enabled"
package manifest

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ralt/coprctl/internal/copr"
	"github.com/ralt/coprctl/internal/models"
)

// Resource is one declared copr resource
type Resource struct {
	ID     string `toml:"id"`
	Ensure string `toml:"ensure"`
}

// Manifest is the decoded manifest file
type Manifest struct {
	Settings models.Settings `toml:"settings"`
	Copr     []Resource      `toml:"copr"`
}

// Entry is a validated resource
type Entry struct {
	ID     string
	Ensure models.State
}

// LoadFile decodes and validates the manifest at path
func LoadFile(path string) (*Manifest, []Entry, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, nil, invalid(fmt.Errorf("parse manifest %s: %w", path, err))
	}
	return finish(&m, meta)
}

// Decode reads a manifest from r
func Decode(r io.Reader) (*Manifest, []Entry, error) {
	var m Manifest
	meta, err := toml.NewDecoder(r).Decode(&m)
	if err != nil {
		return nil, nil, invalid(fmt.Errorf("parse manifest: %w", err))
	}
	return finish(&m, meta)
}

func finish(m *Manifest, meta toml.MetaData) (*Manifest, []Entry, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, nil, invalid(fmt.Errorf("unknown manifest keys: %s", strings.Join(keys, ", ")))
	}

	entries, err := m.Validate()
	if err != nil {
		return nil, nil, err
	}
	return m, entries, nil
}

// Validate checks every resource and returns them in declaration order.
// Malformed identifiers are left for the reconciler to report.
func (m *Manifest) Validate() ([]Entry, error) {
	seen := make(map[string]int, len(m.Copr))
	stems := make(map[string]int, len(m.Copr))
	entries := make([]Entry, 0, len(m.Copr))

	for i, res := range m.Copr {
		id := strings.TrimSpace(res.ID)
		if id == "" {
			return nil, invalid(fmt.Errorf("copr[%d]: id is required", i))
		}
		if prev, dup := seen[id]; dup {
			return nil, invalid(fmt.Errorf("copr[%d]: duplicate declaration of %s (first at copr[%d])", i, id, prev))
		}
		seen[id] = i

		// EL6/EL7 file names drop the owner/project boundary
		if ident, err := copr.ParseIdentifier(id); err == nil {
			stem := copr.LegacyStem(ident)
			if prev, clash := stems[stem]; clash {
				return nil, invalid(fmt.Errorf("copr[%d]: %s and %s (copr[%d]) share the legacy file name _copr_%s.repo",
					i, id, strings.TrimSpace(m.Copr[prev].ID), prev, stem))
			}
			stems[stem] = i
		}

		ensure := res.Ensure
		if strings.TrimSpace(ensure) == "" {
			ensure = models.StateEnabled.String()
		}
		state, err := models.ParseState(ensure)
		if err != nil {
			return nil, &models.CoprError{
				Type:       models.ErrInvalidConfig,
				Repository: id,
				Err:        err,
			}
		}

		entries = append(entries, Entry{ID: id, Ensure: state})
	}

	return entries, nil
}

func invalid(err error) error {
	return &models.CoprError{Type: models.ErrInvalidConfig, Err: err}
}
