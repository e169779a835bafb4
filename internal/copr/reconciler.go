package copr

import (
	"fmt"
	"strings"

	"github.com/ralt/coprctl/internal/models"
	"github.com/ralt/coprctl/internal/utils"
	"github.com/sirupsen/logrus"
)

const repoFileMode = 0644

// Reconciler converges COPR repository files to a desired state.
// Calls for the same repository must be serialized by the caller.
type Reconciler struct {
	settings models.Settings
	log      *logrus.Entry
}

// NewReconciler creates a reconciler writing into settings.ReposDir
func NewReconciler(settings models.Settings) *Reconciler {
	return &Reconciler{
		settings: settings.WithDefaults(),
		log:      logrus.WithField("component", "copr"),
	}
}

// Settings returns the effective settings, defaults applied
func (r *Reconciler) Settings() models.Settings {
	return r.settings
}

// Definition validates id and p and derives the repository definition
func (r *Reconciler) Definition(id string, p models.Platform) (Definition, error) {
	ident, err := ParseIdentifier(id)
	if err != nil {
		return Definition{}, err
	}
	if err := p.Validate(); err != nil {
		return Definition{}, &models.CoprError{
			Type:       models.ErrUnsupportedPlatform,
			Repository: id,
			Err:        err,
		}
	}
	if err := validateHub(r.settings.Hub); err != nil {
		return Definition{}, &models.CoprError{
			Type:       models.ErrInvalidConfig,
			Repository: id,
			Err:        err,
		}
	}
	return NewDefinition(ident, p, r.settings), nil
}

// Observe returns the current on-disk state of def
func (r *Reconciler) Observe(def Definition) (models.State, error) {
	data, ok, err := utils.ReadFileIfExists(def.FilePath)
	if err != nil {
		return models.StateUnknown, &models.CoprError{
			Type:       models.ErrFileOp,
			Repository: def.ID.String(),
			Err:        fmt.Errorf("failed to read %s: %w", def.FilePath, err),
		}
	}
	if !ok {
		return models.StateRemoved, nil
	}

	state := ObserveState(data, def.SectionName)
	if state == models.StateUnknown {
		// The file may belong to another repository sharing the legacy name
		if section, found := FirstSection(data); found && section != def.SectionName {
			if other, err := IdentifierFromSection(section); err == nil {
				return models.StateUnknown, &models.CoprError{
					Type:       models.ErrFileOp,
					Repository: def.ID.String(),
					Err:        fmt.Errorf("%s already defines %s", def.FilePath, other),
				}
			}
		}
	}
	return state, nil
}

// validateHub rejects hub names that would move the file out of the repos directory
func validateHub(hub string) error {
	if hub == "" || hub == "." || strings.Contains(hub, "..") || strings.ContainsAny(hub, `/\`) {
		return fmt.Errorf("invalid hub %q", hub)
	}
	return nil
}

// Effective maps desired onto what p can represent: legacy platforms
// have no disabled COPR files, so disabled means removed there.
func Effective(desired models.State, p models.Platform) models.State {
	if desired == models.StateDisabled && p.Legacy() {
		return models.StateRemoved
	}
	return desired
}

// Reconcile brings the repository file for id to desired on platform p and
// reports whether anything on disk changed.
func (r *Reconciler) Reconcile(id string, desired models.State, p models.Platform) (bool, error) {
	def, err := r.Definition(id, p)
	if err != nil {
		return false, err
	}

	switch desired {
	case models.StateEnabled, models.StateDisabled, models.StateRemoved:
	default:
		return false, &models.CoprError{
			Type:       models.ErrInvalidConfig,
			Repository: id,
			Err:        fmt.Errorf("invalid desired state %s", desired),
		}
	}

	target := Effective(desired, p)
	current, err := r.Observe(def)
	if err != nil {
		return false, err
	}

	log := r.log.WithFields(logrus.Fields{
		"repo":     def.ID.String(),
		"file":     def.FilePath,
		"platform": p.String(),
	})
	log.Debugf("Observed %s, want %s", current, target)

	if current == target {
		return false, nil
	}

	if target == models.StateRemoved {
		if _, err := utils.RemoveFile(def.FilePath); err != nil {
			return false, &models.CoprError{
				Type:       models.ErrFileOp,
				Repository: def.ID.String(),
				Err:        fmt.Errorf("failed to remove %s: %w", def.FilePath, err),
			}
		}
		log.Infof("Removed repository file (was %s)", current)
		return true, nil
	}

	if err := utils.WriteFileAtomic(def.FilePath, def.Render(target), repoFileMode); err != nil {
		return false, &models.CoprError{
			Type:       models.ErrFileOp,
			Repository: def.ID.String(),
			Err:        fmt.Errorf("failed to write %s: %w", def.FilePath, err),
		}
	}
	log.Infof("Repository %s (was %s)", target, current)
	return true, nil
}
