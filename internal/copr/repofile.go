package copr

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ralt/coprctl/internal/models"
	"gopkg.in/ini.v1"
)

const (
	modernPrefix = "_copr:"
	legacyPrefix = "_copr_"
	repoSuffix   = ".repo"
)

// Definition is the on-disk identity of a COPR repository on one platform
type Definition struct {
	ID          Identifier
	Platform    models.Platform
	SectionName string
	FilePath    string

	downloadURL string
}

// NewDefinition derives the section name and file path of id on platform p
func NewDefinition(id Identifier, p models.Platform, settings models.Settings) Definition {
	settings = settings.WithDefaults()

	section := fmt.Sprintf("copr:%s:%s:%s", settings.Hub, id.RepoOwner(), id.Project)

	var stem string
	if p.Legacy() {
		stem = legacyPrefix + LegacyStem(id)
	} else {
		stem = "_" + section
	}

	return Definition{
		ID:          id,
		Platform:    p,
		SectionName: section,
		FilePath:    filepath.Join(settings.ReposDir, stem+repoSuffix),
		downloadURL: settings.DownloadURL,
	}
}

// LegacyStem is the owner-project part of a legacy file name. Distinct
// identifiers can share it, e.g. a-b/c and a/b-c.
func LegacyStem(id Identifier) string {
	return id.RepoOwner() + "-" + id.Project
}

// Render produces the repository file for state, which must be enabled or disabled
func (d Definition) Render(state models.State) []byte {
	enabled := "0"
	if state == models.StateEnabled {
		enabled = "1"
	}

	results := fmt.Sprintf("%s/results/%s/%s", d.downloadURL, d.ID.URLOwner(), d.ID.Project)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s]\n", d.SectionName)
	fmt.Fprintf(&b, "name=Copr repo for %s owned by %s\n", d.ID.Project, d.ID.URLOwner())
	fmt.Fprintf(&b, "baseurl=%s/%s/\n", results, d.Platform.Chroot())
	b.WriteString("type=rpm-md\n")
	b.WriteString("skip_if_unavailable=True\n")
	b.WriteString("gpgcheck=1\n")
	fmt.Fprintf(&b, "gpgkey=%s/pubkey.gpg\n", results)
	b.WriteString("repo_gpgcheck=0\n")
	fmt.Fprintf(&b, "enabled=%s\n", enabled)
	b.WriteString("enabled_metadata=1\n")

	return []byte(b.String())
}

// ObserveState reads the state of section from repository file content.
// Content that has no such section, or no boolean enabled key in it, is
// reported as StateUnknown.
func ObserveState(data []byte, section string) models.State {
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return models.StateUnknown
	}

	sec, err := cfg.GetSection(section)
	if err != nil || !sec.HasKey("enabled") {
		return models.StateUnknown
	}

	enabled, err := sec.Key("enabled").Bool()
	if err != nil {
		return models.StateUnknown
	}
	if enabled {
		return models.StateEnabled
	}
	return models.StateDisabled
}

// FirstSection returns the name of the first non-default section in data
func FirstSection(data []byte) (string, bool) {
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, data)
	if err != nil {
		return "", false
	}
	for _, name := range cfg.SectionStrings() {
		if name != ini.DefaultSection {
			return name, true
		}
	}
	return "", false
}

// IsCoprFile reports whether name looks like a COPR repository file and
// whether it uses the legacy naming
func IsCoprFile(name string) (isCopr bool, legacy bool) {
	if !strings.HasSuffix(name, repoSuffix) {
		return false, false
	}
	switch {
	case strings.HasPrefix(name, modernPrefix):
		return true, false
	case strings.HasPrefix(name, legacyPrefix):
		return true, true
	default:
		return false, false
	}
}

// IdentifierFromSection recovers the COPR identifier from a section name
// of the form copr:<hub>:<owner>:<project>
func IdentifierFromSection(section string) (Identifier, error) {
	parts := strings.Split(section, ":")
	if len(parts) != 4 || parts[0] != "copr" {
		return Identifier{}, &models.CoprError{
			Type:       models.ErrInvalidIdentifier,
			Repository: section,
			Err:        fmt.Errorf("not a COPR section name"),
		}
	}
	owner := parts[2]
	if g, ok := strings.CutPrefix(owner, "group_"); ok {
		owner = "@" + g
	}
	return ParseIdentifier(owner + "/" + parts[3])
}
