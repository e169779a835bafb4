package models

import (
	"fmt"
	"strings"
)

// DefaultReposDir is where yum and dnf read repository definitions from
const DefaultReposDir = "/etc/yum.repos.d"

// DefaultHub is the public Fedora COPR build service
const DefaultHub = "copr.fedorainfracloud.org"

// State is the convergence target of a repository definition
type State int

const (
	StateUnknown State = iota
	StateEnabled
	StateDisabled
	StateRemoved
)

// String returns the ensure value of the state, as written in manifests
func (s State) String() string {
	switch s {
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// ParseState converts an ensure value into a State
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enabled":
		return StateEnabled, nil
	case "disabled":
		return StateDisabled, nil
	case "removed":
		return StateRemoved, nil
	default:
		return StateUnknown, fmt.Errorf("invalid ensure value %q (expected enabled, disabled or removed)", s)
	}
}

// Family groups distributions that share repository file conventions
type Family string

const (
	FamilyFedora Family = "fedora"
	FamilyRHEL   Family = "rhel"
)

// Platform describes the host the repository definition is written for
type Platform struct {
	Family Family
	Major  int
}

// String returns e.g. "rhel-7"
func (p Platform) String() string {
	return fmt.Sprintf("%s-%d", p.Family, p.Major)
}

// Validate checks that the platform is one coprctl knows how to manage
func (p Platform) Validate() error {
	switch p.Family {
	case FamilyFedora, FamilyRHEL:
	default:
		return fmt.Errorf("unsupported OS family %q", p.Family)
	}
	if p.Major <= 0 {
		return fmt.Errorf("invalid major version %d for %s", p.Major, p.Family)
	}
	return nil
}

// Legacy reports whether the host uses yum-plugin-copr naming (EL6/EL7).
// Legacy hosts cannot keep a disabled COPR definition on disk.
func (p Platform) Legacy() bool {
	return p.Family == FamilyRHEL && (p.Major == 6 || p.Major == 7)
}

// Chroot returns the COPR chroot path segment with yum variables left unexpanded
func (p Platform) Chroot() string {
	if p.Family == FamilyFedora {
		return "fedora-$releasever-$basearch"
	}
	return "epel-$releasever-$basearch"
}

// Settings contains configuration shared by every reconcile
type Settings struct {
	ReposDir    string `toml:"repos_dir"`
	Hub         string `toml:"hub"`
	DownloadURL string `toml:"download_url"` // defaults to https://download.<hub>
}

// WithDefaults fills unset fields
func (s Settings) WithDefaults() Settings {
	if s.ReposDir == "" {
		s.ReposDir = DefaultReposDir
	}
	if s.Hub == "" {
		s.Hub = DefaultHub
	}
	if s.DownloadURL == "" {
		s.DownloadURL = "https://download." + s.Hub
	}
	s.DownloadURL = strings.TrimRight(s.DownloadURL, "/")
	return s
}
