// Package platform maps an os-release file onto the repository conventions
// coprctl knows about.
package platform

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ralt/coprctl/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// DefaultOSReleasePath is the systemd location of os-release
const DefaultOSReleasePath = "/etc/os-release"

var logger = logrus.WithField("component", "platform")

// Distributions that follow RHEL repository conventions
var rhelIDs = map[string]bool{
	"rhel":       true,
	"centos":     true,
	"rocky":      true,
	"almalinux":  true,
	"ol":         true,
	"scientific": true,
	"eurolinux":  true,
	"circle":     true,
	"navylinux":  true,
}

// OSRelease holds the os-release fields used for detection
type OSRelease struct {
	ID        string
	IDLike    []string
	VersionID string
}

// ParseOSRelease parses os-release content
func ParseOSRelease(data []byte) (*OSRelease, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:       true,
		UnescapeValueDoubleQuotes: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse os-release: %w", err)
	}

	sec := cfg.Section(ini.DefaultSection)
	return &OSRelease{
		ID:        strings.ToLower(sec.Key("ID").String()),
		IDLike:    strings.Fields(strings.ToLower(sec.Key("ID_LIKE").String())),
		VersionID: sec.Key("VERSION_ID").String(),
	}, nil
}

// Platform converts the os-release fields into a Platform
func (r *OSRelease) Platform() (models.Platform, error) {
	family, ok := r.family()
	if !ok {
		return models.Platform{}, &models.CoprError{
			Type: models.ErrUnsupportedPlatform,
			Err:  fmt.Errorf("unsupported distribution %q (ID_LIKE %q)", r.ID, strings.Join(r.IDLike, " ")),
		}
	}

	major, err := majorVersion(r.VersionID)
	if err != nil {
		return models.Platform{}, &models.CoprError{
			Type: models.ErrUnsupportedPlatform,
			Err:  err,
		}
	}

	return models.Platform{Family: family, Major: major}, nil
}

func (r *OSRelease) family() (models.Family, bool) {
	if r.ID == "fedora" {
		return models.FamilyFedora, true
	}
	if rhelIDs[r.ID] {
		return models.FamilyRHEL, true
	}
	for _, like := range r.IDLike {
		if like == "rhel" || like == "centos" {
			return models.FamilyRHEL, true
		}
	}
	return "", false
}

func majorVersion(versionID string) (int, error) {
	major, _, _ := strings.Cut(versionID, ".")
	n, err := strconv.Atoi(major)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid VERSION_ID %q", versionID)
	}
	return n, nil
}

// Detect reads the os-release file at path and returns the host platform
func Detect(path string) (models.Platform, error) {
	if path == "" {
		path = DefaultOSReleasePath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.Platform{}, &models.CoprError{
			Type: models.ErrFileOp,
			Err:  fmt.Errorf("failed to read %s: %w", path, err),
		}
	}

	rel, err := ParseOSRelease(data)
	if err != nil {
		return models.Platform{}, &models.CoprError{
			Type: models.ErrUnsupportedPlatform,
			Err:  err,
		}
	}

	p, err := rel.Platform()
	if err != nil {
		return models.Platform{}, err
	}

	logger.Debugf("Detected platform %s from %s", p, path)
	return p, nil
}

// Resolve returns the platform given by family and major, falling back to
// detection from osReleasePath when family is empty
func Resolve(family string, major int, osReleasePath string) (models.Platform, error) {
	if family == "" {
		return Detect(osReleasePath)
	}

	p := models.Platform{Family: models.Family(strings.ToLower(family)), Major: major}
	if err := p.Validate(); err != nil {
		return models.Platform{}, &models.CoprError{
			Type: models.ErrUnsupportedPlatform,
			Err:  err,
		}
	}
	return p, nil
}
