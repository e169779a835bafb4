package copr

import (
	"fmt"
	"regexp"

	"github.com/ralt/coprctl/internal/models"
)

var identifierPattern = regexp.MustCompile(`^(@?)([A-Za-z0-9][A-Za-z0-9._+-]*)/([A-Za-z0-9][A-Za-z0-9._+-]*)$`)

// Identifier names a COPR project, either owner/project or @group/project
type Identifier struct {
	Owner   string
	Project string
	Group   bool
}

// ParseIdentifier validates and splits a COPR project identifier
func ParseIdentifier(id string) (Identifier, error) {
	m := identifierPattern.FindStringSubmatch(id)
	if m == nil {
		return Identifier{}, &models.CoprError{
			Type:       models.ErrInvalidIdentifier,
			Repository: id,
			Err:        fmt.Errorf("expected <owner>/<project> or @<group>/<project>"),
		}
	}
	return Identifier{
		Owner:   m[2],
		Project: m[3],
		Group:   m[1] == "@",
	}, nil
}

// String returns the identifier as written by users
func (i Identifier) String() string {
	return i.URLOwner() + "/" + i.Project
}

// URLOwner is the owner path segment used by the COPR download server
func (i Identifier) URLOwner() string {
	if i.Group {
		return "@" + i.Owner
	}
	return i.Owner
}

// RepoOwner is the owner as it appears in repository ids and file names
func (i Identifier) RepoOwner() string {
	if i.Group {
		return "group_" + i.Owner
	}
	return i.Owner
}
