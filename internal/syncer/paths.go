package syncer

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Child identifies one ward whose activity feed is synchronized.
type Child struct {
	ObjectID  string
	FirstName string
	LastName  string
}

// DisplayName is the child's name as shown by the service.
func (c Child) DisplayName() string {
	return c.FirstName + " " + c.LastName
}

// DirName returns the destination directory name for the child: the
// display name with path-hostile characters replaced, or the object id
// when nothing displayable remains.
func (c Child) DirName() string {
	name := sanitizeName(c.DisplayName())
	if name == "" {
		return c.ObjectID
	}
	return name
}

// sanitizeName normalizes a display name for use as a directory name.
// The name is NFC-normalized; path separators, characters reserved on
// common filesystems, and control bytes become underscores; leading and
// trailing dots and spaces are trimmed.
func sanitizeName(name string) string {
	name = norm.NFC.String(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('_')
		case unicode.IsControl(r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), ". ")
}

// MediaPath returns the deterministic destination path for one media
// asset: root/<child dir>/YYYY-MM/YYYY-MM-DD-HHMMSS-<object id>.<ext>.
// The activity timestamp is rendered in UTC, so the same activity always
// maps to the same path regardless of the local time zone.
func MediaPath(root string, child Child, createdAt time.Time, objectID, ext string) string {
	ts := createdAt.UTC()
	return filepath.Join(
		root,
		child.DirName(),
		ts.Format("2006-01"),
		ts.Format("2006-01-02-150405")+"-"+objectID+"."+ext,
	)
}
