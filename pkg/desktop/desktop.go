// Package desktop reads the two attributes rrr needs from freedesktop
// desktop-entry files: the Exec command line and the MimeType list.
package desktop

import (
	"strings"

	"github.com/arthur-debert/rrr/pkg/errors"
	"gopkg.in/ini.v1"
)

const sectionName = "Desktop Entry"

// Entry holds the attributes consumed by the import machinery.
type Entry struct {
	// Exec is the command line with %f/%F/%u/%U already normalized to %s
	Exec string
	// MimeTypes is the split, empty-entry-free MimeType list
	MimeTypes []string
}

// ParseFile reads a desktop-entry file and extracts Exec and MimeType from
// its "Desktop Entry" section. When ignoreMissing is true a file without one
// of the attributes yields (nil, nil) so callers can skip it; otherwise a
// missing attribute is an error.
func ParseFile(path string, ignoreMissing bool) (*Entry, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrImportAttr, "reading desktop entry '%s'", path)
	}

	section, err := file.GetSection(sectionName)
	if err != nil {
		return nil, errors.Newf(errors.ErrImportAttr, "missing '%s' section in '%s'", sectionName, path)
	}

	exec, err := attr(section, "Exec", path, ignoreMissing)
	if err != nil || exec == "" {
		return nil, err
	}

	mimeTypes, err := attr(section, "MimeType", path, ignoreMissing)
	if err != nil || mimeTypes == "" {
		return nil, err
	}

	entry := &Entry{Exec: normalizeExec(exec)}
	for _, mt := range strings.Split(mimeTypes, ";") {
		if mt = strings.TrimSpace(mt); mt != "" {
			entry.MimeTypes = append(entry.MimeTypes, mt)
		}
	}

	return entry, nil
}

func attr(section *ini.Section, name, path string, ignoreMissing bool) (string, error) {
	if !section.HasKey(name) {
		if ignoreMissing {
			return "", nil
		}
		return "", errors.Newf(errors.ErrImportAttr, "missing '%s' attribute in '%s'", name, path)
	}
	return section.Key(name).String(), nil
}

// normalizeExec rewrites the desktop-entry field codes into the single
// generic input placeholder the rule engine understands. File and URL
// placeholders become %s; the decorative codes are dropped.
func normalizeExec(exec string) string {
	replacer := strings.NewReplacer(
		"%f", "%s",
		"%F", "%s",
		"%u", "%s",
		"%U", "%s",
		"%i", "",
		"%c", "",
		"%k", "",
	)
	return strings.TrimSpace(replacer.Replace(exec))
}
