// Package config loads rrr configuration files into per-profile rule
// builders and compiles them into a Ruleset.
//
// Loading is recursive: include directives pull in files or whole
// directories, import directives (when enabled) synthesize rules from
// desktop-entry files, and profile directives move a single global cursor
// over the full recursive load order. A profile switch inside an included
// file therefore stays in effect in the including file after the include
// returns.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/rrr/pkg/desktop"
	"github.com/arthur-debert/rrr/pkg/errors"
	"github.com/arthur-debert/rrr/pkg/lexer"
	"github.com/arthur-debert/rrr/pkg/logging"
	"github.com/arthur-debert/rrr/pkg/mimereg"
	"github.com/arthur-debert/rrr/pkg/rules"
	"github.com/rs/zerolog"
)

// DefaultProfile always exists and receives top-level declarations
const DefaultProfile = "default"

// Options configures a Loader.
type Options struct {
	// CaseInsensitive applies to every pattern in every profile
	CaseInsensitive bool

	// OnlyProfiles restricts loading to the named profiles. Lines
	// targeting other profiles are still parsed, so profile-switch
	// bookkeeping stays correct, but their content is discarded.
	// Nil loads everything.
	OnlyProfiles []string

	// EnableImport allows import directives; without it they fail
	EnableImport bool

	// StrictImport fails on desktop entries missing Exec or MimeType
	// instead of skipping them
	StrictImport bool

	// Registry overrides the MIME registry used by imports
	Registry mimereg.Registry
}

// Loader accumulates configuration across recursive loads. It is not safe
// for concurrent use; load everything, then Build.
type Loader struct {
	opts     Options
	registry mimereg.Registry

	visited  map[string]bool
	builders map[string]*rules.SetBuilder
	current  string

	logger zerolog.Logger
}

// NewLoader creates a loader with the default profile pre-created and the
// profile cursor pointing at it.
func NewLoader(opts Options) *Loader {
	registry := opts.Registry
	if registry == nil {
		registry = mimereg.New()
	}

	return &Loader{
		opts:     opts,
		registry: registry,
		visited:  make(map[string]bool),
		builders: map[string]*rules.SetBuilder{
			DefaultProfile: rules.NewSetBuilder(DefaultProfile, opts.CaseInsensitive),
		},
		current: DefaultProfile,
		logger:  logging.GetLogger("config.loader"),
	}
}

// Load reads one configuration file, following includes and imports.
// Loading a file already seen (by canonical path) is a silent no-op, which
// also breaks include cycles.
func (l *Loader) Load(path string) error {
	canonical, err := canonicalize(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "resolving config path '%s'", path)
	}

	if l.visited[canonical] {
		l.logger.Debug().Str("path", canonical).Msg("Config already loaded, skipping")
		return nil
	}
	l.visited[canonical] = true

	lines, err := lexer.ScanFile(canonical)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "reading config file '%s'", canonical)
	}

	l.logger.Debug().Str("path", canonical).Int("lines", len(lines)).Msg("Loading config")

	for _, line := range lines {
		if err := l.apply(line); err != nil {
			return err
		}
	}

	return nil
}

// Build compiles every profile's accumulated rules. Any profile failing to
// resolve or compile aborts the whole build.
func (l *Loader) Build() (*Ruleset, error) {
	profiles := make(map[string]*rules.Set, len(l.builders))
	for name, builder := range l.builders {
		set, err := builder.Build()
		if err != nil {
			return nil, err
		}
		profiles[name] = set
	}
	return &Ruleset{profiles: profiles}, nil
}

func (l *Loader) apply(line lexer.Line) error {
	switch line.Kind {
	case lexer.KindMeta:
		return l.applyMeta(line)

	case lexer.KindAlias:
		if !l.loadable() {
			return nil
		}
		l.builders[l.current].Alias(line.Identifier, line.Target)
		return nil

	case lexer.KindMatch:
		if !l.loadable() {
			return nil
		}
		action := rules.Command(line.Target)
		if line.TargetIsAlias {
			action = rules.AliasRef(line.Target)
		}
		l.builders[l.current].AddRule(line.Origin, line.Pattern, action)
		return nil

	case lexer.KindInvalid:
		return errors.Newf(errors.ErrConfigSyntax,
			"invalid line '%s' at %s: %s", line.Text, line.Origin, line.Reason)
	}

	return errors.Newf(errors.ErrInternal, "unhandled line kind %d", line.Kind)
}

func (l *Loader) applyMeta(line lexer.Line) error {
	switch line.Meta {
	case lexer.MetaProfile:
		l.switchProfile(line.Target)
		return nil

	case lexer.MetaInclude:
		return l.include(expand(line.Target), line.Origin)

	case lexer.MetaImport:
		if !l.opts.EnableImport {
			return errors.Newf(errors.ErrImportDisabled,
				"import directive at %s requires the import capability", line.Origin)
		}
		if !l.loadable() {
			return nil
		}
		return l.importPath(expand(line.Target), line.Origin)
	}

	return errors.Newf(errors.ErrInternal, "unhandled meta kind %d", line.Meta)
}

// switchProfile moves the global profile cursor, creating the profile's
// builder on first reference. The cursor is deliberately not restored when
// a recursive include returns.
func (l *Loader) switchProfile(name string) {
	if _, exists := l.builders[name]; !exists {
		l.builders[name] = rules.NewSetBuilder(name, l.opts.CaseInsensitive)
	}
	l.current = name
	l.logger.Debug().Str("profile", name).Msg("Switched profile")
}

// include loads a file, or every entry under a directory depth-first.
// Unreadable directory entries are skipped; an unreadable top-level target
// is an error.
func (l *Loader) include(path string, origin rules.ConfigOrigin) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "including '%s' (%s)", path, origin)
	}

	if !info.IsDir() {
		return l.Load(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		l.logger.Debug().Err(err).Str("path", path).Msg("Cannot read include directory, skipping")
		return nil
	}
	for _, entry := range entries {
		child := filepath.Join(path, entry.Name())
		if err := l.include(child, origin); err != nil {
			return err
		}
	}

	return nil
}

// importPath turns a desktop-entry file, or every one under a directory,
// into synthesized rules for the current profile. Files without the
// .desktop suffix are ignored.
func (l *Loader) importPath(path string, origin rules.ConfigOrigin) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "importing '%s' (%s)", path, origin)
	}

	if info.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			l.logger.Debug().Err(err).Str("path", path).Msg("Cannot read import directory, skipping")
			return nil
		}
		for _, entry := range entries {
			if err := l.importPath(filepath.Join(path, entry.Name()), origin); err != nil {
				return err
			}
		}
		return nil
	}

	if filepath.Ext(path) != ".desktop" {
		return nil
	}

	entry, err := desktop.ParseFile(path, !l.opts.StrictImport)
	if err != nil {
		return errors.Wrapf(err, errors.ErrImportAttr, "importing '%s' (%s)", path, origin)
	}

	l.builders[l.current].ImportDesktop(origin, path, entry, l.registry)
	return nil
}

// loadable reports whether the current profile passes the allow-list
func (l *Loader) loadable() bool {
	if l.opts.OnlyProfiles == nil {
		return true
	}
	for _, name := range l.opts.OnlyProfiles {
		if name == l.current {
			return true
		}
	}
	return false
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// expand resolves a leading tilde and environment variables in include and
// import targets.
func expand(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + strings.TrimPrefix(path, "~")
		}
	}
	return os.ExpandEnv(path)
}
