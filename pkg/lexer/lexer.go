// Package lexer turns rrr configuration text into typed line records.
//
// The loader never sees raw text: every non-blank, non-comment line becomes
// exactly one Line of kind meta, alias, match, or invalid. The grammar is
// line-oriented:
//
//	# comment
//	include ~/.config/rrr.d          meta
//	import /usr/share/applications   meta (capability-gated)
//	profile work                     meta
//	pager = "less -R %s"             alias
//	*.txt -> pager                   match, alias reference
//	*.txt -> "less %s"               match, quoted command
//	/(.+)\.log$/ -> tail -f %1       match, bare command
//
// A match target that is a single unquoted identifier references an alias;
// quote it to mean a one-word literal command.
package lexer

import (
	"os"
	"regexp"
	"strings"

	"github.com/arthur-debert/rrr/pkg/rules"
	"github.com/kballard/go-shellquote"
)

// Kind classifies a configuration line.
type Kind int

const (
	// KindMeta is an include/import/profile directive
	KindMeta Kind = iota
	// KindAlias is an alias declaration (identifier = command)
	KindAlias
	// KindMatch is a match rule (pattern -> target)
	KindMatch
	// KindInvalid is a malformed line; Text and Reason describe it
	KindInvalid
)

// MetaKind classifies a meta directive.
type MetaKind int

const (
	// MetaInclude recursively loads another config file or directory
	MetaInclude MetaKind = iota
	// MetaImport synthesizes rules from desktop-entry files
	MetaImport
	// MetaProfile switches the current profile for subsequent lines
	MetaProfile
)

// Line is one tokenized configuration line with its typed payload.
type Line struct {
	Kind   Kind
	Origin rules.ConfigOrigin

	// meta payload
	Meta   MetaKind
	Target string

	// alias payload: Identifier = Target
	Identifier string

	// match payload: Pattern -> Target (or alias Identifier when
	// TargetIsAlias is set)
	Pattern       rules.Pattern
	TargetIsAlias bool

	// invalid payload
	Text   string
	Reason string
}

// identifierRe is the alias identifier charset
var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// ScanFile reads and tokenizes one configuration file
func ScanFile(path string) ([]Line, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Scan(string(src), path), nil
}

// Scan tokenizes configuration text. name is used for line origins only.
// Scanning never fails: malformed lines come back as KindInvalid so the
// loader can report them with their origin.
func Scan(src, name string) []Line {
	var lines []Line

	for i, raw := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		origin := rules.ConfigOrigin{
			File:   name,
			Line:   i + 1,
			Column: strings.Index(raw, trimmed[:1]) + 1,
		}
		lines = append(lines, scanLine(trimmed, origin))
	}

	return lines
}

func scanLine(text string, origin rules.ConfigOrigin) Line {
	if pattern, target, ok := strings.Cut(text, "->"); ok {
		return scanMatch(strings.TrimSpace(pattern), strings.TrimSpace(target), text, origin)
	}

	// meta directives outrank alias declarations, so an include target may
	// contain '=' (and "include" cannot be used as an alias name)
	field := strings.Fields(text)[0]
	switch field {
	case "include", "import", "profile":
		rest := strings.TrimSpace(strings.TrimPrefix(text, field))
		return scanMeta(field, rest, text, origin)
	}

	if identifier, target, ok := strings.Cut(text, "="); ok {
		return scanAlias(strings.TrimSpace(identifier), strings.TrimSpace(target), text, origin)
	}

	return invalid(text, "not a directive, alias, or match rule", origin)
}

func scanMeta(directive, target, text string, origin rules.ConfigOrigin) Line {
	if target == "" {
		return invalid(text, "missing "+directive+" target", origin)
	}

	unquoted, err := unquote(target)
	if err != nil {
		return invalid(text, "malformed "+directive+" target", origin)
	}

	meta := map[string]MetaKind{
		"include": MetaInclude,
		"import":  MetaImport,
		"profile": MetaProfile,
	}[directive]

	return Line{Kind: KindMeta, Meta: meta, Target: unquoted, Origin: origin}
}

func scanAlias(identifier, target, text string, origin rules.ConfigOrigin) Line {
	if !identifierRe.MatchString(identifier) {
		return invalid(text, "malformed alias identifier", origin)
	}
	if target == "" {
		return invalid(text, "missing alias target", origin)
	}

	unquoted, err := unquote(target)
	if err != nil {
		return invalid(text, "malformed alias target", origin)
	}

	return Line{Kind: KindAlias, Identifier: identifier, Target: unquoted, Origin: origin}
}

func scanMatch(pattern, target, text string, origin rules.ConfigOrigin) Line {
	if pattern == "" {
		return invalid(text, "missing match pattern", origin)
	}
	if target == "" {
		return invalid(text, "missing match target", origin)
	}

	line := Line{
		Kind:    KindMatch,
		Pattern: scanPattern(pattern),
		Origin:  origin,
	}

	switch {
	case isQuoted(target):
		unquoted, err := unquote(target)
		if err != nil {
			return invalid(text, "malformed match target", origin)
		}
		line.Target = unquoted
	case strings.ContainsAny(target, " \t"):
		// bare command with arguments
		line.Target = target
	case identifierRe.MatchString(target):
		line.Target = target
		line.TargetIsAlias = true
	default:
		return invalid(text, "invalid alias reference '"+target+"'", origin)
	}

	return line
}

func invalid(text, reason string, origin rules.ConfigOrigin) Line {
	return Line{Kind: KindInvalid, Text: text, Reason: reason, Origin: origin}
}

// scanPattern distinguishes /regex/ from glob pattern text
func scanPattern(pattern string) rules.Pattern {
	if len(pattern) >= 2 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		return rules.Regex(pattern[1 : len(pattern)-1])
	}
	return rules.Glob(pattern)
}

func isQuoted(s string) bool {
	return len(s) >= 2 && (s[0] == '"' || s[0] == '\'')
}

// unquote strips shell quoting from a target, accepting bare multi-word
// strings as-is. A target that quoting rules split into several words is
// malformed.
func unquote(s string) (string, error) {
	if !isQuoted(s) {
		return s, nil
	}
	parts, err := shellquote.Split(s)
	if err != nil {
		return "", err
	}
	if len(parts) != 1 {
		return "", errMultiWord
	}
	return parts[0], nil
}

type multiWordError struct{}

func (multiWordError) Error() string { return "quoted string contains multiple words" }

var errMultiWord = multiWordError{}
