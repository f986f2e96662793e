package rules

import "fmt"

// PatternKind discriminates the two pattern flavors a rule can carry.
type PatternKind int

const (
	// PatternGlob matches with shell-style glob syntax (*.txt)
	PatternGlob PatternKind = iota
	// PatternRegex matches with a regular expression
	PatternRegex
)

// Pattern is the raw, uncompiled source of a rule's pattern.
// Compilation happens once, when the owning builder is built.
type Pattern struct {
	Kind PatternKind
	Text string
}

// Glob creates a glob pattern from its raw source text
func Glob(text string) Pattern {
	return Pattern{Kind: PatternGlob, Text: text}
}

// Regex creates a regex pattern from its raw source text
func Regex(text string) Pattern {
	return Pattern{Kind: PatternRegex, Text: text}
}

// String returns the raw pattern text regardless of kind
func (p Pattern) String() string {
	return p.Text
}

// ActionKind discriminates a literal command from an alias reference.
type ActionKind int

const (
	// ActionCommand is a literal shell-command template
	ActionCommand ActionKind = iota
	// ActionAliasRef references an alias resolved at build time
	ActionAliasRef
)

// Action is what a rule does when it matches: either a command template
// or a forward reference to an alias defined in the same profile.
type Action struct {
	Kind ActionKind
	Text string
}

// Command creates a literal command action
func Command(text string) Action {
	return Action{Kind: ActionCommand, Text: text}
}

// AliasRef creates an alias-reference action
func AliasRef(identifier string) Action {
	return Action{Kind: ActionAliasRef, Text: identifier}
}

// ConfigOrigin records where in the configuration a declaration appeared.
// It only ever shows up in error messages and logs.
type ConfigOrigin struct {
	File   string
	Line   int
	Column int
}

// String formats the origin as file:line:column
func (o ConfigOrigin) String() string {
	return fmt.Sprintf("%s:%d:%d", o.File, o.Line, o.Column)
}

// OriginKind discriminates how a rule came to exist.
type OriginKind int

const (
	// OriginConfig marks a rule declared directly in a config file
	OriginConfig OriginKind = iota
	// OriginAlias marks a rule whose action references an alias
	OriginAlias
	// OriginImported marks a rule synthesized from a desktop-entry import
	OriginImported
)

// RuleOrigin is diagnostic provenance: Source holds the alias identifier
// for OriginAlias and the imported file path for OriginImported.
type RuleOrigin struct {
	Kind   OriginKind
	Source string
}

// Rule is the unit of matching and dispatch: a pattern, an action, and
// provenance. Resolved is the concrete command template derived from the
// action; it is written exactly once during Build and never rewritten.
// Prepared commands are not cached on the rule: Prepare returns a fresh
// Invocation per call, so rules stay shared and read-only after Build.
type Rule struct {
	Pattern         Pattern
	Action          Action
	CaseInsensitive bool
	Origin          RuleOrigin
	ConfigOrigin    ConfigOrigin

	Resolved string
}
