package rules

import (
	"regexp"
	"strings"

	"github.com/arthur-debert/rrr/pkg/desktop"
	"github.com/arthur-debert/rrr/pkg/errors"
	"github.com/arthur-debert/rrr/pkg/logging"
	"github.com/arthur-debert/rrr/pkg/mimereg"
	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
)

// SetBuilder accumulates the aliases and rules of one profile in
// declaration order and compiles them into an immutable Set.
type SetBuilder struct {
	profile         string
	caseInsensitive bool

	aliases map[string]string

	regexRules []*Rule
	globRules  []*Rule

	logger zerolog.Logger
}

// NewSetBuilder creates a builder for the named profile. The case flag
// applies uniformly to every pattern the profile accumulates.
func NewSetBuilder(profile string, caseInsensitive bool) *SetBuilder {
	return &SetBuilder{
		profile:         profile,
		caseInsensitive: caseInsensitive,
		aliases:         make(map[string]string),
		logger:          logging.GetLogger("rules.builder"),
	}
}

// Profile returns the name of the profile this builder accumulates
func (b *SetBuilder) Profile() string {
	return b.profile
}

// Alias records an alias for later resolution. Redeclaring an identifier
// overwrites the earlier command (last-write-wins).
func (b *SetBuilder) Alias(identifier, command string) {
	if _, exists := b.aliases[identifier]; exists {
		b.logger.Debug().
			Str("profile", b.profile).
			Str("alias", identifier).
			Msg("Alias redeclared, overwriting")
	}
	b.aliases[identifier] = command
}

// AddRule appends a rule declared in a config file. Alias references stay
// unresolved until Build so an alias may be declared after its first use.
func (b *SetBuilder) AddRule(origin ConfigOrigin, pattern Pattern, action Action) {
	ruleOrigin := RuleOrigin{Kind: OriginConfig}
	if action.Kind == ActionAliasRef {
		ruleOrigin = RuleOrigin{Kind: OriginAlias, Source: action.Text}
	}

	b.append(&Rule{
		Pattern:         pattern,
		Action:          action,
		CaseInsensitive: b.caseInsensitive,
		Origin:          ruleOrigin,
		ConfigOrigin:    origin,
	})
}

// ImportDesktop synthesizes one glob rule per extension registered for each
// of the entry's MIME types. A nil entry (tolerated missing attributes) is
// a no-op.
func (b *SetBuilder) ImportDesktop(origin ConfigOrigin, path string, entry *desktop.Entry, reg mimereg.Registry) {
	if entry == nil {
		return
	}

	for _, mimeType := range entry.MimeTypes {
		for _, ext := range reg.Extensions(mimeType) {
			b.append(&Rule{
				Pattern:         Glob("*." + ext),
				Action:          Command(entry.Exec),
				CaseInsensitive: b.caseInsensitive,
				Origin:          RuleOrigin{Kind: OriginImported, Source: path},
				ConfigOrigin:    origin,
			})
		}
	}
}

func (b *SetBuilder) append(rule *Rule) {
	switch rule.Pattern.Kind {
	case PatternRegex:
		b.regexRules = append(b.regexRules, rule)
	case PatternGlob:
		b.globRules = append(b.globRules, rule)
	}
}

// Build resolves every rule's action and compiles both pattern indexes.
// Any unresolvable alias or uncompilable pattern aborts the build; no
// partial rule set is ever produced.
func (b *SetBuilder) Build() (*Set, error) {
	if err := b.resolve(b.regexRules); err != nil {
		return nil, err
	}
	if err := b.resolve(b.globRules); err != nil {
		return nil, err
	}

	// Reverse both sequences so index order is match priority:
	// last declared, first matched.
	reverse(b.regexRules)
	reverse(b.globRules)

	regexps := make([]*regexp.Regexp, len(b.regexRules))
	for i, rule := range b.regexRules {
		re, err := compileRegex(rule)
		if err != nil {
			return nil, err
		}
		regexps[i] = re
	}

	globs := make([]glob.Glob, len(b.globRules))
	for i, rule := range b.globRules {
		g, err := compileGlob(rule)
		if err != nil {
			return nil, err
		}
		globs[i] = g
	}

	b.logger.Debug().
		Str("profile", b.profile).
		Int("regexRules", len(b.regexRules)).
		Int("globRules", len(b.globRules)).
		Msg("Compiled rule set")

	return &Set{
		profile:         b.profile,
		caseInsensitive: b.caseInsensitive,
		regexRules:      b.regexRules,
		globRules:       b.globRules,
		regexps:         regexps,
		globs:           globs,
	}, nil
}

// resolve turns each rule's action into its concrete command template.
// Resolved is written exactly once, here.
func (b *SetBuilder) resolve(rules []*Rule) error {
	for _, rule := range rules {
		switch rule.Action.Kind {
		case ActionCommand:
			rule.Resolved = rule.Action.Text
		case ActionAliasRef:
			command, ok := b.aliases[rule.Action.Text]
			if !ok {
				return errors.Newf(errors.ErrAliasUnresolved,
					"alias '%s' does not exist in profile '%s'", rule.Action.Text, b.profile).
					WithDetail("origin", rule.ConfigOrigin.String())
			}
			rule.Resolved = command
		}
	}
	return nil
}

func compileRegex(rule *Rule) (*regexp.Regexp, error) {
	pattern := rule.Pattern.Text
	if rule.CaseInsensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPatternCompile,
			"compiling regex pattern '%s' (%s)", rule.Pattern.Text, rule.ConfigOrigin)
	}
	return re, nil
}

// compileGlob builds a gobwas matcher. The library has no case flag, so
// case-insensitive profiles compile a lower-cased pattern and lower-case
// the input at match time.
func compileGlob(rule *Rule) (glob.Glob, error) {
	pattern := rule.Pattern.Text
	if rule.CaseInsensitive {
		pattern = strings.ToLower(pattern)
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPatternCompile,
			"compiling glob pattern '%s' (%s)", rule.Pattern.Text, rule.ConfigOrigin)
	}
	return g, nil
}

func reverse(rules []*Rule) {
	for i, j := 0, len(rules)-1; i < j; i, j = i+1, j-1 {
		rules[i], rules[j] = rules[j], rules[i]
	}
}
