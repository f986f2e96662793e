package rules_test

import (
	"testing"

	"github.com/arthur-debert/rrr/pkg/desktop"
	"github.com/arthur-debert/rrr/pkg/errors"
	"github.com/arthur-debert/rrr/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOrigin = rules.ConfigOrigin{File: "test.conf", Line: 1, Column: 1}

func TestBuildResolvesActions(t *testing.T) {
	t.Run("literal_command", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		b.AddRule(testOrigin, rules.Glob("*.txt"), rules.Command("less %s"))

		set, err := b.Build()
		require.NoError(t, err)

		rule := set.MatchOne("notes.txt")
		require.NotNil(t, rule)
		assert.Equal(t, "less %s", rule.Resolved)
		assert.Equal(t, rules.OriginConfig, rule.Origin.Kind)
	})

	t.Run("alias_indirection", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		b.Alias("pager", "foo %s")
		b.AddRule(testOrigin, rules.Glob("*.txt"), rules.AliasRef("pager"))

		set, err := b.Build()
		require.NoError(t, err)

		rule := set.MatchOne("notes.txt")
		require.NotNil(t, rule)
		assert.Equal(t, "foo %s", rule.Resolved)
		assert.Equal(t, rules.OriginAlias, rule.Origin.Kind)
		assert.Equal(t, "pager", rule.Origin.Source)
	})

	t.Run("alias_declared_after_use", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		b.AddRule(testOrigin, rules.Glob("*.txt"), rules.AliasRef("pager"))
		b.Alias("pager", "less %s")

		set, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, "less %s", set.MatchOne("notes.txt").Resolved)
	})

	t.Run("alias_last_write_wins", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		b.Alias("pager", "more %s")
		b.Alias("pager", "less %s")
		b.AddRule(testOrigin, rules.Glob("*.txt"), rules.AliasRef("pager"))

		set, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, "less %s", set.MatchOne("notes.txt").Resolved)
	})

	t.Run("unresolved_alias_aborts_build", func(t *testing.T) {
		b := rules.NewSetBuilder("work", false)
		b.AddRule(testOrigin, rules.Glob("*.txt"), rules.AliasRef("missing"))

		set, err := b.Build()
		require.Error(t, err)
		assert.Nil(t, set)
		assert.True(t, errors.IsErrorCode(err, errors.ErrAliasUnresolved))
		assert.Contains(t, err.Error(), "missing")
		assert.Contains(t, err.Error(), "work")
	})
}

func TestBuildCompileErrors(t *testing.T) {
	t.Run("invalid_regex", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		b.AddRule(testOrigin, rules.Regex("(unclosed"), rules.Command("cat"))

		_, err := b.Build()
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrPatternCompile))
	})

	t.Run("invalid_glob", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		b.AddRule(testOrigin, rules.Glob("[unclosed"), rules.Command("cat"))

		_, err := b.Build()
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrPatternCompile))
	})
}

func TestMatchPriority(t *testing.T) {
	t.Run("last_declared_wins_glob", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		b.AddRule(testOrigin, rules.Glob("*.txt"), rules.Command("first"))
		b.AddRule(testOrigin, rules.Glob("*.txt"), rules.Command("second"))

		set, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, "second", set.MatchOne("a.txt").Resolved)
	})

	t.Run("last_declared_wins_regex", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		b.AddRule(testOrigin, rules.Regex(`\.txt$`), rules.Command("first"))
		b.AddRule(testOrigin, rules.Regex(`txt$`), rules.Command("second"))

		set, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, "second", set.MatchOne("a.txt").Resolved)
	})

	t.Run("regex_beats_glob", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		b.AddRule(testOrigin, rules.Regex(`\.txt$`), rules.Command("from-regex"))
		b.AddRule(testOrigin, rules.Glob("*.txt"), rules.Command("from-glob"))

		set, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, "from-regex", set.MatchOne("a.txt").Resolved)
	})

	t.Run("glob_used_when_no_regex_matches", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		b.AddRule(testOrigin, rules.Regex(`\.log$`), rules.Command("from-regex"))
		b.AddRule(testOrigin, rules.Glob("*.txt"), rules.Command("from-glob"))

		set, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, "from-glob", set.MatchOne("a.txt").Resolved)
	})

	t.Run("no_match_returns_nil", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		b.AddRule(testOrigin, rules.Glob("*.txt"), rules.Command("cat"))

		set, err := b.Build()
		require.NoError(t, err)
		assert.Nil(t, set.MatchOne("a.pdf"))
	})

	t.Run("match_one_is_deterministic", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		b.AddRule(testOrigin, rules.Glob("*.txt"), rules.Command("one"))
		b.AddRule(testOrigin, rules.Glob("a.*"), rules.Command("two"))

		set, err := b.Build()
		require.NoError(t, err)

		first := set.MatchOne("a.txt")
		for i := 0; i < 10; i++ {
			assert.Same(t, first, set.MatchOne("a.txt"))
		}
	})
}

func TestMatches(t *testing.T) {
	b := rules.NewSetBuilder("default", false)
	b.AddRule(testOrigin, rules.Glob("*.txt"), rules.Command("glob-old"))
	b.AddRule(testOrigin, rules.Regex(`\.txt$`), rules.Command("regex-old"))
	b.AddRule(testOrigin, rules.Glob("a.*"), rules.Command("glob-new"))
	b.AddRule(testOrigin, rules.Regex(`^a`), rules.Command("regex-new"))

	set, err := b.Build()
	require.NoError(t, err)

	t.Run("regex_block_precedes_glob_block", func(t *testing.T) {
		matched := set.Matches("a.txt")
		require.Len(t, matched, 4)
		assert.Equal(t, "regex-new", matched[0].Resolved)
		assert.Equal(t, "regex-old", matched[1].Resolved)
		assert.Equal(t, "glob-new", matched[2].Resolved)
		assert.Equal(t, "glob-old", matched[3].Resolved)
	})

	t.Run("empty_for_no_match", func(t *testing.T) {
		assert.Empty(t, set.Matches("zzz.pdf"))
	})
}

func TestCaseSensitivity(t *testing.T) {
	t.Run("insensitive_glob", func(t *testing.T) {
		b := rules.NewSetBuilder("default", true)
		b.AddRule(testOrigin, rules.Glob("*.TXT"), rules.Command("cat"))

		set, err := b.Build()
		require.NoError(t, err)
		assert.NotNil(t, set.MatchOne("a.txt"))
		assert.NotNil(t, set.MatchOne("A.TXT"))
	})

	t.Run("insensitive_regex", func(t *testing.T) {
		b := rules.NewSetBuilder("default", true)
		b.AddRule(testOrigin, rules.Regex(`\.TXT$`), rules.Command("cat"))

		set, err := b.Build()
		require.NoError(t, err)
		assert.NotNil(t, set.MatchOne("a.txt"))
	})

	t.Run("sensitive_glob", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		b.AddRule(testOrigin, rules.Glob("*.TXT"), rules.Command("cat"))

		set, err := b.Build()
		require.NoError(t, err)
		assert.Nil(t, set.MatchOne("a.txt"))
		assert.NotNil(t, set.MatchOne("a.TXT"))
	})
}

type fakeRegistry map[string][]string

func (r fakeRegistry) Extensions(mimeType string) []string {
	return r[mimeType]
}

func TestImportDesktop(t *testing.T) {
	t.Run("synthesizes_glob_rules", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		entry := &desktop.Entry{
			Exec:      "imv %s",
			MimeTypes: []string{"image/png", "image/jpeg"},
		}
		reg := fakeRegistry{
			"image/png":  {"png"},
			"image/jpeg": {"jpg", "jpeg"},
		}

		b.ImportDesktop(testOrigin, "/usr/share/applications/imv.desktop", entry, reg)

		set, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, 3, set.Len())

		rule := set.MatchOne("shot.png")
		require.NotNil(t, rule)
		assert.Equal(t, "imv %s", rule.Resolved)
		assert.Equal(t, rules.OriginImported, rule.Origin.Kind)
		assert.Equal(t, "/usr/share/applications/imv.desktop", rule.Origin.Source)

		assert.NotNil(t, set.MatchOne("photo.jpeg"))
	})

	t.Run("nil_entry_is_noop", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		b.ImportDesktop(testOrigin, "/tmp/x.desktop", nil, fakeRegistry{})

		set, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, 0, set.Len())
	})

	t.Run("unknown_mime_type_adds_nothing", func(t *testing.T) {
		b := rules.NewSetBuilder("default", false)
		entry := &desktop.Entry{Exec: "x %s", MimeTypes: []string{"application/x-unknown"}}
		b.ImportDesktop(testOrigin, "/tmp/x.desktop", entry, fakeRegistry{})

		set, err := b.Build()
		require.NoError(t, err)
		assert.Equal(t, 0, set.Len())
	})
}
