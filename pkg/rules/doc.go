// Package rules provides the pattern-based rule model for rrr.
//
// A rule pairs a pattern (glob or regex) with an action (a literal command
// template or a reference to an alias). Rules are accumulated per profile in
// a SetBuilder and compiled into an immutable Set.
//
// # Rule Priority
//
// Within a pattern kind the most recently declared rule wins: the builder
// reverses the declaration order before compiling, so index 0 of each
// compiled sequence is the last declaration. Across kinds, regex rules
// always outrank glob rules.
//
// # Configuration
//
// Rules come from the rrr configuration language:
//
//	pager = "less -R %s"
//
//	*.txt         -> pager
//	/(.+)\.log$/  -> "tail -f %1"
//	*.pdf         -> "zathura"
//
// An action without a %s placeholder has the matched input appended when the
// rule is prepared, so `zathura` above runs as `zathura file.pdf`, with
// shell quoting applied when the input needs it.
package rules
