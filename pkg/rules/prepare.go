package rules

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/rrr/pkg/errors"
	"github.com/kballard/go-shellquote"
)

// Invocation is a ready-to-execute command produced by Prepare. Each call
// allocates a fresh Invocation so the shared Rule stays untouched when the
// same rule matches several inputs.
type Invocation struct {
	Rule    *Rule
	Command string
}

// Prepare substitutes the input and its regex captures into the rule's
// resolved command template:
//
//   - %1, %2, ... are replaced with the rule's capture groups, in order,
//     each shell-quoted (glob rules never produce captures)
//   - %s is replaced with the shell-quoted input; a template without %s
//     gets " %s" appended first, so every command receives the input
//
// The rule must already be known to match the input; a capture failure here
// is an internal error.
func Prepare(rule *Rule, input string) (*Invocation, error) {
	captures, err := captures(rule, input)
	if err != nil {
		return nil, err
	}

	command := rule.Resolved
	for i, capture := range captures {
		tag := fmt.Sprintf("%%%d", i+1)
		command = strings.ReplaceAll(command, tag, shellquote.Join(capture))
	}

	if !strings.Contains(command, "%s") {
		command += " %s"
	}
	command = strings.ReplaceAll(command, "%s", shellquote.Join(input))

	return &Invocation{Rule: rule, Command: command}, nil
}

// captures re-runs the rule's regex against the input to collect the group
// captures, skipping group 0 (the whole match) and omitting groups that did
// not participate in the match.
func captures(rule *Rule, input string) ([]string, error) {
	if rule.Pattern.Kind == PatternGlob {
		return nil, nil
	}

	re, err := compileRegex(rule)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInternal,
			"recompiling matched pattern '%s'", rule.Pattern.Text)
	}

	idx := re.FindStringSubmatchIndex(input)
	if idx == nil {
		return nil, errors.Newf(errors.ErrInternal,
			"rule '%s' should already match '%s' in order to capture", rule.Pattern.Text, input)
	}

	var captured []string
	for group := 1; group*2 < len(idx); group++ {
		start, end := idx[group*2], idx[group*2+1]
		if start < 0 {
			continue
		}
		captured = append(captured, input[start:end])
	}

	return captured, nil
}
