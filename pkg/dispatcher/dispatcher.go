// Package dispatcher orchestrates match, prepare, and execute for each
// input string. It is the entry point the CLI layer drives.
package dispatcher

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/rrr/pkg/config"
	"github.com/arthur-debert/rrr/pkg/errors"
	"github.com/arthur-debert/rrr/pkg/executor"
	"github.com/arthur-debert/rrr/pkg/logging"
	"github.com/arthur-debert/rrr/pkg/rules"
	"github.com/rs/zerolog"
)

// Options configures a Dispatcher.
type Options struct {
	// Profile selects which profile's rule set matches inputs
	Profile string

	// Fallback walks all matching rules in priority order until one
	// executes successfully, instead of committing to the first match
	Fallback bool

	// Query prints the prepared command instead of executing it
	Query bool

	// DryRun matches and prepares but never executes; under fallback
	// every candidate is prepared and logged
	DryRun bool

	// Runner executes prepared commands; required unless Query or
	// DryRun is set
	Runner executor.Runner

	// Out receives query output; defaults to stdout
	Out io.Writer
}

// Dispatcher matches inputs against one profile's compiled rule set and
// executes (or prints) the selected command. Inputs are processed strictly
// sequentially.
type Dispatcher struct {
	set    *rules.Set
	opts   Options
	logger zerolog.Logger
}

// New creates a dispatcher for the profile named in opts. Fallback needs
// to observe execution failures, so combining it with an exec-mode runner
// (which never returns on success and cannot report failure meaningfully)
// is rejected outright.
func New(ruleset *config.Ruleset, opts Options) (*Dispatcher, error) {
	profile := opts.Profile
	if profile == "" {
		profile = config.DefaultProfile
	}

	set, err := ruleset.Profile(profile)
	if err != nil {
		return nil, err
	}

	if !opts.Query && !opts.DryRun && opts.Runner == nil {
		return nil, errors.New(errors.ErrInvalidInput, "dispatcher requires a runner outside query and dry-run modes")
	}
	if opts.Fallback && opts.Runner != nil && opts.Runner.Mode() == executor.ModeExec {
		return nil, errors.New(errors.ErrInvalidInput, "fallback cannot be combined with exec mode")
	}

	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	return &Dispatcher{
		set:    set,
		opts:   opts,
		logger: logging.GetLogger("dispatcher"),
	}, nil
}

// DispatchAll processes inputs in order. An input nothing matches is a
// logged warning, not an error; any other per-input failure stops the
// batch.
func (d *Dispatcher) DispatchAll(inputs []string) error {
	for _, input := range inputs {
		if err := d.DispatchOne(input); err != nil {
			if errors.IsErrorCode(err, errors.ErrNoMatch) {
				d.logger.Warn().Str("input", input).Msg("No match")
				continue
			}
			return err
		}
	}
	return nil
}

// DispatchOne matches, prepares, and executes a single input under the
// configured policy. Returns an ErrNoMatch error when no rule matches.
func (d *Dispatcher) DispatchOne(input string) error {
	if d.opts.Fallback {
		return d.dispatchWithFallback(input)
	}
	return d.dispatchFirstMatch(input)
}

func (d *Dispatcher) dispatchFirstMatch(input string) error {
	rule := d.set.MatchOne(input)
	if rule == nil {
		return errors.Newf(errors.ErrNoMatch, "no match for '%s'", input)
	}

	_, err := d.processRule(rule, input)
	return err
}

// dispatchWithFallback walks every matching rule in priority order; the
// first successful execution wins, failures are logged and walked past.
func (d *Dispatcher) dispatchWithFallback(input string) error {
	matched := d.set.Matches(input)
	if len(matched) == 0 {
		return errors.Newf(errors.ErrNoMatch, "no match for '%s'", input)
	}

	var lastErr error
	for _, rule := range matched {
		executed, err := d.processRule(rule, input)
		if err == nil {
			if !executed {
				// query or dry-run: show every candidate
				continue
			}
			return nil
		}
		d.logger.Info().
			Err(err).
			Str("input", input).
			Str("pattern", rule.Pattern.Text).
			Msg("Execution failed, continuing with next match")
		lastErr = err
	}

	if lastErr != nil {
		return errors.Wrapf(lastErr, errors.ErrExecFailed,
			"every matching rule failed for '%s'", input)
	}
	return nil
}

// processRule prepares the rule against the input and executes or prints
// it. The boolean reports whether an execution outcome was observed (false
// in query mode).
func (d *Dispatcher) processRule(rule *rules.Rule, input string) (bool, error) {
	d.logger.Debug().
		Str("input", input).
		Str("pattern", rule.Pattern.Text).
		Str("origin", rule.ConfigOrigin.String()).
		Msg("Matched rule")

	invocation, err := rules.Prepare(rule, input)
	if err != nil {
		return false, err
	}

	if d.opts.Query {
		fmt.Fprintln(d.opts.Out, invocation.Command)
		return false, nil
	}

	if d.opts.DryRun {
		d.logger.Info().
			Str("input", input).
			Str("command", invocation.Command).
			Msg("Dry run, not executing")
		return false, nil
	}

	if err := d.opts.Runner.Run(invocation.Command); err != nil {
		return true, err
	}
	return true, nil
}
