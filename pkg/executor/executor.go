// Package executor is the process execution boundary: it runs a prepared
// command string through a shell in one of three modes.
//
// ModeExec replaces the current process image and never returns on
// success. ModeFork spawns a child and returns immediately without
// waiting. ModeWait spawns a child, waits, and treats a non-zero exit as a
// failure; it is the mode that makes fallback dispatch meaningful.
package executor

import (
	"os"
	"os/exec"

	"github.com/arthur-debert/rrr/pkg/errors"
	"github.com/arthur-debert/rrr/pkg/logging"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// Mode selects how a command is executed.
type Mode int

const (
	// ModeExec replaces the current process (never returns on success)
	ModeExec Mode = iota
	// ModeFork spawns a child and does not wait for it
	ModeFork
	// ModeWait spawns a child, waits, and checks its exit status
	ModeWait
)

// String returns the mode name as used in logs
func (m Mode) String() string {
	switch m {
	case ModeExec:
		return "exec"
	case ModeFork:
		return "fork"
	case ModeWait:
		return "wait"
	default:
		return "unknown"
	}
}

// defaultShell runs the command string through a POSIX shell
var defaultShell = []string{"sh", "-c"}

// Runner runs one prepared command. The dispatcher depends on this
// interface so tests can substitute a fake.
type Runner interface {
	Run(command string) error
	Mode() Mode
}

// Options contains configuration for the executor
type Options struct {
	Mode Mode

	// Shell overrides the command vector the prepared string is appended
	// to; empty means sh -c
	Shell []string

	// DryRun logs instead of executing
	DryRun bool

	Logger zerolog.Logger
}

// Executor runs prepared commands through a shell
type Executor struct {
	mode   Mode
	shell  []string
	dryRun bool
	logger zerolog.Logger
}

// New creates an executor. A custom shell must have at least one element.
func New(opts Options) (*Executor, error) {
	shell := opts.Shell
	if shell == nil {
		shell = defaultShell
	}
	if len(shell) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "provided shell should have at least one argument")
	}

	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("executor")
	}

	return &Executor{
		mode:   opts.Mode,
		shell:  shell,
		dryRun: opts.DryRun,
		logger: logger,
	}, nil
}

// Mode returns the executor's execution mode
func (e *Executor) Mode() Mode {
	return e.mode
}

// Run executes one prepared command string. In ModeExec a successful run
// never returns; in ModeFork the child's outcome is not observed; in
// ModeWait a non-zero or aborted exit is an ErrExecFailed.
func (e *Executor) Run(command string) error {
	argv := append(append([]string(nil), e.shell...), command)

	e.logger.Info().
		Str("mode", e.mode.String()).
		Str("command", command).
		Bool("dryRun", e.dryRun).
		Msg("Executing command")

	if e.dryRun {
		return nil
	}

	switch e.mode {
	case ModeExec:
		return e.exec(argv)
	case ModeFork:
		return e.fork(argv)
	case ModeWait:
		return e.wait(argv)
	}

	return errors.Newf(errors.ErrInternal, "unhandled execution mode %d", e.mode)
}

func (e *Executor) exec(argv []string) error {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return errors.Wrapf(err, errors.ErrExecFailed, "locating shell '%s'", argv[0])
	}
	// replaces the process image; reached only on failure
	err = unix.Exec(path, argv, os.Environ())
	return errors.Wrapf(err, errors.ErrExecFailed, "replacing process with '%s'", argv[0])
}

func (e *Executor) fork(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, errors.ErrExecFailed, "spawning '%s'", argv[0])
	}
	return nil
}

func (e *Executor) wait(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		wrapped := errors.Wrapf(err, errors.ErrExecFailed, "running '%s'", argv[0])
		if cmd.ProcessState != nil {
			wrapped = wrapped.WithDetail("exitCode", cmd.ProcessState.ExitCode())
		}
		return wrapped
	}
	return nil
}
