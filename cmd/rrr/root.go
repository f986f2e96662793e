// Package rrr assembles the command-line interface: flag parsing,
// environment defaults, default config discovery, and the wiring from
// parsed options to the loader, executor, and dispatcher.
package rrr

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/rrr/internal/version"
	"github.com/arthur-debert/rrr/pkg/config"
	"github.com/arthur-debert/rrr/pkg/dispatcher"
	"github.com/arthur-debert/rrr/pkg/executor"
	"github.com/arthur-debert/rrr/pkg/logging"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type options struct {
	verbosity     int
	dryRun        bool
	configPath    string
	profile       string
	query         bool
	caseSensitive bool
	stdin         bool
	fork          bool
	fallback      bool
	shell         string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "rrr [flags] inputs...",
		Short:   "Run a command chosen by matching inputs against configured rules",
		Long: `rrr matches each input string against an ordered set of glob and regex
rules loaded from its configuration, substitutes the input (and any regex
captures) into the selected command template, and runs the result through a
shell.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !opts.stdin {
				return fmt.Errorf("requires at least one input unless --stdin is set")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	flags := rootCmd.Flags()
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "Do not execute any matching rule")
	flags.StringVarP(&opts.configPath, "config", "c", envOr("RRR_CONFIG", ""), "Choose the main configuration file")
	flags.StringVarP(&opts.profile, "profile", "p", envOr("RRR_PROFILE", config.DefaultProfile), "Choose the profile")
	flags.BoolVarP(&opts.query, "query", "q", false, "Just print the action instead of executing it")
	flags.BoolVarP(&opts.caseSensitive, "case-sensitive", "s", envBool("RRR_CASE_SENSITIVE"), "Match in case sensitive mode")
	flags.BoolVar(&opts.stdin, "stdin", false, "Read the inputs from stdin, one per line")
	flags.BoolVarP(&opts.fork, "fork", "F", false, "Run the action in a child process instead of replacing the current process")
	flags.BoolVarP(&opts.fallback, "fallback", "f", envBool("RRR_FALLBACK"), "On execution failure, try the next matching rule until one succeeds")
	flags.StringVar(&opts.shell, "sh", envOr("RRR_SHELL", ""), "Change the shell used to execute actions")

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func run(opts *options, args []string) error {
	ruleset, err := loadRuleset(opts)
	if err != nil {
		return err
	}

	d, err := newDispatcher(opts, ruleset)
	if err != nil {
		return err
	}

	if opts.stdin {
		log.Debug().Msg("Processing inputs from stdin")
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := d.DispatchAll([]string{scanner.Text()}); err != nil {
				return err
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading from stdin: %w", err)
		}
		return nil
	}

	log.Debug().Msg("Processing inputs from arguments")
	return d.DispatchAll(args)
}

// loadRuleset loads either the explicit config file or the default search
// locations, restricting loading to the selected profile.
func loadRuleset(opts *options) (*config.Ruleset, error) {
	loader := config.NewLoader(config.Options{
		CaseInsensitive: !opts.caseSensitive,
		OnlyProfiles:    []string{opts.profile},
		EnableImport:    true,
	})

	if opts.configPath != "" {
		log.Debug().Str("path", opts.configPath).Msg("Loading config")
		if err := loader.Load(opts.configPath); err != nil {
			return nil, fmt.Errorf("cannot load configuration file '%s': %w", opts.configPath, err)
		}
		return loader.Build()
	}

	loaded := false
	for _, path := range defaultConfigPaths() {
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		log.Debug().Str("path", path).Msg("Loading config")
		if err := loader.Load(path); err != nil {
			return nil, fmt.Errorf("cannot load configuration file '%s': %w", path, err)
		}
		loaded = true
	}
	if !loaded {
		return nil, fmt.Errorf("no configuration file found in %v", defaultConfigPaths())
	}

	return loader.Build()
}

func newDispatcher(opts *options, ruleset *config.Ruleset) (*dispatcher.Dispatcher, error) {
	var shell []string
	if opts.shell != "" {
		parts, err := shellquote.Split(opts.shell)
		if err != nil {
			return nil, fmt.Errorf("invalid --sh substitute: %w", err)
		}
		shell = parts
	}

	// fallback needs to observe failures, so it forces wait mode
	mode := executor.ModeExec
	switch {
	case opts.fallback:
		mode = executor.ModeWait
	case opts.fork:
		mode = executor.ModeFork
	}

	runner, err := executor.New(executor.Options{
		Mode:   mode,
		Shell:  shell,
		DryRun: opts.dryRun,
		Logger: logging.GetLogger("executor"),
	})
	if err != nil {
		return nil, err
	}

	return dispatcher.New(ruleset, dispatcher.Options{
		Profile:  opts.profile,
		Fallback: opts.fallback,
		Query:    opts.query,
		DryRun:   opts.dryRun,
		Runner:   runner,
	})
}

// defaultConfigPaths returns the system and user config locations, in load
// order
func defaultConfigPaths() []string {
	system := "/etc/rrr.conf"
	if runtime.GOOS == "freebsd" {
		system = "/usr/local/etc/rrr.conf"
	}
	return []string{system, filepath.Join(xdg.ConfigHome, "rrr.conf")}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rrr version %s\n", version.Version)
			fmt.Printf("  commit: %s\n", version.Commit)
			fmt.Printf("  built:  %s\n", version.Date)
		},
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envBool(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && value
}
