package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphi011/monorepo/internal/config"
	"github.com/raphi011/monorepo/internal/git"
	"github.com/raphi011/monorepo/internal/log"
	"github.com/raphi011/monorepo/internal/monorepo"
	"github.com/raphi011/monorepo/internal/output"
	"github.com/raphi011/monorepo/internal/registry"
	"github.com/raphi011/monorepo/internal/terminal"
)

// Command group IDs for organizing help output
const (
	GroupCore   = "core"
	GroupConfig = "config"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	workDir string

	// Global flags
	verbose   bool
	quiet     bool
	logFormat string
	registry  string

	cfg    *config.Config
	logger *log.Logger
}

// noGitAnnotation marks commands (and their subcommands) that never run git.
const noGitAnnotation = "monorepo/no-git"

// needsGit reports whether cmd requires the git binary.
func needsGit(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[noGitAnnotation] == "true" {
			return false
		}
	}
	return true
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	workDir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "monorepo: failed to get working directory: %v\n", err)
		return 1
	}

	a := &app{stdout: stdout, stderr: stderr, workDir: workDir}
	return a.execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(a.stderr, formatError(err))
		return 1
	}
	return 0
}

// formatError renders err for the terminal, adding a hint when one helps.
func formatError(err error) string {
	msg := "Error: " + err.Error()

	var writeErr *registry.WriteError
	var conflict *monorepo.RemoteConflictError
	switch {
	case errors.As(err, &writeErr):
		msg += "\nThe subtree was merged but the registry could not be written; re-run the command after fixing the file."
	case errors.As(err, &conflict):
		msg += fmt.Sprintf("\nRemove or rename the remote first: git remote remove %s", conflict.Name)
	}
	return msg
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "monorepo",
		Short: "Assemble and split a monorepo with git subtree",
		Long: `monorepo imports independent repositories into subdirectories of one
repository with git subtree, keeps them up to date, and splits
subdirectories back out into repositories of their own.

Imported packages are recorded in a registry file (monorepo.yml) at the
monorepo root.`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.registry, "config", "c", config.DefaultRegistry, "Registry file, relative to the monorepo root")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Show external commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format for executed commands: text or json")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	rootCmd.RegisterFlagCompletionFunc("log-format", cobra.FixedCompletions(config.ValidLogFormats, cobra.ShellCompDirectiveNoFileComp))

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Core Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	rootCmd.AddCommand(newInitCmd(a))
	rootCmd.AddCommand(newAddCmd(a))
	rootCmd.AddCommand(newSplitCmd(a))
	rootCmd.AddCommand(newPullCmd(a))
	rootCmd.AddCommand(newListCmd(a))

	rootCmd.AddCommand(newHookCmd(a))
	rootCmd.AddCommand(newConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// setup loads configuration and attaches logger and printer to the
// command context.
func (a *app) setup(cmd *cobra.Command) error {
	a.logger = log.New(a.stderr, a.verbose, a.quiet)

	a.loadConfig(cmd, a.logger)

	if a.logFormat == "" {
		a.logFormat = a.cfg.LogFormat
	}
	if err := config.ValidateLogFormat(a.logFormat); err != nil {
		return err
	}

	ctx := log.WithLogger(cmd.Context(), a.logger)
	ctx = output.WithPrinter(ctx, a.stdout)
	cmd.SetContext(ctx)

	if !needsGit(cmd) {
		return nil
	}
	return git.CheckGit(a.cfg.GitBinary)
}

// loadConfig merges the global config with the monorepo's .monorepo.toml.
// Invalid files are reported as warnings and defaults are used instead.
func (a *app) loadConfig(cmd *cobra.Command, l *log.Logger) {
	loadedCfg, err := config.Load()
	if err != nil {
		l.Warnf("%v", err)
	}
	local, err := config.LoadLocal(a.workDir)
	if err != nil {
		l.Warnf("%v", err)
	}
	a.cfg = config.MergeLocal(&loadedCfg, local)

	if !cmd.Flags().Changed("config") && a.cfg.Registry != "" {
		a.registry = a.cfg.Registry
	}
}

// sink selects where the terminal decorator reports commands.
func (a *app) sink() log.Sink {
	if a.logFormat == "json" && !a.quiet {
		return log.NewZerolog(a.stderr)
	}
	return a.logger
}

// terminal creates the execution context for git and hooks, rooted at the
// working directory.
func (a *app) terminal() (terminal.Terminal, error) {
	local, err := terminal.NewLocal(a.workDir, terminal.WithTimeout(a.cfg.CommandTimeout))
	if err != nil {
		return nil, err
	}
	return terminal.NewLogging(local, a.sink()), nil
}

// engine wires terminal, git adapter and registry path together.
func (a *app) engine() (*monorepo.Engine, terminal.Terminal, error) {
	term, err := a.terminal()
	if err != nil {
		return nil, nil, err
	}
	repo, err := git.New(term, a.workDir, git.WithBinary(a.cfg.GitBinary))
	if err != nil {
		return nil, nil, err
	}
	return monorepo.New(repo, a.registry), term, nil
}
