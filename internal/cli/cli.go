package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tiwariParth/go-task-cli/internal/app"
	"github.com/tiwariParth/go-task-cli/internal/config"
	"github.com/tiwariParth/go-task-cli/internal/logging"
	"github.com/tiwariParth/go-task-cli/internal/models"
	"github.com/tiwariParth/go-task-cli/internal/task"
)

// ErrNoCommand is returned when taskcli is run without a command.
var ErrNoCommand = errors.New("no command provided")

// CLI represents the command-line interface.
type CLI struct {
	out    io.Writer
	errOut io.Writer

	// flags
	configPath string
	dataFile   string
	atomic     bool
	logLevel   string
	noColor    bool
	dryRun     bool

	app     *app.TodoApp
	palette palette
}

// NewCLI initializes a new CLI writing results to out and diagnostics to errOut.
func NewCLI(out, errOut io.Writer) *CLI {
	return &CLI{out: out, errOut: errOut}
}

// Run executes one command. Recoverable problems (unknown id, bad input) are
// printed and yield nil; the returned error is always fatal.
func (c *CLI) Run(ctx context.Context, args []string) error {
	if args == nil {
		// cobra falls back to os.Args when given nil
		args = []string{}
	}
	root := c.rootCommand()
	root.SetArgs(guardDashArgs(root.PersistentFlags(), args))
	return root.ExecuteContext(ctx)
}

// guardDashArgs inserts "--" before the first argument after the command
// name that starts with "-" but is not a known flag, so descriptions like
// "-call mom" and negative ids reach the command as positional text.
// Arguments before the command name are left for cobra to reject.
func guardDashArgs(flags *pflag.FlagSet, args []string) []string {
	seenCommand := false
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return args
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			seenCommand = true
			continue
		}
		if known, takesValue := lookupFlag(flags, arg); known {
			if takesValue {
				i++
			}
			continue
		}
		if !seenCommand {
			return args
		}
		guarded := make([]string, 0, len(args)+1)
		guarded = append(guarded, args[:i]...)
		guarded = append(guarded, "--")
		return append(guarded, args[i:]...)
	}
	return args
}

// lookupFlag reports whether arg names one of flags (or help) and whether
// its value is the next argument. Shorthands only count when written alone,
// so "-fix" is text rather than -f with value "ix".
func lookupFlag(flags *pflag.FlagSet, arg string) (known, takesValue bool) {
	var f *pflag.Flag
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		name, _, hasValue := strings.Cut(name, "=")
		if name == "help" {
			return true, false
		}
		if f = flags.Lookup(name); f == nil {
			return false, false
		}
		return true, !hasValue && f.NoOptDefVal == ""
	}
	if len(arg) != 2 {
		return false, false
	}
	if arg == "-h" {
		return true, false
	}
	if f = flags.ShorthandLookup(arg[1:]); f == nil {
		return false, false
	}
	return true, f.NoOptDefVal == ""
}

func (c *CLI) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "taskcli",
		Short:         "Track personal tasks in a local JSON file",
		Long:          "taskcli adds, updates, deletes, lists and changes the status of short text tasks stored in tasks.json.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return ErrNoCommand
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.HasParent() || cmd.Name() == "help" {
				return nil
			}
			return c.setup(cmd)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "path to a TOML config file")
	pf.StringVarP(&c.dataFile, "file", "f", "", "tasks file (default \"tasks.json\")")
	pf.BoolVar(&c.atomic, "atomic", false, "write the tasks file via temp file and rename")
	pf.StringVar(&c.logLevel, "log-level", "", "diagnostic log level: debug, info, warn, error")
	pf.BoolVar(&c.noColor, "no-color", false, "disable colored output")
	pf.BoolVar(&c.dryRun, "dry-run", false, "apply the command in memory without writing the tasks file")

	root.AddCommand(
		c.addCommand(),
		c.updateCommand(),
		c.deleteCommand(),
		c.listCommand(),
		c.markCommand("mark-in-progress", models.StatusInProgress),
		c.markCommand("mark-done", models.StatusDone),
		c.markCommand("mark-todo", models.StatusTodo),
	)
	return root
}

// setup resolves config, applies flag overrides and loads the task store.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("file") {
		cfg.DataFile = c.dataFile
	}
	if flags.Changed("atomic") {
		cfg.AtomicWrites = c.atomic
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = strings.ToLower(c.logLevel)
	}
	if flags.Changed("no-color") {
		cfg.NoColor = c.noColor
	}
	cfg.DryRun = c.dryRun
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(c.errOut, logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	c.palette = newPalette(cfg.NoColor || color.NoColor || c.out != os.Stdout)

	a, err := app.NewTodoApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *CLI) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <description>",
		Short: "Add a new task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return c.usage(cmd)
			}
			t, err := c.app.Store.AddTask(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return c.report(err)
			}
			c.success("Task added successfully (ID: %d)", t.ID)
			return nil
		},
	}
}

func (c *CLI) updateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update <id> <description>",
		Short: "Change a task's description",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return c.usage(cmd)
			}
			id, err := parseID(args[0])
			if err != nil {
				return c.report(err)
			}
			if _, err := c.app.Store.UpdateTask(cmd.Context(), id, strings.Join(args[1:], " ")); err != nil {
				return c.report(err)
			}
			c.success("Task %d updated successfully", id)
			return nil
		},
	}
}

func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return c.usage(cmd)
			}
			id, err := parseID(args[0])
			if err != nil {
				return c.report(err)
			}
			if _, err := c.app.Store.DeleteTask(cmd.Context(), id); err != nil {
				return c.report(err)
			}
			c.success("Task %d deleted successfully", id)
			return nil
		},
	}
}

func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [" + strings.Join(models.StatusNames(), "|") + "]",
		Short: "List tasks, optionally by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter string
			if len(args) > 0 {
				filter = args[0]
			}
			tasks, err := c.app.Store.ListTasks(filter)
			if err != nil {
				return c.report(err)
			}
			renderTable(c.out, tasks, c.palette)
			return nil
		},
	}
}

func (c *CLI) markCommand(name string, status models.Status) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <id>",
		Short: fmt.Sprintf("Mark a task as %s", status),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return c.usage(cmd)
			}
			id, err := parseID(args[0])
			if err != nil {
				return c.report(err)
			}
			if _, err := c.app.Store.MarkStatus(cmd.Context(), id, string(status)); err != nil {
				return c.report(err)
			}
			c.success("Task %d marked as %s", id, status)
			return nil
		},
	}
}

// usage prints the command's usage line; missing arguments are not fatal.
func (c *CLI) usage(cmd *cobra.Command) error {
	fmt.Fprintf(c.out, "Usage: %s\n", cmd.UseLine())
	return nil
}

// report prints recoverable errors and passes fatal ones up.
func (c *CLI) report(err error) error {
	var notFound *task.NotFoundError
	var invalid *task.ValidationError
	if errors.As(err, &notFound) || errors.As(err, &invalid) {
		fmt.Fprintln(c.out, c.palette.err.Sprint("Error: "+err.Error()))
		return nil
	}
	return err
}

func (c *CLI) success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if c.app.Config.DryRun {
		msg += " (dry run, not saved)"
	}
	fmt.Fprintln(c.out, c.palette.ok.Sprint(msg))
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, &task.ValidationError{Field: "task ID", Value: arg, Err: errors.New("must be an integer")}
	}
	return id, nil
}
