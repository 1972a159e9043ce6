package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"deckhand/internal/app"
	"deckhand/internal/appstate"
	"deckhand/internal/environment"
	"deckhand/internal/flags"
	"deckhand/internal/render"
	"deckhand/internal/search"
	"deckhand/internal/session"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive console on a single core instance",
	Long: `Open an interactive console. Unlike the one-shot commands, every console
command runs against the same core instance, so an unlock or an
environment switch stays in effect for the rest of the session.

Type 'help' inside the console for the command list.`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

// errConsoleExit signals a clean exit from the console loop.
var errConsoleExit = errors.New("console exit")

type console struct {
	core *app.Core
	rl   *readline.Instance
	r    *render.Renderer
	out  io.Writer
}

func runConsole(cmd *cobra.Command, args []string) error {
	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	if _, err := core.Sessions.Restore(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not restore session: %v\n", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:              consolePrompt(core),
		HistoryFile:         filepath.Join(os.TempDir(), ".deckhand_history"),
		AutoComplete:        consoleCompleter(core),
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return fmt.Errorf("creating readline instance: %w", err)
	}
	defer rl.Close()

	c := &console{
		core: core,
		rl:   rl,
		r:    render.New(rl.Stdout(), !rootNoColor),
		out:  rl.Stdout(),
	}

	fmt.Fprintf(c.out, "deckhand console (%s environment). Type 'help' for commands, 'exit' to leave.\n",
		core.Environments.CurrentID())

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
		} else if err == io.EOF {
			fmt.Fprintln(c.out, "Bye")
			return nil
		} else if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if err := c.execute(cmd.Context(), input); err != nil {
			if errors.Is(err, errConsoleExit) {
				fmt.Fprintln(c.out, "Bye")
				return nil
			}
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
		rl.SetPrompt(consolePrompt(core))
	}
}

func consolePrompt(core *app.Core) string {
	return fmt.Sprintf("deckhand(%s)> ", core.State.CurrentKind())
}

func consoleCompleter(core *app.Core) *readline.PrefixCompleter {
	flagItems := func() []readline.PrefixCompleterInterface {
		var items []readline.PrefixCompleterInterface
		for _, resolved := range core.Flags.All() {
			items = append(items, readline.PcItem(string(resolved.ID)))
		}
		return items
	}
	var envItems []readline.PrefixCompleterInterface
	for _, env := range core.Environments.Available() {
		envItems = append(envItems, readline.PcItem(string(env.ID)))
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("status"),
		readline.PcItem("flags",
			readline.PcItem("list"),
			readline.PcItem("enable", flagItems()...),
			readline.PcItem("disable", flagItems()...),
			readline.PcItem("reset", flagItems()...),
		),
		readline.PcItem("env",
			readline.PcItem("show"),
			readline.PcItem("switch", envItems...),
			readline.PcItem("reset"),
			readline.PcItem("apply-overrides"),
		),
		readline.PcItem("tasks"),
		readline.PcItem("search"),
		readline.PcItem("sync"),
		readline.PcItem("login"),
		readline.PcItem("logout"),
		readline.PcItem("lock"),
		readline.PcItem("unlock"),
		readline.PcItem("history"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

// filterInput blocks Ctrl-Z from suspending readline mid-edit.
func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func (c *console) execute(ctx context.Context, input string) error {
	fields := strings.Fields(input)
	command, rest := fields[0], fields[1:]

	switch command {
	case "status":
		return printStatus(c.out, c.r, c.core)
	case "flags":
		return c.flagsCommand(rest)
	case "env":
		return c.envCommand(rest)
	case "tasks":
		return c.listTasks("")
	case "search":
		if len(rest) == 0 {
			return fmt.Errorf("usage: search <query>")
		}
		return c.listTasks(strings.Join(rest, " "))
	case "sync":
		return c.sync(ctx)
	case "login":
		return c.login(ctx)
	case "logout":
		return c.core.Sessions.Logout()
	case "lock":
		return c.core.Sessions.Lock()
	case "unlock":
		return c.unlock()
	case "history":
		c.r.HistoryTable(c.core.State.History())
		return nil
	case "help":
		c.printHelp()
		return nil
	case "exit", "quit":
		return errConsoleExit
	default:
		return fmt.Errorf("unknown command %q, type 'help' for the command list", command)
	}
}

func (c *console) flagsCommand(args []string) error {
	if len(args) == 0 || args[0] == "list" {
		c.r.FlagTable(c.core.Flags.All())
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: flags [list|enable <flag>|disable <flag>|reset <flag>]")
	}

	id := flags.FlagID(args[1])
	switch args[0] {
	case "enable":
		if !c.core.Flags.SetEnabled(id, true) {
			return flagRejectedError(args[1])
		}
		fmt.Fprintf(c.out, "Flag %s enabled\n", id)
	case "disable":
		if !c.core.Flags.SetEnabled(id, false) {
			return flagRejectedError(args[1])
		}
		fmt.Fprintf(c.out, "Flag %s disabled\n", id)
	case "reset":
		if !c.core.Flags.Reset(id) {
			return flagRejectedError(args[1])
		}
		fmt.Fprintf(c.out, "Flag %s reset to its default\n", id)
	default:
		return fmt.Errorf("unknown flags subcommand %q", args[0])
	}
	return nil
}

func (c *console) envCommand(args []string) error {
	if len(args) == 0 || args[0] == "show" {
		c.r.EnvironmentTable(c.core.Environments.Available(), c.core.Environments.CurrentID())
		return nil
	}

	switch args[0] {
	case "switch":
		if len(args) != 2 {
			return fmt.Errorf("usage: env switch <environment>")
		}
		id := environment.ID(args[1])
		if !c.core.Environments.SwitchTo(id) {
			return fmt.Errorf("environment %q is unknown or not available in this build", args[1])
		}
		fmt.Fprintf(c.out, "Switched to environment %s; service connections follow on restart\n", id)
	case "reset":
		c.core.Environments.ResetToDefault()
		fmt.Fprintf(c.out, "Environment reset to %s\n", c.core.Environments.CurrentID())
	case "apply-overrides":
		c.core.Environments.ApplyFeatureOverrides()
		fmt.Fprintf(c.out, "Applied feature overrides for %s\n", c.core.Environments.CurrentID())
	default:
		return fmt.Errorf("unknown env subcommand %q", args[0])
	}
	return nil
}

func (c *console) listTasks(query string) error {
	cached, err := c.core.Cache.List()
	if err != nil {
		return fmt.Errorf("reading task cache: %w", err)
	}
	if len(cached) == 0 {
		fmt.Fprintln(c.out, "The task cache is empty. Run 'sync' to fill it.")
		return nil
	}
	results := c.core.SearchEngine().SearchAndFilter(query, cached, nil, search.SortNone)
	c.r.TaskTable(results, false)
	return nil
}

func (c *console) sync(ctx context.Context) error {
	summary, err := c.core.Syncer.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Synced %d tasks in %d pages (%s)\n",
		summary.Total, summary.Pages, summary.Duration.Round(time.Millisecond))
	return nil
}

func (c *console) login(ctx context.Context) error {
	email, err := c.readLine("Email: ")
	if err != nil {
		return err
	}
	password, err := c.rl.ReadPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := c.core.Sessions.Login(ctx, session.Credentials{Email: email, Password: string(password)})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Signed in as %s <%s>\n", user.DisplayName, user.Email)
	return nil
}

func (c *console) unlock() error {
	if c.core.State.CurrentKind() != appstate.KindLocked {
		return fmt.Errorf("session is not locked (state: %s)", c.core.State.CurrentKind())
	}
	code, err := c.rl.ReadPassword("Passcode: ")
	if err != nil {
		return err
	}
	if err := c.core.Sessions.Unlock(string(code)); err != nil {
		return err
	}
	user, _ := appstate.CurrentUser(c.core.State.Current())
	fmt.Fprintf(c.out, "Session for %s unlocked\n", user.Email)
	return nil
}

// readLine reads one line with a temporary prompt, restoring the state
// prompt afterwards.
func (c *console) readLine(prompt string) (string, error) {
	c.rl.SetPrompt(prompt)
	defer c.rl.SetPrompt(consolePrompt(c.core))

	line, err := c.rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *console) printHelp() {
	fmt.Fprint(c.out, `Commands:
  status                          State, session, environment and flags
  flags [list]                    List feature flags
  flags enable|disable <flag>     Override a feature flag
  flags reset <flag>              Clear a flag override
  env [show]                      List environments
  env switch <environment>        Switch the active environment
  env reset                       Return to the default environment
  env apply-overrides             Apply the environment's flag overrides
  tasks                           List cached tasks
  search <query>                  Search cached tasks by relevance
  sync                            Synchronize the task cache
  login / logout                  Sign in or out
  lock / unlock                   Lock or unlock the session
  history                         Recent state transitions
  help                            This text
  exit                            Leave the console
`)
}
