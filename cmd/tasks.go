package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"deckhand/internal/render"
	"deckhand/internal/search"
	"deckhand/internal/task"
)

var (
	tasksStatus        string
	tasksPriority      string
	tasksTags          []string
	tasksCreatedAfter  string
	tasksCreatedBefore string
	tasksSort          string
	tasksOutput        string
	tasksTemplate      string
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List and search the local task cache",
	Long: `Query the locally cached task collection. The cache fills on
'deckhand sync'; these commands never talk to the network.

Filters combine with AND; multiple --tag values match tasks carrying any
of them. Search ranks by relevance and falls back to fuzzy matching when
the fuzzy-search flag is enabled.

Examples:
  deckhand tasks list
  deckhand tasks list --status pending --sort due-asc
  deckhand tasks list --tag billing --tag invoices --output wide
  deckhand tasks search "quarterly report" --priority high
  deckhand tasks list --output template --template '{{range .}}{{.Title}}{{"\n"}}{{end}}'`,
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached tasks, optionally filtered and sorted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTasksQuery(cmd, "")
	},
}

var tasksSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search cached tasks by relevance",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTasksQuery(cmd, strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksSearchCmd)

	pf := tasksCmd.PersistentFlags()
	pf.StringVar(&tasksStatus, "status", "", "Keep only tasks with this status (pending, in-progress, completed, archived)")
	pf.StringVar(&tasksPriority, "priority", "", "Keep only tasks with this priority (low, medium, high, urgent)")
	pf.StringSliceVar(&tasksTags, "tag", nil, "Keep only tasks carrying at least one of these tags (repeatable)")
	pf.StringVar(&tasksCreatedAfter, "created-after", "", "Keep only tasks created at or after this time (2006-01-02 or RFC 3339)")
	pf.StringVar(&tasksCreatedBefore, "created-before", "", "Keep only tasks created at or before this time (2006-01-02 or RFC 3339)")
	pf.StringVar(&tasksSort, "sort", "", "Sort order, e.g. created-desc, title-asc, due-asc (default: input order, or relevance when searching)")
	pf.StringVarP(&tasksOutput, "output", "o", "", "Output format (table, wide, json, yaml, template)")
	pf.StringVar(&tasksTemplate, "template", "", "Go template applied to the result slice (implies --output template)")
}

func runTasksQuery(cmd *cobra.Command, query string) error {
	criteria, err := parseTaskCriteria()
	if err != nil {
		return err
	}
	sortBy, err := search.ParseSortOption(tasksSort)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(tasksOutput)
	if err != nil {
		return err
	}
	if tasksTemplate != "" {
		format = render.FormatTemplate
	}
	if format == render.FormatTemplate && tasksTemplate == "" {
		return fmt.Errorf("--output template requires --template")
	}

	core, err := bootCore()
	if err != nil {
		return err
	}
	defer core.Close()

	cached, err := core.Cache.List()
	if err != nil {
		return fmt.Errorf("reading task cache: %w", err)
	}
	if len(cached) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "The task cache is empty. Run 'deckhand sync' to fill it.")
	}

	results := core.SearchEngine().SearchAndFilter(query, cached, criteria, sortBy)

	r := newRenderer(cmd)
	if format == render.FormatTemplate {
		return r.Template(tasksTemplate, results)
	}
	return r.Tasks(format, results)
}

// parseTaskCriteria converts the filter flags into search criteria. Returns
// nil when no filter flag is set.
func parseTaskCriteria() (*search.Criteria, error) {
	var c search.Criteria

	if tasksStatus != "" {
		status, err := task.ParseStatus(tasksStatus)
		if err != nil {
			return nil, err
		}
		c.Status = &status
	}
	if tasksPriority != "" {
		priority, err := task.ParsePriority(tasksPriority)
		if err != nil {
			return nil, err
		}
		c.Priority = &priority
	}
	c.Tags = tasksTags
	if tasksCreatedAfter != "" {
		ts, err := parseTimeFlag("created-after", tasksCreatedAfter)
		if err != nil {
			return nil, err
		}
		c.CreatedAfter = &ts
	}
	if tasksCreatedBefore != "" {
		ts, err := parseTimeFlag("created-before", tasksCreatedBefore)
		if err != nil {
			return nil, err
		}
		c.CreatedBefore = &ts
	}

	if c.IsEmpty() {
		return nil, nil
	}
	return &c, nil
}

func parseTimeFlag(name, value string) (time.Time, error) {
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return ts, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: %q is not a date (2006-01-02) or RFC 3339 timestamp", name, value)
	}
	return ts, nil
}
