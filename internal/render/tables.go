package render

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"deckhand/internal/appstate"
	"deckhand/internal/environment"
	"deckhand/internal/flags"
	"deckhand/internal/task"
	pkgstrings "deckhand/pkg/strings"
)

const (
	shortIDLen = 8
	dateLayout = "2006-01-02"
	timeLayout = "2006-01-02 15:04:05"
)

// KV is one row of a key-value summary table.
type KV struct {
	Key   string
	Value string
}

// newTable creates a writer with the house style.
func (r *Renderer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleRounded)
	return t
}

// header colors a header cell when color is on.
func (r *Renderer) header(s string) string {
	if !r.color {
		return s
	}
	return text.FgHiCyan.Sprint(s)
}

// notice prints a yellow one-liner for empty results.
func (r *Renderer) notice(message string) {
	if r.color {
		fmt.Fprintf(r.out, "%s\n", text.FgYellow.Sprint(message))
		return
	}
	fmt.Fprintf(r.out, "%s\n", message)
}

// headerRow builds a table header with per-cell coloring applied.
func (r *Renderer) headerRow(cells ...string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = r.header(c)
	}
	return row
}

// TaskTable renders tasks as a table. Wide adds description and timestamp
// columns.
func (r *Renderer) TaskTable(tasks []task.Task, wide bool) {
	if len(tasks) == 0 {
		r.notice("📋 No tasks")
		return
	}

	t := r.newTable()
	if wide {
		t.AppendHeader(r.headerRow("ID", "TITLE", "DESCRIPTION", "STATUS", "PRIORITY", "TAGS", "DUE", "CREATED", "UPDATED"))
	} else {
		t.AppendHeader(r.headerRow("ID", "TITLE", "STATUS", "PRIORITY", "TAGS", "DUE"))
	}

	for _, item := range tasks {
		due := "-"
		if item.DueDate != nil {
			due = item.DueDate.Format(dateLayout)
		}
		tags := strings.Join(item.Tags, ",")

		if wide {
			t.AppendRow(table.Row{
				pkgstrings.ShortID(item.ID, shortIDLen),
				item.Title,
				pkgstrings.Truncate(item.Description, pkgstrings.DefaultDescriptionMaxLen),
				string(item.Status),
				string(item.Priority),
				tags,
				due,
				item.CreatedAt.Format(timeLayout),
				item.UpdatedAt.Format(timeLayout),
			})
		} else {
			t.AppendRow(table.Row{
				pkgstrings.ShortID(item.ID, shortIDLen),
				pkgstrings.Truncate(item.Title, 40),
				string(item.Status),
				string(item.Priority),
				tags,
				due,
			})
		}
	}

	t.Render()
	fmt.Fprintf(r.out, "%d task(s)\n", len(tasks))
}

// FlagTable renders resolved feature flags.
func (r *Renderer) FlagTable(resolved []flags.Resolved) {
	if len(resolved) == 0 {
		r.notice("No flags available")
		return
	}

	t := r.newTable()
	t.AppendHeader(r.headerRow("FLAG", "ENABLED", "SOURCE", "CATEGORY", "DESCRIPTION"))
	for _, f := range resolved {
		source := "default"
		if f.Overridden {
			source = "override"
		}
		t.AppendRow(table.Row{
			string(f.ID),
			onOff(f.Enabled),
			source,
			string(f.Category),
			pkgstrings.Truncate(f.Description, pkgstrings.DefaultDescriptionMaxLen),
		})
	}
	t.Render()
}

// EnvironmentTable renders the available environments, marking the active
// one.
func (r *Renderer) EnvironmentTable(envs []environment.Environment, current environment.ID) {
	t := r.newTable()
	t.AppendHeader(r.headerRow("", "ENVIRONMENT", "BASE URL", "TIMEOUT", "MOCK", "LOGGING"))
	for _, env := range envs {
		marker := ""
		if env.ID == current {
			marker = "*"
		}
		t.AppendRow(table.Row{
			marker,
			string(env.ID),
			env.BaseURL,
			env.RequestTimeout.String(),
			onOff(env.UseMockServices),
			onOff(env.LoggingEnabled),
		})
	}
	t.Render()
}

// HistoryTable renders the state transition history, oldest first.
func (r *Renderer) HistoryTable(history []appstate.Transition) {
	if len(history) == 0 {
		r.notice("No transitions recorded")
		return
	}

	t := r.newTable()
	t.AppendHeader(r.headerRow("AT", "FROM", "TO"))
	for _, tr := range history {
		t.AppendRow(table.Row{
			tr.At.Format(timeLayout),
			string(tr.From),
			string(tr.To),
		})
	}
	t.Render()
}

// KeyValues renders an ordered key-value summary.
func (r *Renderer) KeyValues(pairs []KV) {
	t := r.newTable()
	for _, kv := range pairs {
		t.AppendRow(table.Row{r.header(kv.Key), kv.Value})
	}
	t.Render()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
