package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckhand/internal/task"
)

var testBase = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func duePtr(d time.Duration) *time.Time {
	t := testBase.Add(d)
	return &t
}

func ids(items []task.Task) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func sampleTasks() []task.Task {
	return []task.Task{
		{
			ID:          "t1",
			Title:       "Update Security Policies",
			Description: "Rotate credentials and tighten access rules.",
			Status:      task.StatusPending,
			Priority:    task.PriorityUrgent,
			Tags:        []string{"security", "compliance"},
			CreatedAt:   testBase,
			UpdatedAt:   testBase.Add(time.Hour),
			DueDate:     duePtr(48 * time.Hour),
		},
		{
			ID:          "t2",
			Title:       "Review Q4 Reports",
			Description: "Walk through the quarterly numbers before the board call.",
			Status:      task.StatusInProgress,
			Priority:    task.PriorityHigh,
			Tags:        []string{"finance"},
			CreatedAt:   testBase.Add(time.Minute),
			UpdatedAt:   testBase.Add(2 * time.Hour),
			DueDate:     duePtr(24 * time.Hour),
		},
		{
			ID:          "t3",
			Title:       "Plan Team Offsite",
			Description: "Book the venue and collect dietary restrictions.",
			Status:      task.StatusPending,
			Priority:    task.PriorityMedium,
			Tags:        []string{"people"},
			CreatedAt:   testBase.Add(2 * time.Minute),
			UpdatedAt:   testBase.Add(3 * time.Hour),
		},
		{
			ID:          "t4",
			Title:       "Archive Old Projects",
			Description: "Move finished work into cold storage.",
			Status:      task.StatusCompleted,
			Priority:    task.PriorityLow,
			Tags:        []string{"cleanup"},
			CreatedAt:   testBase.Add(3 * time.Minute),
			UpdatedAt:   testBase.Add(4 * time.Hour),
		},
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	e := New(Options{})
	assert.Equal(t, DefaultOptions().MinQueryLength, e.Options().MinQueryLength)
	assert.Equal(t, DefaultOptions().MaxResults, e.Options().MaxResults)
	assert.Equal(t, DefaultOptions().ParallelThreshold, e.Options().ParallelThreshold)
	assert.False(t, e.Options().Fuzzy)

	custom := New(Options{MinQueryLength: 3, MaxResults: 7, Fuzzy: true, ParallelThreshold: 50})
	assert.Equal(t, 3, custom.Options().MinQueryLength)
	assert.Equal(t, 7, custom.Options().MaxResults)
	assert.True(t, custom.Options().Fuzzy)
	assert.Equal(t, 50, custom.Options().ParallelThreshold)
}

func TestSearchMatchesTitle(t *testing.T) {
	e := New(DefaultOptions())

	got := e.Search("secur", sampleTasks())

	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
}

func TestSearchShortQueryReturnsInputUnchanged(t *testing.T) {
	e := New(DefaultOptions())
	items := sampleTasks()

	got := e.Search("a", items)

	assert.Equal(t, ids(items), ids(got))

	got = e.Search("   ", items)
	assert.Equal(t, ids(items), ids(got))
}

func TestSearchDropsZeroScores(t *testing.T) {
	e := New(Options{Fuzzy: false})

	got := e.Search("zzzzzz", sampleTasks())

	assert.Empty(t, got)
}

func TestSearchCapsResults(t *testing.T) {
	e := New(Options{MaxResults: 2})
	items := make([]task.Task, 0, 5)
	for i := 0; i < 5; i++ {
		items = append(items, task.Task{
			ID:    fmt.Sprintf("cap-%d", i),
			Title: fmt.Sprintf("deploy step %d", i),
		})
	}

	got := e.Search("deploy", items)

	assert.Len(t, got, 2)
	assert.Equal(t, []string{"cap-0", "cap-1"}, ids(got))
}

func TestScoreWeights(t *testing.T) {
	e := New(Options{Fuzzy: true})

	tests := []struct {
		name  string
		query string
		item  task.Task
		want  float64
	}{
		{
			name:  "title contains only",
			query: "security",
			item:  task.Task{Title: "Update Security Policies"},
			want:  10,
		},
		{
			name:  "title prefix adds to contains",
			query: "update",
			item:  task.Task{Title: "Update Security Policies"},
			want:  13,
		},
		{
			name:  "exact title stacks all three bonuses",
			query: "Update Security Policies",
			item:  task.Task{Title: "Update Security Policies"},
			want:  18,
		},
		{
			name:  "description match",
			query: "venue",
			item:  task.Task{Title: "Plan Team Offsite", Description: "Book the venue early."},
			want:  5,
		},
		{
			name:  "tag contains",
			query: "sec",
			item:  task.Task{Title: "Rotate keys", Tags: []string{"security"}},
			want:  3,
		},
		{
			name:  "exact tag stacks with tag contains",
			query: "security",
			item:  task.Task{Title: "Rotate keys", Tags: []string{"security"}},
			want:  5,
		},
		{
			name:  "every field contributes",
			query: "security",
			item: task.Task{
				Title:       "Update Security Policies",
				Description: "Tighten security rules.",
				Tags:        []string{"security"},
			},
			want: 20,
		},
		{
			name:  "fuzzy fallback when nothing matches directly",
			query: "rpt",
			item:  task.Task{Title: "Review Q4 Reports"},
			want:  2,
		},
		{
			name:  "no match at all",
			query: "xylophone",
			item:  task.Task{Title: "Review Q4 Reports"},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, e.Score(tt.query, tt.item), 0.001)
		})
	}
}

func TestFuzzyIsFallbackOnly(t *testing.T) {
	item := task.Task{Title: "Update Security Policies", Tags: []string{"security"}}

	with := New(Options{Fuzzy: true})
	without := New(Options{Fuzzy: false})

	// A direct match scores the same whether fuzzy is on or off.
	assert.Equal(t, without.Score("secur", item), with.Score("secur", item))
}

func TestFuzzyDisabledDropsSubsequenceMatches(t *testing.T) {
	items := sampleTasks()

	with := New(Options{Fuzzy: true})
	got := with.Search("rpt", items)
	require.Len(t, got, 1)
	assert.Equal(t, "t2", got[0].ID)

	without := New(Options{Fuzzy: false})
	assert.Empty(t, without.Search("rpt", items))
}

func TestMatchesSubsequence(t *testing.T) {
	assert.True(t, matchesSubsequence("rpt", "review q4 reports"))
	assert.True(t, matchesSubsequence("abc", "a1b2c3"))
	assert.False(t, matchesSubsequence("cba", "a1b2c3"))
	assert.False(t, matchesSubsequence("abc", "ab"))
	assert.False(t, matchesSubsequence("", "anything"))
}

func TestSearchOrdersByScoreDescending(t *testing.T) {
	e := New(DefaultOptions())
	items := []task.Task{
		{ID: "desc-only", Title: "Standup notes", Description: "prepare deploy checklist"},
		{ID: "title-hit", Title: "Deploy the api gateway"},
		{ID: "title-prefix", Title: "deploy"},
	}

	got := e.Search("deploy", items)

	// Exact title (18) beats a plain title hit (13) beats a description hit (5).
	require.Len(t, got, 3)
	assert.Equal(t, []string{"title-prefix", "title-hit", "desc-only"}, ids(got))
}

func TestSearchTiesKeepInputOrder(t *testing.T) {
	e := New(DefaultOptions())
	items := []task.Task{
		{ID: "first", Title: "x", Description: "shared keyword budget"},
		{ID: "second", Title: "y", Description: "shared keyword budget"},
		{ID: "third", Title: "z", Description: "shared keyword budget"},
	}

	got := e.Search("budget", items)

	assert.Equal(t, []string{"first", "second", "third"}, ids(got))
}

func TestSearchDoesNotMutateInput(t *testing.T) {
	e := New(DefaultOptions())
	items := sampleTasks()
	snapshot := task.CloneAll(items)

	_ = e.Search("report", items)
	_ = e.Search("secur", items)

	assert.Equal(t, snapshot, items)
}

func TestParallelScoringMatchesSequential(t *testing.T) {
	items := make([]task.Task, 0, 2500)
	for i := 0; i < 2500; i++ {
		item := task.Task{
			ID:    fmt.Sprintf("bulk-%04d", i),
			Title: fmt.Sprintf("routine chore %04d", i),
		}
		if i%7 == 0 {
			item.Title = fmt.Sprintf("inspect pipeline %04d", i)
		}
		if i%13 == 0 {
			item.Description = "pipeline backlog review"
		}
		items = append(items, item)
	}

	sequential := New(Options{MaxResults: 500, ParallelThreshold: 1_000_000})
	parallel := New(Options{MaxResults: 500, ParallelThreshold: 10})

	want := sequential.Search("pipeline", items)
	got := parallel.Search("pipeline", items)

	require.Equal(t, len(want), len(got))
	assert.Equal(t, ids(want), ids(got))
}

func TestSearchAndFilterComposes(t *testing.T) {
	e := New(DefaultOptions())
	items := sampleTasks()

	pending := task.StatusPending
	got := e.SearchAndFilter("secur", items, &Criteria{Status: &pending}, SortNone)
	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)

	// Same query with a non-matching status filters everything out.
	done := task.StatusCompleted
	assert.Empty(t, e.SearchAndFilter("secur", items, &Criteria{Status: &done}, SortNone))
}

func TestSearchAndFilterSkipsSortWhenQueryPresent(t *testing.T) {
	e := New(DefaultOptions())
	items := []task.Task{
		{ID: "b", Title: "beta release checklist"},
		{ID: "a", Title: "alpha release checklist", Tags: []string{"release"}},
	}

	got := e.SearchAndFilter("release", items, nil, SortTitleAsc)

	// Relevance puts the tag hit first; a title sort would put "alpha" first
	// for a different reason, so assert on the relevance-induced order.
	require.Len(t, got, 2)
	assert.Equal(t, []string{"a", "b"}, ids(got))

	got = e.SearchAndFilter("checklist", items, nil, SortTitleAsc)
	require.Len(t, got, 2)
	// Both score the same, so input order survives where a title sort
	// would have swapped them.
	assert.Equal(t, []string{"b", "a"}, ids(got))
}

func TestSearchAndFilterSortsWithoutQuery(t *testing.T) {
	e := New(DefaultOptions())
	items := sampleTasks()

	got := e.SearchAndFilter("", items, nil, SortTitleAsc)

	require.Len(t, got, len(items))
	assert.Equal(t, []string{"t4", "t3", "t2", "t1"}, ids(got))
}

func TestSearchAndFilterWithCriteriaOnly(t *testing.T) {
	e := New(DefaultOptions())
	items := sampleTasks()

	urgent := task.PriorityUrgent
	got := e.SearchAndFilter("", items, &Criteria{Priority: &urgent}, SortNone)

	require.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].ID)
}

func TestSearchAndFilterReturnsFreshSlice(t *testing.T) {
	e := New(DefaultOptions())
	items := sampleTasks()

	got := e.SearchAndFilter("", items, nil, SortNone)
	require.Len(t, got, len(items))

	got[0].Title = "mutated"
	assert.Equal(t, "Update Security Policies", items[0].Title)
}
