package search

import (
	"runtime"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"deckhand/internal/task"
)

// Scoring weights. A hit on the title dominates, tags and description
// contribute, and the fuzzy bonus only ever applies as a fallback.
const (
	titleContainsScore = 10.0
	titleExactScore    = 5.0
	titlePrefixScore   = 3.0
	descriptionScore   = 5.0
	tagContainsScore   = 3.0
	tagExactScore      = 2.0
	fuzzyFallbackScore = 2.0
)

// Options configures an Engine. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	// MinQueryLength is the minimum trimmed query length for search to do
	// anything. Shorter queries return the input unchanged, so single
	// keystrokes never produce noisy matches.
	MinQueryLength int

	// MaxResults caps how many scored items a search returns.
	MaxResults int

	// Fuzzy enables the subsequence fallback for items that score nothing
	// on direct matches.
	Fuzzy bool

	// ParallelThreshold is the collection size at which scoring fans out
	// across CPUs. Results are identical to the sequential path.
	ParallelThreshold int
}

// DefaultOptions returns the standard engine configuration.
func DefaultOptions() Options {
	return Options{
		MinQueryLength:    2,
		MaxResults:        100,
		Fuzzy:             true,
		ParallelThreshold: 2000,
	}
}

// Engine scores, filters and sorts task collections. It holds configuration
// only; every operation is a pure function of its inputs, so one engine may
// be shared across goroutines.
type Engine struct {
	opts Options
}

// New creates an Engine with the given options. Non-positive numeric fields
// fall back to their defaults; Fuzzy is taken as given.
func New(opts Options) *Engine {
	defaults := DefaultOptions()
	if opts.MinQueryLength <= 0 {
		opts.MinQueryLength = defaults.MinQueryLength
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaults.MaxResults
	}
	if opts.ParallelThreshold <= 0 {
		opts.ParallelThreshold = defaults.ParallelThreshold
	}
	return &Engine{opts: opts}
}

// Options returns the engine's configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Search scores items against query and returns the matches ordered by
// descending relevance, ties keeping input order. Items that score zero are
// dropped and the result is capped at MaxResults. Queries shorter than
// MinQueryLength return the input unchanged.
func (e *Engine) Search(query string, items []task.Task) []task.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < e.opts.MinQueryLength {
		out := make([]task.Task, len(items))
		copy(out, items)
		return out
	}

	scores := e.scoreAll(q, items)

	type scored struct {
		item  task.Task
		score float64
	}
	matches := make([]scored, 0, len(items))
	for i, item := range items {
		if scores[i] > 0 {
			matches = append(matches, scored{item: item, score: scores[i]})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > e.opts.MaxResults {
		matches = matches[:e.opts.MaxResults]
	}

	out := make([]task.Task, len(matches))
	for i, m := range matches {
		out[i] = m.item
	}
	return out
}

// Score exposes the relevance score of a single item for the given query,
// mostly for diagnostics. The query is trimmed and lower-cased the same way
// Search does; no minimum length applies.
func (e *Engine) Score(query string, item task.Task) float64 {
	return e.score(strings.ToLower(strings.TrimSpace(query)), item)
}

// scoreAll computes the score of every item, fanning out across CPUs for
// large collections.
func (e *Engine) scoreAll(q string, items []task.Task) []float64 {
	scores := make([]float64, len(items))

	if len(items) < e.opts.ParallelThreshold {
		for i, item := range items {
			scores[i] = e.score(q, item)
		}
		return scores
	}

	workers := runtime.NumCPU()
	if workers > len(items) {
		workers = len(items)
	}
	chunk := (len(items) + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < len(items); start += chunk {
		start := start
		end := start + chunk
		if end > len(items) {
			end = len(items)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				scores[i] = e.score(q, items[i])
			}
			return nil
		})
	}
	// Workers write disjoint ranges and never fail.
	_ = g.Wait()
	return scores
}

// score computes the additive relevance of one item for the lower-cased
// query q.
func (e *Engine) score(q string, item task.Task) float64 {
	if q == "" {
		return 0
	}

	var score float64
	title := strings.ToLower(item.Title)

	if strings.Contains(title, q) {
		score += titleContainsScore
	}
	if title == q {
		score += titleExactScore
	}
	if strings.HasPrefix(title, q) {
		score += titlePrefixScore
	}

	if strings.Contains(strings.ToLower(item.Description), q) {
		score += descriptionScore
	}

	for _, tag := range item.Tags {
		lowered := strings.ToLower(tag)
		if strings.Contains(lowered, q) {
			score += tagContainsScore
		}
		if lowered == q {
			score += tagExactScore
		}
	}

	// Fuzzy is strictly a fallback: it never adds to a direct match.
	if score == 0 && e.opts.Fuzzy && matchesSubsequence(q, title) {
		score = fuzzyFallbackScore
	}

	return score
}

// matchesSubsequence reports whether every rune of q appears in target in
// order, not necessarily contiguously.
func matchesSubsequence(q, target string) bool {
	if q == "" {
		return false
	}
	remaining := []rune(q)
	for _, r := range target {
		if r == remaining[0] {
			remaining = remaining[1:]
			if len(remaining) == 0 {
				return true
			}
		}
	}
	return false
}

// SearchAndFilter composes search, filter and sort. Search runs first when
// a non-empty query is supplied, then the criteria filter, then the sort.
// With a non-empty query the sort step is skipped: search already ordered
// the result by relevance and re-sorting would discard that ranking.
func (e *Engine) SearchAndFilter(query string, items []task.Task, criteria *Criteria, sortBy SortOption) []task.Task {
	result := items
	hasQuery := strings.TrimSpace(query) != ""

	if hasQuery {
		result = e.Search(query, result)
	}
	if criteria != nil {
		result = e.Filter(result, *criteria)
	}
	if !hasQuery && sortBy != SortNone {
		result = e.Sort(result, sortBy)
	}

	// Always hand back a fresh slice, whichever branches ran.
	out := make([]task.Task, len(result))
	copy(out, result)
	return out
}
