// Package search implements relevance search, criteria filtering and
// deterministic sorting over task collections.
//
// Search scores each task against a query with additive weights: hits on
// the title count most, with extra weight for exact and prefix matches,
// then description and tag hits. When a task scores nothing on direct
// matches, an optional fuzzy fallback awards a small score if the query
// appears as an in-order subsequence of the title. Results come back in
// descending score order with ties keeping input order, so the same input
// always yields the same output.
//
// All operations are pure: input slices are never reordered or mutated,
// and every call returns a fresh slice. SearchAndFilter chains the three
// steps, skipping the sort whenever a query was supplied so relevance
// ranking survives.
package search
