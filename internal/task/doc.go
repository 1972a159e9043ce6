// Package task defines the task model, the provider boundary tasks are
// fetched through, and the local SQLite cache that serves offline reads.
//
// The model is deliberately small: a task has identity, text, status,
// priority, tags and timestamps. Mutation happens upstream; deckhand only
// syncs, caches and queries.
package task
