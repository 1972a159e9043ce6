// Package app is the composition root. Config locates the on-disk layout
// and tuning knobs, Core bootstraps every subsystem in dependency order
// (logging, settings, flags, environments, cache, session, sync,
// connectivity), and Agent runs the long-lived background mode on top of
// a Core. Commands depend on this package and nothing below it wires
// siblings together.
package app
