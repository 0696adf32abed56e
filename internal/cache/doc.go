// Package cache keeps the persisted slices of the application state in a
// durable record store.
//
// A Cache has two jobs:
//
//  1. Hydration. Attach reads every cached slice once and reconciles it with
//     the in-memory state. Memory that is already populated wins and is
//     written back over the cache; otherwise a non-empty cached value is
//     adopted into memory; otherwise the default stays.
//  2. Sync. After hydration every mutation whose kind maps to a slice
//     schedules a replace-write of that slice's full value. Writes run on one
//     goroutine per slice, so the last mutation submitted is the last one
//     written.
//
// Lifecycle:
//
//	c, err := cache.Open(ctx, store.Options{Path: path})
//	if err != nil { ... }            // fatal
//	report, err := c.Attach(ctx, app) // err is fatal
//	...
//	c.Close()
//
// Write failures are logged and counted but never surface to the code that
// committed the mutation.
package cache
