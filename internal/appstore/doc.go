// Package appstore is the in-memory application store of the weather-station
// client: the state tree, the mutations that change it and the subscription
// stream other components observe.
//
// ARCHITECTURE:
//
// Serialized Dispatch:
// Every Commit runs under a single dispatch lock. The mutation is applied,
// stamped with the next logical Seq and delivered to every listener before
// the lock is released, so listeners observe mutations in Seq order even when
// commits come from several goroutines.
//
// Copy-on-Write State:
// Reducers never edit a container that an earlier State can see. A State
// value is therefore an immutable snapshot and is handed to listeners without
// copying.
//
// Exclusive:
// Exclusive runs a function while other commits wait. Components that must
// read the state and commit based on what they read (cache hydration) use it
// to avoid racing concurrent commits.
//
// Listeners must not call Commit; they run with the dispatch lock held.
package appstore
