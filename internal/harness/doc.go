// Package harness runs cache hydration scenarios described in YAML.
//
// A scenario seeds a fresh cache store, commits the mutations that arrived
// from the network before startup, attaches the cache, commits the
// mutations made afterwards and then checks the resulting state, the cache
// contents and the number of writes per slice.
//
// # Scenario Format
//
//	name: network_wins
//	description: "Stations fetched before hydration replace the stale cache"
//	backend: sqlite              # or bolt; default sqlite
//	cache:                       # records present before startup
//	  stations: [{id: a}, {id: b}]
//	corrupt:                     # raw, undecodable records
//	  dashboard: "{oops"
//	network:                     # committed before Attach
//	  - kind: setStations
//	    payload: [{id: a}, {id: b}, {id: c}]
//	mutations:                   # committed after Attach
//	  - kind: addBookmark
//	    payload: {station: a}
//	expect:
//	  decisions: {stations: memory}
//	  repaired: []
//	  state: {stations: [{id: a}, {id: b}, {id: c}]}
//	  cache: {stations: [{id: a}, {id: b}, {id: c}]}
//	  writes: {stations: 1}
//
// Every expect section is optional but at least one must be present.
// state and cache compare whole slice values; writes counts replace-writes
// issued after seeding.
//
// # Golden Files
//
// RunWithGolden snapshots the decisions, commits, state, cache and write
// counts as canonical JSON under testdata/golden/<name>.golden. Regenerate
// with:
//
//	go test ./internal/harness -update
package harness
