// Package procview turns a raw per-tick process list into the ordered list
// the dashboard paints.
//
// # Derivations
//
// Filter, Sort and BuildTree are pure functions over []process.Record. State
// applies them in a fixed order on every re-derivation:
//
//	filter -> sort -> tree -> follow -> clamp
//
// Filtering preserves relative order and sorting is stable, so filtering
// before sorting yields the same list as sorting first.
//
// # Intents
//
// State owns every view toggle (sort, filter, search, user, tags, follow,
// tree, collapse, threads, hide-kernel) and the selection. Intents mutate
// the state and re-derive immediately, so the derived rows are always
// consistent with the toggles.
package procview
