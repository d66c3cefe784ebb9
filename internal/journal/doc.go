// Package journal persists an audit trail of runs in SQLite.
//
// It is history, not an index: every run still recomputes fingerprints from
// the filesystem. The journal records, per run, the configuration that was in
// effect, the final counters, and one action row for every move, delete, and
// quarantine, so "what happened to that file" stays answerable after the
// fact. Dry runs are never journaled.
package journal
