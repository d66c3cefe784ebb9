// Package pipeline runs the full photo organization sequence: scan the
// source tree, resolve capture times, fingerprint every file, group
// duplicates, file keepers into the timeline, and journal what happened.
//
// A run holds the process lock for its duration. Dry runs execute every
// stage except the mutating one and never touch the journal.
package pipeline
