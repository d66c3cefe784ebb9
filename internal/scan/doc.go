// Package scan walks the source tree and produces the Records the rest of
// the pipeline operates on.
//
// The walk is finite and deterministic: entries are visited in lexical order,
// only regular files with a recognized image extension are emitted, and junk
// names plus the output-side directories (quarantine, logs) are skipped so a
// rerun over an already-organized tree never picks up its own output.
package scan
