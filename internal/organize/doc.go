// Package organize files keepers into the timeline tree and applies the
// duplicate policy to the rest of each group.
//
// Destinations derive purely from the keeper's capture time and the
// configured folder layout, so the same timestamp always maps to the same
// folder. The organizer never overwrites: a destination occupied by different
// content gets a deterministic counter suffix, and a destination already
// holding identical content makes the incoming keeper redundant. Removals are
// never silent; every operation is returned to the caller for journaling and
// logged with the fingerprint that justified it.
package organize
