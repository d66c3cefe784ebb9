// Package dedupe groups fingerprinted files into duplicate groups and selects
// the single keeper for each group.
//
// Grouping is pure computation over its input: no filesystem access, no side
// effects. Exact mode groups by fingerprint equality; perceptual mode greedily
// clusters records, in lexical path order, against the first member of each
// existing group so the outcome is deterministic for a given input set.
package dedupe

import (
	"sort"

	"snapsort/internal/config"
	"snapsort/internal/fingerprint"
	"snapsort/internal/scan"
)

// Entry pairs a scanned record with its fingerprint.
type Entry struct {
	Record      scan.Record
	Fingerprint fingerprint.Fingerprint
}

// Group is a set of entries considered duplicates of one another. Exactly one
// member is the keeper; the rest are subject to the duplicate policy.
type Group struct {
	Keeper     Entry
	Duplicates []Entry
}

// Size returns the total number of members including the keeper.
func (g Group) Size() int { return 1 + len(g.Duplicates) }

// Groups partitions entries into duplicate groups according to the detector
// configuration. The result is ordered by keeper path.
func Groups(entries []Entry, cfg *config.Config) []Group {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Record.Path < sorted[j].Record.Path
	})

	var clusters [][]Entry
	if cfg.Detector.Mode == config.ModePerceptual {
		clusters = clusterPerceptual(sorted, cfg.Detector.DistanceThreshold)
	} else {
		clusters = clusterExact(sorted)
	}

	groups := make([]Group, 0, len(clusters))
	for _, members := range clusters {
		keeper, rest := SelectKeeper(members)
		groups = append(groups, Group{Keeper: keeper, Duplicates: rest})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Keeper.Record.Path < groups[j].Keeper.Record.Path
	})
	return groups
}

func clusterExact(entries []Entry) [][]Entry {
	index := make(map[string]int)
	var clusters [][]Entry
	for _, entry := range entries {
		key := entry.Fingerprint.String()
		if i, ok := index[key]; ok {
			clusters[i] = append(clusters[i], entry)
			continue
		}
		index[key] = len(clusters)
		clusters = append(clusters, []Entry{entry})
	}
	return clusters
}

// clusterPerceptual joins an entry to the first cluster whose exemplar (first
// member) is within the threshold. Digest-fallback fingerprints only match by
// equality.
func clusterPerceptual(entries []Entry, threshold int) [][]Entry {
	var clusters [][]Entry
next:
	for _, entry := range entries {
		for i := range clusters {
			exemplar := clusters[i][0].Fingerprint
			if entry.Fingerprint.Equal(exemplar) {
				clusters[i] = append(clusters[i], entry)
				continue next
			}
			if dist, ok := entry.Fingerprint.Distance(exemplar); ok && dist <= threshold {
				clusters[i] = append(clusters[i], entry)
				continue next
			}
		}
		clusters = append(clusters, []Entry{entry})
	}
	return clusters
}
