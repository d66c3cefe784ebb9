package dedupe

import "sort"

// SelectKeeper picks the single member to retain from a duplicate group.
// Tie-break order: earliest capture time, then larger file size, then
// lexicographically smaller path. The remaining members are returned in
// lexical path order.
func SelectKeeper(members []Entry) (Entry, []Entry) {
	if len(members) == 0 {
		return Entry{}, nil
	}

	keeperIdx := 0
	for i := 1; i < len(members); i++ {
		if prefer(members[i], members[keeperIdx]) {
			keeperIdx = i
		}
	}

	keeper := members[keeperIdx]
	rest := make([]Entry, 0, len(members)-1)
	for i, member := range members {
		if i != keeperIdx {
			rest = append(rest, member)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		return rest[i].Record.Path < rest[j].Record.Path
	})
	return keeper, rest
}

func prefer(a, b Entry) bool {
	at, bt := a.Record.CaptureTime, b.Record.CaptureTime
	switch {
	case at.IsZero() && !bt.IsZero():
		return false
	case !at.IsZero() && bt.IsZero():
		return true
	case !at.Equal(bt):
		return at.Before(bt)
	}
	if a.Record.Size != b.Record.Size {
		return a.Record.Size > b.Record.Size
	}
	return a.Record.Path < b.Record.Path
}
