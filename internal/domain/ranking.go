package domain

import "sort"

// RankTop orders entries by score descending, keeping insertion order for ties,
// and returns at most n of them. The input slice is not modified.
func RankTop(entries []LeaderboardEntry, n int) []LeaderboardEntry {
	if n <= 0 || len(entries) == 0 {
		return []LeaderboardEntry{}
	}
	ranked := make([]LeaderboardEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
