// Package stats contains statistics calculations and reporting.
package stats

import (
	"sort"

	"github.com/verte-zerg/keytally/internal/model"
)

// TopKeys returns the top N keys by count. Ties keep first-seen order.
func TopKeys(counts []model.KeyCount, n int) []model.KeyCount {
	if n <= 0 || len(counts) == 0 {
		return nil
	}
	items := make([]model.KeyCount, len(counts))
	copy(items, counts)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Count > items[j].Count
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
