package algo

import (
	"slices"

	"github.com/huangsam/transcomplex/schema"
)

// RankItems sorts batch items by overall score in descending order and returns
// the top 'limit' items. Failed items sort last and keep their input order.
// A limit of 0 or less returns everything. The input slice is not modified.
func RankItems(items []schema.BatchItem, limit int) []schema.BatchItem {
	ranked := slices.Clone(items)
	slices.SortStableFunc(ranked, func(a, b schema.BatchItem) int {
		switch {
		case a.Result == nil && b.Result == nil:
			return 0
		case a.Result == nil:
			return 1
		case b.Result == nil:
			return -1
		case a.Result.Overall > b.Result.Overall:
			return -1
		case a.Result.Overall < b.Result.Overall:
			return 1
		default:
			return 0
		}
	})
	if limit > 0 && len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}
