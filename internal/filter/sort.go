package filter

import (
	"sort"
	"strings"

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"
)

// SortKey selects the ordering applied by Sort.
type SortKey string

const (
	DateDesc SortKey = "date_desc"
	DateAsc  SortKey = "date_asc"
	CostDesc SortKey = "cost_desc"
	CostAsc  SortKey = "cost_asc"
)

// ParseSortKey maps a query value to a SortKey. Unknown or empty values
// fall back to DateDesc.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case DateAsc, CostDesc, CostAsc:
		return k
	default:
		return DateDesc
	}
}

// Sort returns a stably sorted copy of posts. A missing cost counts as 0.
func Sort(posts []models.Post, key SortKey) []models.Post {
	out := make([]models.Post, len(posts))
	copy(out, posts)

	var less func(a, b models.Post) bool
	switch ParseSortKey(string(key)) {
	case DateAsc:
		less = func(a, b models.Post) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case CostDesc:
		less = func(a, b models.Post) bool { return cost(a) > cost(b) }
	case CostAsc:
		less = func(a, b models.Post) bool { return cost(a) < cost(b) }
	default:
		less = func(a, b models.Post) bool { return a.CreatedAt.After(b.CreatedAt) }
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func cost(p models.Post) float64 {
	if p.ActualCost == nil {
		return 0
	}
	return *p.ActualCost
}
