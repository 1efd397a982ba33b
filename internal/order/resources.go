package order

import (
	"maps"
	"slices"
	"strings"

	"github.com/jask/oelview/internal/api"
)

// canonical building-material order; anything else follows alphabetically.
var resourceRank = map[string]int{
	"wood":  0,
	"clay":  1,
	"stone": 2,
	"straw": 3,
	"coin":  4,
}

// CompareResourceKinds orders resource kind names canonically.
func CompareResourceKinds(a, b string) int {
	ra, aKnown := resourceRank[a]
	rb, bKnown := resourceRank[b]
	switch {
	case aKnown && bKnown:
		return ra - rb
	case aKnown:
		return -1
	case bKnown:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// ResourceKinds returns kind names in canonical order.
func ResourceKinds(kinds []string) []string {
	out := slices.Clone(kinds)
	slices.SortStableFunc(out, CompareResourceKinds)
	return out
}

// Resources returns goods in canonical order of their names.
func Resources(goods []api.Goods) []api.Goods {
	out := slices.Clone(goods)
	slices.SortStableFunc(out, func(a, b api.Goods) int {
		return CompareResourceKinds(a.Name, b.Name)
	})
	return out
}

// ResourceMap flattens a seat's goods map into canonical order. Map keys are
// used as the kind when an entry carries no name of its own.
func ResourceMap(goods map[string]api.Goods) []api.Goods {
	list := make([]api.Goods, 0, len(goods))
	for _, k := range slices.Sorted(maps.Keys(goods)) {
		g := goods[k]
		if g.Name == "" {
			g.Name = k
		}
		list = append(list, g)
	}
	return Resources(list)
}
