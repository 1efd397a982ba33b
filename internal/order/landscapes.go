package order

import (
	"cmp"
	"maps"
	"slices"

	"github.com/jask/oelview/internal/api"
)

// Landscapes orders tiles by grid position: row, then column, then type.
func Landscapes(ls []api.Landscape) []api.Landscape {
	out := slices.Clone(ls)
	slices.SortStableFunc(out, func(a, b api.Landscape) int {
		return cmp.Or(
			cmp.Compare(a.Row, b.Row),
			cmp.Compare(a.Column, b.Column),
			cmp.Compare(a.LandscapeType, b.LandscapeType),
		)
	})
	return out
}

// LandscapeGroup is one landscape type with its tiles.
type LandscapeGroup struct {
	Type  string
	Tiles []api.Landscape
}

// GroupLandscapes turns a type-keyed landscape map into groups sorted by type,
// each group ordered by Landscapes. Empty groups are kept so the renderer can
// show a sold-out type.
func GroupLandscapes(byType map[string][]api.Landscape) []LandscapeGroup {
	keys := slices.Sorted(maps.Keys(byType))
	out := make([]LandscapeGroup, 0, len(keys))
	for _, k := range keys {
		out = append(out, LandscapeGroup{Type: k, Tiles: Landscapes(byType[k])})
	}
	return out
}
