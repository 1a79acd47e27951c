package reducer

import (
	"slices"

	"github.com/gregoftheweb/nightland/internal/game/catalog"
)

// mapMonsters returns a new slice with fn applied to every monster whose id
// matches, and whether any matched.
func mapMonsters(in []catalog.Monster, id string, fn func(catalog.Monster) catalog.Monster) ([]catalog.Monster, bool) {
	out := make([]catalog.Monster, len(in))
	found := false
	for i, m := range in {
		if m.ID == id {
			m = fn(m)
			found = true
		}
		out[i] = m
	}
	return out, found
}

// withoutMonster returns in minus the monster with id, and whether it was
// present.
func withoutMonster(in []catalog.Monster, id string) ([]catalog.Monster, bool) {
	out := make([]catalog.Monster, 0, len(in))
	for _, m := range in {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out, len(out) != len(in)
}

func hasMonster(in []catalog.Monster, id string) bool {
	return slices.ContainsFunc(in, func(m catalog.Monster) bool { return m.ID == id })
}

func emptyMonsters() []catalog.Monster { return []catalog.Monster{} }

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
