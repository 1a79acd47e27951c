package savegame

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gregoftheweb/nightland/internal/game/state"
)

// Fingerprint summarises the parts of s whose change warrants an autosave.
// Two states with equal fingerprints are treated as the same save.
func Fingerprint(s *state.GameState) string {
	var b strings.Builder
	p := s.Player
	fmt.Fprintf(&b, "%s|%d,%d|%d|%d|%d|%d|%d|%t|",
		s.CurrentLevelID,
		p.Position.Row, p.Position.Col,
		p.CurrentHP,
		len(p.Inventory),
		len(p.Weapons),
		s.MoveCount,
		s.MonstersKilled,
		s.InCombat,
	)
	writeFlags(&b, s.SubGamesCompleted)
	b.WriteByte('|')
	writeFlags(&b, s.WaypointSavesCreated)
	return b.String()
}

func writeFlags(b *strings.Builder, flags map[string]bool) {
	for i, k := range slices.Sorted(maps.Keys(flags)) {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "%s=%t", k, flags[k])
	}
}
