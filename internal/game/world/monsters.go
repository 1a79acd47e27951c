package world

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

const (
	spawnMinRadius = 5
	spawnMaxRadius = 15
	spawnAttempts  = 10
	// awakenDistance applies when a great power's condition names no
	// distance of its own.
	awakenDistance = 3
)

// MoveMonsters steps every living active monster toward the player, up to
// its move rate, stopping once adjacent. Nothing moves during combat or
// while the player is hidden.
func (w *Interactions) MoveMonsters(s *state.GameState) []action.Action {
	if s.InCombat || s.GameOver || s.Player.IsHidden || s.Player.HideActive {
		return nil
	}
	occupied := make(map[catalog.Position]bool, len(s.ActiveMonsters))
	for _, m := range s.ActiveMonsters {
		occupied[m.Position] = true
	}

	target := s.Player.Position
	var out []action.Action
	for _, m := range s.ActiveMonsters {
		if !m.IsAlive() {
			continue
		}
		pos := m.Position
		for range max(m.MoveRate, 1) {
			if pos.Chebyshev(target) <= 1 {
				break
			}
			next := stepToward(pos, target)
			if occupied[next] || next == target {
				break
			}
			delete(occupied, pos)
			occupied[next] = true
			pos = next
		}
		if pos != m.Position {
			out = append(out, action.MoveMonster{ID: m.ID, Position: pos})
		}
	}
	return out
}

// stepToward moves one tile along the axis with the larger gap, rows first
// on ties.
func stepToward(from, to catalog.Position) catalog.Position {
	dr, dc := to.Row-from.Row, to.Col-from.Col
	switch {
	case dr != 0 && abs(dr) >= abs(dc):
		from.Row += sign(dr)
	case dc != 0:
		from.Col += sign(dc)
	}
	return from
}

// SpawnWanderers rolls each monster kind's spawn odds and places the
// winners 5 to 15 tiles from the player. Kinds at their instance cap are
// skipped.
func (w *Interactions) SpawnWanderers(s *state.GameState) []action.Action {
	if s.InCombat || s.GameOver {
		return nil
	}
	taken := make(map[catalog.Position]bool, len(s.ActiveMonsters))
	for _, m := range s.ActiveMonsters {
		taken[m.Position] = true
	}
	var out []action.Action
	for _, t := range w.catalog.MonsterTemplates() {
		if t.SpawnRate <= 0 || t.SpawnChance <= 0 {
			continue
		}
		count := 0
		for _, m := range s.ActiveMonsters {
			if m.ShortName == t.ShortName {
				count++
			}
		}
		if t.MaxInstances > 0 && count >= t.MaxInstances {
			continue
		}
		if float64(w.roller.Intn(10000)) >= t.SpawnRate*t.SpawnChance*10000 {
			continue
		}
		pos := w.spawnPosition(s, taken)
		taken[pos] = true
		m := t.Instantiate(fmt.Sprintf("%s-%s", t.ShortName, w.newID()), pos)
		out = append(out,
			action.SpawnMonster{Monster: m},
			dialog(fmt.Sprintf("%s has appeared!", t.Name)),
		)
		w.logger.Debug("wandering monster spawned",
			zap.String("monster_id", m.ID),
			zap.Int("row", pos.Row),
			zap.Int("col", pos.Col),
		)
	}
	return out
}

func (w *Interactions) spawnPosition(s *state.GameState, taken map[catalog.Position]bool) catalog.Position {
	p := s.Player.Position
	for range spawnAttempts {
		angle := float64(w.roller.Intn(360)) * math.Pi / 180
		radius := float64(w.roller.Between(spawnMinRadius, spawnMaxRadius))
		at := catalog.Position{
			Row: min(max(p.Row+int(math.Round(math.Sin(angle)*radius)), 0), s.GridHeight-1),
			Col: min(max(p.Col+int(math.Round(math.Cos(angle)*radius)), 0), s.GridWidth-1),
		}
		if at.Chebyshev(p) > 1 && !taken[at] {
			return at
		}
	}
	return catalog.Position{Row: s.GridHeight / 2, Col: s.GridWidth / 2}
}

// AwakenGreatPowers wakes any dormant great power the player has come too
// close to. An awakened Watcher consumes the player's soul.
func (w *Interactions) AwakenGreatPowers(s *state.GameState) []action.Action {
	if s.GameOver {
		return nil
	}
	p := s.Player.Position
	for _, g := range s.GreatPowers {
		if g.Awakened || !g.Active {
			continue
		}
		reach := awakenReach(g.AwakenCondition)
		if reach < 0 || distanceToFootprint(g, p) > reach {
			continue
		}
		w.logger.Info("great power awakened", zap.String("great_power", g.ID))
		return []action.Action{
			action.AwakenGreatPower{GreatPowerID: g.ID},
			action.TriggerEffect{Effect: catalog.Effect{Type: catalog.EffectSoulsuck}, Position: &p},
		}
	}
	return nil
}

// awakenReach parses "player_within_N". Returns -1 for conditions that are
// not proximity based.
func awakenReach(cond string) int {
	switch {
	case cond == "" || cond == "player_within_range":
		return awakenDistance
	case strings.HasPrefix(cond, "player_within_"):
		n, err := strconv.Atoi(strings.TrimPrefix(cond, "player_within_"))
		if err != nil || n < 0 {
			return -1
		}
		return n
	}
	return -1
}

func distanceToFootprint(g catalog.GreatPower, p catalog.Position) int {
	w, h := 1, 1
	if g.Size != nil {
		w, h = max(g.Size.Width, 1), max(g.Size.Height, 1)
	}
	row := min(max(p.Row, g.Position.Row), g.Position.Row+h-1)
	col := min(max(p.Col, g.Position.Col), g.Position.Col+w-1)
	return p.Chebyshev(catalog.Position{Row: row, Col: col})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
