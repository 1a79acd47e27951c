package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the cross-references between all catalog sections.
//
// Postcondition: Returns nil if the catalog is consistent, or an error
// describing all violations.
func (c *Catalog) Validate() error {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	add(c.game.Validate())
	add(c.player.Validate())

	seenWeapons := make(map[string]bool, len(c.weapons))
	for _, w := range c.weapons {
		add(w.Validate())
		if seenWeapons[w.ID] {
			errs = append(errs, fmt.Sprintf("weapon %q defined more than once", w.ID))
		}
		seenWeapons[w.ID] = true
	}
	seenMonsters := make(map[string]bool, len(c.monsters))
	for _, m := range c.monsters {
		add(m.Validate())
		if seenMonsters[m.ShortName] {
			errs = append(errs, fmt.Sprintf("monster %q defined more than once", m.ShortName))
		}
		seenMonsters[m.ShortName] = true
	}
	for _, id := range c.LevelIDs() {
		add(c.levels[id].Validate())
	}
	for _, s := range c.subGames {
		add(s.Validate())
	}

	if c.game.DefaultLevelID != "" && !c.HasLevel(c.game.DefaultLevelID) {
		errs = append(errs, fmt.Sprintf("game.default_level_id %q is not a registered level", c.game.DefaultLevelID))
	}
	if c.game.ProtectedWeaponID != "" && !seenWeapons[c.game.ProtectedWeaponID] {
		errs = append(errs, fmt.Sprintf("game.protected_weapon_id %q is not in the weapon catalog", c.game.ProtectedWeaponID))
	}
	for _, ref := range c.player.Weapons {
		if !seenWeapons[ref.ID] {
			errs = append(errs, fmt.Sprintf("player weapon %q is not in the weapon catalog", ref.ID))
		}
	}
	for _, id := range c.player.RangedWeaponInventoryIDs {
		if !seenWeapons[id] {
			errs = append(errs, fmt.Sprintf("player ranged weapon %q is not in the weapon catalog", id))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks that the game limits are usable.
func (g GameConfig) Validate() error {
	var errs []string
	if g.GridWidth < 1 || g.GridHeight < 1 {
		errs = append(errs, fmt.Sprintf("game grid must be at least 1x1, got %dx%d", g.GridWidth, g.GridHeight))
	}
	if g.MaxAttackers < 1 {
		errs = append(errs, fmt.Sprintf("game.max_attackers must be >= 1, got %d", g.MaxAttackers))
	}
	if g.SaveVersion == "" {
		errs = append(errs, "game.save_version must not be empty")
	}
	if g.DefaultLevelID == "" {
		errs = append(errs, "game.default_level_id must not be empty")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks the player template invariants.
func (p Player) Validate() error {
	var errs []string
	if p.ID == "" {
		errs = append(errs, "player.id must not be empty")
	}
	if p.Name == "" {
		errs = append(errs, "player.name must not be empty")
	}
	if p.MaxHP < 1 {
		errs = append(errs, fmt.Sprintf("player.max_hp must be >= 1, got %d", p.MaxHP))
	}
	if p.CurrentHP < 0 || p.CurrentHP > p.MaxHP {
		errs = append(errs, fmt.Sprintf("player.current_hp must be in [0, %d], got %d", p.MaxHP, p.CurrentHP))
	}
	if p.EquippedRangedWeaponID != nil && !p.OwnsRangedWeapon(*p.EquippedRangedWeaponID) {
		errs = append(errs, fmt.Sprintf("player equipped ranged weapon %q is not owned", *p.EquippedRangedWeaponID))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks a weapon definition.
func (w Weapon) Validate() error {
	var errs []string
	if w.ID == "" {
		errs = append(errs, "weapon id must not be empty")
	}
	if w.Name == "" {
		errs = append(errs, fmt.Sprintf("weapon %q: name must not be empty", w.ID))
	}
	if w.WeaponType != WeaponMelee && w.WeaponType != WeaponRanged {
		errs = append(errs, fmt.Sprintf("weapon %q: weapon_type must be melee or ranged, got %q", w.ID, w.WeaponType))
	}
	if w.Damage < 0 {
		errs = append(errs, fmt.Sprintf("weapon %q: damage must be >= 0", w.ID))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks a monster template.
func (m MonsterTemplate) Validate() error {
	var errs []string
	if m.ShortName == "" {
		errs = append(errs, "monster short_name must not be empty")
	}
	if m.Name == "" {
		errs = append(errs, fmt.Sprintf("monster %q: name must not be empty", m.ShortName))
	}
	if m.MaxHP < 1 {
		errs = append(errs, fmt.Sprintf("monster %q: max_hp must be >= 1", m.ShortName))
	}
	if m.SpawnChance < 0 || m.SpawnChance > 1 || m.SpawnRate < 0 || m.SpawnRate > 1 {
		errs = append(errs, fmt.Sprintf("monster %q: spawn_rate and spawn_chance must be in [0, 1]", m.ShortName))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks a level definition.
func (l Level) Validate() error {
	var errs []string
	if l.ID == "" {
		errs = append(errs, "level id must not be empty")
	}
	if l.Name == "" {
		errs = append(errs, fmt.Sprintf("level %q: name must not be empty", l.ID))
	}
	if l.BoardSize.Width < 1 || l.BoardSize.Height < 1 {
		errs = append(errs, fmt.Sprintf("level %q: board_size must be at least 1x1", l.ID))
	} else if l.PlayerSpawn.Row < 0 || l.PlayerSpawn.Row >= l.BoardSize.Height ||
		l.PlayerSpawn.Col < 0 || l.PlayerSpawn.Col >= l.BoardSize.Width {
		errs = append(errs, fmt.Sprintf("level %q: player_spawn %v is outside the board", l.ID, l.PlayerSpawn))
	}
	seen := make(map[string]bool, len(l.Monsters))
	for _, m := range l.Monsters {
		if m.ID == "" {
			errs = append(errs, fmt.Sprintf("level %q: monster without id", l.ID))
			continue
		}
		if seen[m.ID] {
			errs = append(errs, fmt.Sprintf("level %q: monster id %q used more than once", l.ID, m.ID))
		}
		seen[m.ID] = true
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks a sub-game registry entry.
func (s SubGame) Validate() error {
	if s.ID == "" {
		return errors.New("sub-game id must not be empty")
	}
	if s.Title == "" {
		return fmt.Errorf("sub-game %q: title must not be empty", s.ID)
	}
	return nil
}
