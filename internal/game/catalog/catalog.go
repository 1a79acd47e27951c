// Package catalog provides the static, read-only game content: levels, the
// player template, the weapon catalog, monster templates, the sub-game
// registry and global game limits. Content is loaded from YAML.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownLevel is returned when a level id is not in the registry.
var ErrUnknownLevel = errors.New("unknown level")

//go:embed defaults
var defaultContent embed.FS

// Catalog is the immutable content registry. All accessors return copies;
// callers may mutate results freely without affecting the catalog.
type Catalog struct {
	game     GameConfig
	player   Player
	weapons  []Weapon
	monsters []MonsterTemplate
	levels   map[string]Level
	subGames []SubGame
}

type gameFile struct {
	Game   GameConfig `yaml:"game"`
	Player Player     `yaml:"player"`
}

type weaponsFile struct {
	Weapons []Weapon `yaml:"weapons"`
}

type monstersFile struct {
	Monsters []MonsterTemplate `yaml:"monsters"`
}

type subGamesFile struct {
	SubGames []SubGame `yaml:"sub_games"`
}

// Default returns the catalog built from the embedded content.
//
// Postcondition: Returns a validated Catalog or a non-nil error.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(defaultContent, "defaults")
	if err != nil {
		return nil, fmt.Errorf("catalog: opening embedded content: %w", err)
	}
	return Load(sub)
}

// LoadDir loads a catalog from a content directory laid out like the
// embedded defaults: game.yaml, weapons.yaml, monsters.yaml, sub_games.yaml
// and levels/*.yaml.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a validated Catalog or a non-nil error.
func LoadDir(dir string) (*Catalog, error) {
	return Load(os.DirFS(dir))
}

// Load reads and validates a catalog from fsys.
//
// Postcondition: Returns a validated Catalog or a non-nil error naming the
// offending file.
func Load(fsys fs.FS) (*Catalog, error) {
	var gf gameFile
	if err := decodeFile(fsys, "game.yaml", &gf); err != nil {
		return nil, err
	}
	var wf weaponsFile
	if err := decodeFile(fsys, "weapons.yaml", &wf); err != nil {
		return nil, err
	}
	var mf monstersFile
	if err := decodeFile(fsys, "monsters.yaml", &mf); err != nil {
		return nil, err
	}
	var sf subGamesFile
	if err := decodeFile(fsys, "sub_games.yaml", &sf); err != nil {
		return nil, err
	}

	entries, err := fs.ReadDir(fsys, "levels")
	if err != nil {
		return nil, fmt.Errorf("catalog: reading levels directory: %w", err)
	}
	var levels []Level
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}
		var lvl Level
		if err := decodeFile(fsys, path.Join("levels", entry.Name()), &lvl); err != nil {
			return nil, err
		}
		levels = append(levels, lvl)
	}

	return New(gf.Game, gf.Player, wf.Weapons, mf.Monsters, levels, sf.SubGames)
}

// New assembles a catalog from already-decoded content and validates it.
//
// Postcondition: Returns a validated Catalog or an error describing every
// violation found.
func New(game GameConfig, player Player, weapons []Weapon, monsters []MonsterTemplate, levels []Level, subGames []SubGame) (*Catalog, error) {
	c := &Catalog{
		game:     game,
		player:   player.Clone(),
		weapons:  CloneWeapons(weapons),
		monsters: slices.Clone(monsters),
		levels:   make(map[string]Level, len(levels)),
		subGames: slices.Clone(subGames),
	}
	var errs []string
	for _, lvl := range levels {
		if _, dup := c.levels[lvl.ID]; dup {
			errs = append(errs, fmt.Sprintf("level %q defined more than once", lvl.ID))
			continue
		}
		c.levels[lvl.ID] = normalizeLevel(lvl.Clone())
	}
	if err := c.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("catalog validation failed: %s", strings.Join(errs, "; "))
	}
	return c, nil
}

func decodeFile(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("catalog: reading %q: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("catalog: parsing %q: %w", name, err)
	}
	return nil
}

// normalizeLevel fills in defaults omitted by level files: great powers and
// level monsters start at full health.
func normalizeLevel(l Level) Level {
	for i := range l.GreatPowers {
		if l.GreatPowers[i].CurrentHP == 0 {
			l.GreatPowers[i].CurrentHP = l.GreatPowers[i].MaxHP
		}
	}
	for i := range l.Monsters {
		if l.Monsters[i].CurrentHP == 0 {
			l.Monsters[i].CurrentHP = l.Monsters[i].MaxHP
		}
	}
	return l
}

// Game returns the global game configuration.
func (c *Catalog) Game() GameConfig { return c.game }

// Player returns a fresh copy of the player template.
func (c *Catalog) Player() Player { return c.player.Clone() }

// Weapons returns a copy of the weapon catalog in definition order.
func (c *Catalog) Weapons() []Weapon { return CloneWeapons(c.weapons) }

// Weapon looks up a catalog weapon by id.
func (c *Catalog) Weapon(id string) (Weapon, bool) {
	for _, w := range c.weapons {
		if w.ID == id {
			return w, true
		}
	}
	return Weapon{}, false
}

// MonsterTemplates returns all monster templates in definition order.
func (c *Catalog) MonsterTemplates() []MonsterTemplate { return slices.Clone(c.monsters) }

// MonsterTemplate looks up a monster template by short name.
func (c *Catalog) MonsterTemplate(shortName string) (MonsterTemplate, bool) {
	for _, m := range c.monsters {
		if m.ShortName == shortName {
			return m, true
		}
	}
	return MonsterTemplate{}, false
}

// HasLevel reports whether id is a registered level.
func (c *Catalog) HasLevel(id string) bool {
	_, ok := c.levels[id]
	return ok
}

// Level returns a deep copy of the level registered under id.
//
// Postcondition: Returns ErrUnknownLevel (wrapped) when id is not registered.
func (c *Catalog) Level(id string) (Level, error) {
	lvl, ok := c.levels[id]
	if !ok {
		return Level{}, fmt.Errorf("%w: %q", ErrUnknownLevel, id)
	}
	return lvl.Clone(), nil
}

// LevelIDs returns every registered level id in sorted order.
func (c *Catalog) LevelIDs() []string {
	ids := make([]string, 0, len(c.levels))
	for id := range c.levels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SubGames returns the sub-game registry in definition order.
func (c *Catalog) SubGames() []SubGame { return slices.Clone(c.subGames) }

// SubGame looks up a sub-game by id.
func (c *Catalog) SubGame(id string) (SubGame, bool) {
	for _, s := range c.subGames {
		if s.ID == id {
			return s, true
		}
	}
	return SubGame{}, false
}
