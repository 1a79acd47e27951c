package catalog

// Position is a grid coordinate. Row grows downward, Col grows rightward.
type Position struct {
	Row int `yaml:"row" json:"row"`
	Col int `yaml:"col" json:"col"`
}

// Manhattan returns the taxicab distance between p and o.
func (p Position) Manhattan(o Position) int {
	return abs(p.Row-o.Row) + abs(p.Col-o.Col)
}

// Chebyshev returns the king-move distance between p and o.
func (p Position) Chebyshev(o Position) int {
	return max(abs(p.Row-o.Row), abs(p.Col-o.Col))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Size is the footprint of an entity in tiles.
type Size struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// EffectType names the kind of an Effect.
type EffectType string

const (
	EffectHeal              EffectType = "heal"
	EffectRecuperate        EffectType = "recuperate"
	EffectHide              EffectType = "hide"
	EffectCloaking          EffectType = "cloaking"
	EffectSwarm             EffectType = "swarm"
	EffectSpawn             EffectType = "spawn"
	EffectSoulsuck          EffectType = "soulsuck"
	EffectShowMessage       EffectType = "showMessage"
	EffectUnlockHideAbility EffectType = "unlock_hide_ability"
)

// Effect is a triggered consequence attached to an object, item or pool.
// Only the fields relevant to Type are populated.
type Effect struct {
	Type        EffectType `yaml:"type" json:"type"`
	Value       int        `yaml:"value,omitempty" json:"value,omitempty"`
	Duration    int        `yaml:"duration,omitempty" json:"duration,omitempty"`
	MonsterType string     `yaml:"monster_type,omitempty" json:"monsterType,omitempty"`
	Count       int        `yaml:"count,omitempty" json:"count,omitempty"`
	Range       int        `yaml:"range,omitempty" json:"range,omitempty"`
	Message     string     `yaml:"message,omitempty" json:"message,omitempty"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
}

// WeaponType distinguishes melee from ranged weapons.
type WeaponType string

const (
	WeaponMelee  WeaponType = "melee"
	WeaponRanged WeaponType = "ranged"
)

// Weapon is an entry of the static weapon catalog.
type Weapon struct {
	ID                    string     `yaml:"id" json:"id"`
	ShortName             string     `yaml:"short_name" json:"shortName"`
	Name                  string     `yaml:"name" json:"name"`
	Category              string     `yaml:"category" json:"category"`
	Description           string     `yaml:"description" json:"description"`
	Damage                int        `yaml:"damage" json:"damage"`
	HitBonus              int        `yaml:"hit_bonus" json:"hitBonus"`
	WeaponType            WeaponType `yaml:"weapon_type" json:"weaponType"`
	Range                 int        `yaml:"range,omitempty" json:"range,omitempty"`
	Collectible           bool       `yaml:"collectible" json:"collectible"`
	ProjectileColor       string     `yaml:"projectile_color,omitempty" json:"projectileColor,omitempty"`
	ProjectileLengthPx    int        `yaml:"projectile_length_px,omitempty" json:"projectileLengthPx,omitempty"`
	ProjectileThicknessPx int        `yaml:"projectile_thickness_px,omitempty" json:"projectileThicknessPx,omitempty"`
	ProjectileGlow        bool       `yaml:"projectile_glow,omitempty" json:"projectileGlow,omitempty"`
}

// IsRanged reports whether w fires projectiles.
func (w Weapon) IsRanged() bool { return w.WeaponType == WeaponRanged }

// WeaponRef is a weapon held by the player.
type WeaponRef struct {
	ID       string `yaml:"id" json:"id"`
	Equipped bool   `yaml:"equipped" json:"equipped"`
}

// Item is a collectible or usable thing, either on the board (Position set)
// or in the player's inventory.
type Item struct {
	ID           string    `yaml:"id,omitempty" json:"id,omitempty"`
	ShortName    string    `yaml:"short_name" json:"shortName"`
	Name         string    `yaml:"name" json:"name"`
	Category     string    `yaml:"category" json:"category"`
	Description  string    `yaml:"description,omitempty" json:"description,omitempty"`
	Type         string    `yaml:"type" json:"type"`
	Position     *Position `yaml:"position,omitempty" json:"position,omitempty"`
	Size         *Size     `yaml:"size,omitempty" json:"size,omitempty"`
	Active       bool      `yaml:"active" json:"active"`
	Collectible  bool      `yaml:"collectible" json:"collectible"`
	WeaponID     string    `yaml:"weapon_id,omitempty" json:"weaponId,omitempty"`
	HealAmount   int       `yaml:"heal_amount,omitempty" json:"healAmount,omitempty"`
	Usable       bool      `yaml:"usable,omitempty" json:"usable,omitempty"`
	ConsumeOnUse bool      `yaml:"consume_on_use,omitempty" json:"consumeOnUse,omitempty"`
	Effects      []Effect  `yaml:"effects,omitempty" json:"effects,omitempty"`
}

// Object is an interactive or decorative thing placed on a level.
type Object struct {
	ID           string   `yaml:"id,omitempty" json:"id,omitempty"`
	ShortName    string   `yaml:"short_name" json:"shortName"`
	Name         string   `yaml:"name" json:"name"`
	Category     string   `yaml:"category" json:"category"`
	Description  string   `yaml:"description,omitempty" json:"description,omitempty"`
	Position     Position `yaml:"position" json:"position"`
	Size         *Size    `yaml:"size,omitempty" json:"size,omitempty"`
	Active       bool     `yaml:"active" json:"active"`
	Interactable bool     `yaml:"interactable,omitempty" json:"interactable,omitempty"`
	SubGame      string   `yaml:"sub_game,omitempty" json:"subGame,omitempty"`
	LastTrigger  int64    `yaml:"last_trigger,omitempty" json:"lastTrigger,omitempty"`
	Effects      []Effect `yaml:"effects,omitempty" json:"effects,omitempty"`
}

// Covers reports whether p lies within the object's footprint.
func (o Object) Covers(p Position) bool {
	w, h := 1, 1
	if o.Size != nil {
		w, h = max(o.Size.Width, 1), max(o.Size.Height, 1)
	}
	return p.Row >= o.Position.Row && p.Row < o.Position.Row+h &&
		p.Col >= o.Position.Col && p.Col < o.Position.Col+w
}

// GreatPower is a dormant, level-bound entity that can be awakened.
type GreatPower struct {
	ID              string   `yaml:"id" json:"id"`
	ShortName       string   `yaml:"short_name" json:"shortName"`
	Name            string   `yaml:"name" json:"name"`
	Category        string   `yaml:"category" json:"category"`
	Description     string   `yaml:"description,omitempty" json:"description,omitempty"`
	Position        Position `yaml:"position" json:"position"`
	Size            *Size    `yaml:"size,omitempty" json:"size,omitempty"`
	Active          bool     `yaml:"active" json:"active"`
	CurrentHP       int      `yaml:"current_hp" json:"currentHP"`
	MaxHP           int      `yaml:"max_hp" json:"maxHP"`
	Attack          int      `yaml:"attack" json:"attack"`
	AC              int      `yaml:"ac" json:"ac"`
	Awakened        bool     `yaml:"awakened" json:"awakened"`
	AwakenCondition string   `yaml:"awaken_condition,omitempty" json:"awakenCondition,omitempty"`
}

// MonsterTemplate is the static definition of a monster kind.
type MonsterTemplate struct {
	ShortName    string  `yaml:"short_name"`
	Name         string  `yaml:"name"`
	Category     string  `yaml:"category"`
	Description  string  `yaml:"description"`
	MaxHP        int     `yaml:"max_hp"`
	Attack       int     `yaml:"attack"`
	AC           int     `yaml:"ac"`
	Initiative   int     `yaml:"initiative"`
	MoveRate     int     `yaml:"move_rate"`
	Damage       int     `yaml:"damage"`
	HitBonus     int     `yaml:"hit_bonus"`
	SpawnRate    float64 `yaml:"spawn_rate"`
	SpawnChance  float64 `yaml:"spawn_chance"`
	MaxInstances int     `yaml:"max_instances"`
}

// Instantiate returns a live, full-health monster of this kind.
func (t MonsterTemplate) Instantiate(id string, pos Position) Monster {
	active := true
	return Monster{
		ID:          id,
		TemplateID:  t.ShortName,
		ShortName:   t.ShortName,
		Name:        t.Name,
		Category:    t.Category,
		Description: t.Description,
		Position:    pos,
		CurrentHP:   t.MaxHP,
		MaxHP:       t.MaxHP,
		Attack:      t.Attack,
		AC:          t.AC,
		Initiative:  t.Initiative,
		MoveRate:    t.MoveRate,
		Damage:      t.Damage,
		HitBonus:    t.HitBonus,
		Active:      &active,
		Spawned:     true,
	}
}

// Monster is a monster instance: a template merged with runtime state.
type Monster struct {
	ID           string   `yaml:"id" json:"id"`
	TemplateID   string   `yaml:"template_id" json:"templateId"`
	ShortName    string   `yaml:"short_name" json:"shortName"`
	Name         string   `yaml:"name" json:"name"`
	Category     string   `yaml:"category" json:"category"`
	Description  string   `yaml:"description,omitempty" json:"description,omitempty"`
	Position     Position `yaml:"position" json:"position"`
	CurrentHP    int      `yaml:"current_hp" json:"currentHP"`
	MaxHP        int      `yaml:"max_hp" json:"maxHP"`
	Attack       int      `yaml:"attack" json:"attack"`
	AC           int      `yaml:"ac" json:"ac"`
	Initiative   int      `yaml:"initiative" json:"initiative"`
	MoveRate     int      `yaml:"move_rate" json:"moveRate"`
	Damage       int      `yaml:"damage,omitempty" json:"damage,omitempty"`
	HitBonus     int      `yaml:"hit_bonus,omitempty" json:"hitBonus,omitempty"`
	Active       *bool    `yaml:"active,omitempty" json:"active,omitempty"`
	Spawned      bool     `yaml:"spawned,omitempty" json:"spawned,omitempty"`
	InCombatSlot bool     `yaml:"in_combat_slot,omitempty" json:"inCombatSlot,omitempty"`
}

// IsActive reports whether the monster has not been explicitly deactivated.
// An unset Active flag counts as active.
func (m Monster) IsActive() bool { return m.Active == nil || *m.Active }

// IsAlive reports whether the monster is active with hit points remaining.
func (m Monster) IsAlive() bool { return m.CurrentHP > 0 && m.IsActive() }

// Player is the player character. The catalog holds the template; the
// game state holds the live copy.
type Player struct {
	ID                        string      `yaml:"id" json:"id"`
	ShortName                 string      `yaml:"short_name" json:"shortName"`
	Name                      string      `yaml:"name" json:"name"`
	Description               string      `yaml:"description" json:"description"`
	LastComment               string      `yaml:"last_comment" json:"lastComment"`
	Position                  Position    `yaml:"position" json:"position"`
	CurrentHP                 int         `yaml:"current_hp" json:"currentHP"`
	MaxHP                     int         `yaml:"max_hp" json:"maxHP"`
	AC                        int         `yaml:"ac" json:"ac"`
	Initiative                int         `yaml:"initiative" json:"initiative"`
	Attack                    int         `yaml:"attack" json:"attack"`
	MoveSpeed                 int         `yaml:"move_speed" json:"moveSpeed"`
	IsHidden                  bool        `yaml:"is_hidden" json:"isHidden"`
	HideTurns                 int         `yaml:"hide_turns" json:"hideTurns"`
	Inventory                 []Item      `yaml:"inventory" json:"inventory"`
	MaxInventorySize          int         `yaml:"max_inventory_size" json:"maxInventorySize"`
	Weapons                   []WeaponRef `yaml:"weapons" json:"weapons"`
	MaxWeaponsSize            int         `yaml:"max_weapons_size" json:"maxWeaponsSize"`
	MeleeWeaponID             string      `yaml:"melee_weapon_id" json:"meleeWeaponId"`
	EquippedRangedWeaponID    *string     `yaml:"equipped_ranged_weapon_id" json:"equippedRangedWeaponId"`
	RangedWeaponInventoryIDs  []string    `yaml:"ranged_weapon_inventory_ids" json:"rangedWeaponInventoryIds"`
	HideUnlocked              bool        `yaml:"hide_unlocked" json:"hideUnlocked"`
	HideChargeTurns           int         `yaml:"hide_charge_turns" json:"hideChargeTurns"`
	HideActive                bool        `yaml:"hide_active" json:"hideActive"`
	HideRechargeProgressTurns int         `yaml:"hide_recharge_progress_turns" json:"hideRechargeProgressTurns"`
	CanJaunt                  bool        `yaml:"can_jaunt" json:"canJaunt"`
	SoulKey                   string      `yaml:"soul_key,omitempty" json:"soulKey,omitempty"`
}

// OwnsRangedWeapon reports whether id is in the player's ranged weapon list.
func (p Player) OwnsRangedWeapon(id string) bool {
	for _, owned := range p.RangedWeaponInventoryIDs {
		if owned == id {
			return true
		}
	}
	return false
}

// Level is the static configuration of one playable map.
type Level struct {
	ID                  string       `yaml:"id" json:"id"`
	Name                string       `yaml:"name" json:"name"`
	Description         string       `yaml:"description,omitempty" json:"description,omitempty"`
	BoardSize           Size         `yaml:"board_size" json:"boardSize"`
	PlayerSpawn         Position     `yaml:"player_spawn" json:"playerSpawn"`
	Items               []Item       `yaml:"items" json:"items"`
	Monsters            []Monster    `yaml:"monsters" json:"monsters"`
	Objects             []Object     `yaml:"objects" json:"objects"`
	NonCollisionObjects []Object     `yaml:"non_collision_objects" json:"nonCollisionObjects"`
	GreatPowers         []GreatPower `yaml:"great_powers" json:"greatPowers"`
}

// SubGame describes an embedded minigame whose completion is tracked as a flag.
type SubGame struct {
	ID             string `yaml:"id"`
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	CompletionFlag string `yaml:"completion_flag"`
	OneShot        bool   `yaml:"one_shot"`
}

// Flag returns the subGamesCompleted key recording completion of s.
func (s SubGame) Flag() string {
	if s.CompletionFlag != "" {
		return s.CompletionFlag
	}
	return s.ID
}

// GameConfig holds global limits and defaults.
type GameConfig struct {
	GridWidth         int    `yaml:"grid_width"`
	GridHeight        int    `yaml:"grid_height"`
	TileSize          int    `yaml:"tile_size"`
	MaxAttackers      int    `yaml:"max_attackers"`
	SaveVersion       string `yaml:"save_version"`
	DefaultLevelID    string `yaml:"default_level_id"`
	ProtectedWeaponID string `yaml:"protected_weapon_id"`
}
