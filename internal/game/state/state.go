// Package state defines the authoritative GameState aggregate, the factory
// that builds fresh states from the content catalog, and the snapshot codec
// used for persistence.
package state

import (
	"encoding/json"
	"time"

	"github.com/gregoftheweb/nightland/internal/game/catalog"
)

// PlayerTurnID is the turn-order id of the player.
const PlayerTurnID = "player"

// CombatLogEntry is one narrated combat event.
type CombatLogEntry struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Turn    int    `json:"turn"`
}

// Projectile is an in-flight ranged attack visual.
type Projectile struct {
	ID          string  `json:"id"`
	StartX      float64 `json:"startX"`
	StartY      float64 `json:"startY"`
	EndX        float64 `json:"endX"`
	EndY        float64 `json:"endY"`
	AngleDeg    float64 `json:"angleDeg"`
	Color       string  `json:"color"`
	CreatedAt   int64   `json:"createdAt"`
	DurationMs  int     `json:"durationMs"`
	LengthPx    int     `json:"lengthPx,omitempty"`
	ThicknessPx int     `json:"thicknessPx,omitempty"`
	Glow        bool    `json:"glow,omitempty"`
}

// TeleportFlash is a short-lived visual marker left by a jaunt.
type TeleportFlash struct {
	ID         string           `json:"id"`
	Position   catalog.Position `json:"position"`
	CreatedAt  int64            `json:"createdAt"`
	DurationMs int              `json:"durationMs"`
}

// Dialog is the content of the currently displayed message dialog.
type Dialog struct {
	Title      string `json:"title,omitempty"`
	Message    string `json:"message"`
	DurationMs int    `json:"durationMs,omitempty"`
	Source     string `json:"source,omitempty"`
}

// GameState is the single authoritative game aggregate.
//
// A GameState is never mutated after it has been published: transitions
// produce a new value that shares untouched slices and maps with its
// predecessor. Code holding a *GameState must treat every reachable
// collection as read-only.
type GameState struct {
	// Level domain.
	Level               catalog.Level            `json:"level"`
	CurrentLevelID      string                   `json:"currentLevelId"`
	Levels              map[string]catalog.Level `json:"levels"`
	Items               []catalog.Item           `json:"items"`
	Objects             []catalog.Object         `json:"objects"`
	GreatPowers         []catalog.GreatPower     `json:"greatPowers"`
	NonCollisionObjects []catalog.Object         `json:"nonCollisionObjects"`
	Monsters            []catalog.Monster        `json:"monsters"`
	GridWidth           int                      `json:"gridWidth"`
	GridHeight          int                      `json:"gridHeight"`

	// Player domain.
	Player              catalog.Player `json:"player"`
	MoveCount           int            `json:"moveCount"`
	DistanceTraveled    int            `json:"distanceTraveled"`
	SelfHealTurnCounter int            `json:"selfHealTurnCounter"`

	// Combat domain.
	InCombat        bool              `json:"inCombat"`
	CombatTurn      *string           `json:"combatTurn"`
	ActiveMonsters  []catalog.Monster `json:"activeMonsters"`
	AttackSlots     []catalog.Monster `json:"attackSlots"`
	WaitingMonsters []catalog.Monster `json:"waitingMonsters"`
	TurnOrder       []string          `json:"turnOrder"`
	CombatLog       []CombatLogEntry  `json:"combatLog"`
	MaxAttackers    int               `json:"maxAttackers"`
	MonstersKilled  int               `json:"monstersKilled"`

	// Ranged combat.
	RangedAttackMode      bool            `json:"rangedAttackMode"`
	TargetedMonsterID     *string         `json:"targetedMonsterId"`
	ActiveProjectiles     []Projectile    `json:"activeProjectiles"`
	ActiveTeleportFlashes []TeleportFlash `json:"activeTeleportFlashes"`

	// UI.
	ShowInventory        bool    `json:"showInventory"`
	ShowWeaponsInventory bool    `json:"showWeaponsInventory"`
	DropSuccess          bool    `json:"dropSuccess"`
	DialogData           *Dialog `json:"dialogData"`
	AudioStarted         bool    `json:"audioStarted"`

	// Death.
	GameOver            bool    `json:"gameOver"`
	GameOverMessage     *string `json:"gameOverMessage"`
	KillerName          *string `json:"killerName"`
	SuppressDeathDialog bool    `json:"suppressDeathDialog"`

	// Meta and persistence.
	Weapons              []catalog.Weapon `json:"weapons"`
	SaveVersion          string           `json:"saveVersion"`
	LastSaved            time.Time        `json:"-"`
	PlayTime             int              `json:"playTime"`
	LastAction           string           `json:"lastAction"`
	SubGamesCompleted    map[string]bool  `json:"subGamesCompleted"`
	WaypointSavesCreated map[string]bool  `json:"waypointSavesCreated"`

	// Extra holds snapshot keys this build does not recognise. They are
	// carried through untouched and written back by ToSnapshot.
	Extra map[string]json.RawMessage `json:"-"`
}

// LivingActiveMonsters counts active monsters that are alive and not
// deactivated.
func (s *GameState) LivingActiveMonsters() int {
	n := 0
	for _, m := range s.ActiveMonsters {
		if m.IsAlive() {
			n++
		}
	}
	return n
}

// ActiveMonster returns the active monster with the given id.
func (s *GameState) ActiveMonster(id string) (catalog.Monster, bool) {
	for _, m := range s.ActiveMonsters {
		if m.ID == id {
			return m, true
		}
	}
	return catalog.Monster{}, false
}

// SlotIndex returns the attack-slot index of the monster with the given id,
// or -1.
func (s *GameState) SlotIndex(id string) int {
	for i, m := range s.AttackSlots {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// Weapon looks up a weapon in the state's weapon catalog.
func (s *GameState) Weapon(id string) (catalog.Weapon, bool) {
	for _, w := range s.Weapons {
		if w.ID == id {
			return w, true
		}
	}
	return catalog.Weapon{}, false
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T { return &v }

// Deref returns *p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
