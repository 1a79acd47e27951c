package action

import (
	"encoding/json"

	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

// Direction is a cardinal step on the grid.
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// SetLevel transitions to another level.
type SetLevel struct {
	LevelID string `json:"levelId"`
}

// MovePlayer moves the player to Position when set, otherwise one step in
// Direction.
type MovePlayer struct {
	Position  *catalog.Position `json:"position,omitempty"`
	Direction Direction         `json:"direction,omitempty"`
}

type UpdateMoveCount struct {
	MoveCount int `json:"moveCount"`
}

type PassTurn struct{}

type MoveMonster struct {
	ID       string           `json:"id"`
	Position catalog.Position `json:"position"`
}

type SpawnMonster struct {
	Monster catalog.Monster `json:"monster"`
}

type RemoveMonster struct {
	ID string `json:"id"`
}

type UpdateActiveMonsters struct {
	ActiveMonsters []catalog.Monster `json:"activeMonsters"`
}

type UpdateWaitingMonsters struct {
	WaitingMonsters []catalog.Monster `json:"waitingMonsters"`
}

type AwakenGreatPower struct {
	GreatPowerID string `json:"greatPowerId"`
}

// SetCombat enters or exits combat and installs the engagement layout.
type SetCombat struct {
	InCombat        bool              `json:"inCombat"`
	AttackSlots     []catalog.Monster `json:"attackSlots"`
	WaitingMonsters []catalog.Monster `json:"waitingMonsters,omitempty"`
	TurnOrder       []string          `json:"turnOrder"`
	CombatTurn      *string           `json:"combatTurn"`
}

type StartCombat struct {
	Monster catalog.Monster `json:"monster"`
}

type UpdateTurn struct {
	TurnOrder  []string `json:"turnOrder"`
	CombatTurn *string  `json:"combatTurn"`
}

type UpdateMonsterHP struct {
	ID string `json:"id"`
	HP int    `json:"hp"`
}

type UpdateMonster struct {
	ID      string        `json:"id"`
	Updates MonsterUpdate `json:"updates"`
}

// GameOver ends the run. Nil fields take their defaults.
type GameOver struct {
	Message             *string `json:"message,omitempty"`
	KillerName          *string `json:"killerName,omitempty"`
	SuppressDeathDialog *bool   `json:"suppressDeathDialog,omitempty"`
}

type ResetGame struct{}

// AddCombatLog appends a combat narration line. ID is assigned by the
// dispatcher when empty.
type AddCombatLog struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

type ClearCombatLog struct{}

type UpdatePlayer struct {
	Updates PlayerUpdate `json:"updates"`
}

type UpdatePlayerHP struct {
	HP int `json:"hp"`
}

type ResetHP struct {
	HP int `json:"hp"`
}

type UpdateSelfHealCounter struct {
	Counter int `json:"counter"`
}

type AddToInventory struct {
	Item catalog.Item `json:"item"`
}

type RemoveFromInventory struct {
	ID string `json:"id"`
}

type ToggleInventory struct{}

type AddToWeapons struct {
	Weapon catalog.WeaponRef `json:"weapon"`
}

type RemoveFromWeapons struct {
	ID string `json:"id"`
}

type EquipWeapon struct {
	ID string `json:"id"`
}

type AddRangedWeapon struct {
	ID string `json:"id"`
}

type EquipRangedWeapon struct {
	ID string `json:"id"`
}

type DropWeapon struct {
	ID string `json:"id"`
}

type ToggleWeaponsInventory struct{}

type DropItem struct {
	Item     catalog.Item     `json:"item"`
	Position catalog.Position `json:"position"`
}

type RemoveItemFromGameboard struct {
	ShortName string           `json:"shortName"`
	Position  catalog.Position `json:"position"`
}

type UpdateItem struct {
	ShortName string     `json:"shortName"`
	Updates   ItemUpdate `json:"updates"`
}

type UpdateObject struct {
	ShortName string       `json:"shortName"`
	Updates   ObjectUpdate `json:"updates"`
}

// TriggerEffect applies a deterministic object or item effect. Position is
// the trigger location; effects that need randomness are resolved before
// dispatch.
type TriggerEffect struct {
	Effect   catalog.Effect    `json:"effect"`
	Position *catalog.Position `json:"position,omitempty"`
}

type ClearHide struct{}

type DecrementCloakingTurns struct{}

type ToggleHide struct{}

// UpdateHideState advances the hide ability by one turn.
type UpdateHideState struct{}

type PlayerJauntRequested struct{}

type UpdateDialog struct {
	DialogData *state.Dialog `json:"dialogData"`
}

// SetAudioStarted carries a bare boolean payload on the wire.
type SetAudioStarted struct {
	Started bool
}

type ToggleRangedMode struct {
	Active   bool    `json:"active"`
	TargetID *string `json:"targetId,omitempty"`
}

type SetTargetMonster struct {
	MonsterID string `json:"monsterId"`
}

type ClearRangedMode struct{}

type AddProjectile struct {
	Projectile state.Projectile `json:"projectile"`
}

type RemoveProjectile struct {
	ID string `json:"id"`
}

type AddTeleportFlash struct {
	Flash state.TeleportFlash `json:"flash"`
}

type RemoveTeleportFlash struct {
	ID string `json:"id"`
}

// SetSubGameCompleted records a sub-game or story flag. Keys may be compound
// ("<subgame>:<flag>").
type SetSubGameCompleted struct {
	SubGameName string `json:"subGameName"`
	Completed   bool   `json:"completed"`
}

// HydrateGameState replaces the state wholesale with an already restored
// one.
type HydrateGameState struct {
	State *state.GameState `json:"-"`
}

type SetWaypointCreated struct {
	WaypointName string `json:"waypointName"`
}

// Unknown carries an action whose type this build does not recognise. The
// reducer passes it through unchanged.
type Unknown struct {
	Kind    Type
	Payload json.RawMessage
}

func (SetLevel) Type() Type { return TypeSetLevel }
func (MovePlayer) Type() Type { return TypeMovePlayer }
func (UpdateMoveCount) Type() Type { return TypeUpdateMoveCount }
func (PassTurn) Type() Type { return TypePassTurn }
func (MoveMonster) Type() Type { return TypeMoveMonster }
func (SpawnMonster) Type() Type { return TypeSpawnMonster }
func (RemoveMonster) Type() Type { return TypeRemoveMonster }
func (UpdateActiveMonsters) Type() Type { return TypeUpdateActiveMonsters }
func (UpdateWaitingMonsters) Type() Type { return TypeUpdateWaitingMonsters }
func (AwakenGreatPower) Type() Type { return TypeAwakenGreatPower }
func (SetCombat) Type() Type { return TypeSetCombat }
func (StartCombat) Type() Type { return TypeStartCombat }
func (UpdateTurn) Type() Type { return TypeUpdateTurn }
func (UpdateMonsterHP) Type() Type { return TypeUpdateMonsterHP }
func (UpdateMonster) Type() Type { return TypeUpdateMonster }
func (GameOver) Type() Type { return TypeGameOver }
func (ResetGame) Type() Type { return TypeResetGame }
func (AddCombatLog) Type() Type { return TypeAddCombatLog }
func (ClearCombatLog) Type() Type { return TypeClearCombatLog }
func (UpdatePlayer) Type() Type { return TypeUpdatePlayer }
func (UpdatePlayerHP) Type() Type { return TypeUpdatePlayerHP }
func (ResetHP) Type() Type { return TypeResetHP }
func (UpdateSelfHealCounter) Type() Type { return TypeUpdateSelfHealCounter }
func (AddToInventory) Type() Type { return TypeAddToInventory }
func (RemoveFromInventory) Type() Type { return TypeRemoveFromInventory }
func (ToggleInventory) Type() Type { return TypeToggleInventory }
func (AddToWeapons) Type() Type { return TypeAddToWeapons }
func (RemoveFromWeapons) Type() Type { return TypeRemoveFromWeapons }
func (EquipWeapon) Type() Type { return TypeEquipWeapon }
func (AddRangedWeapon) Type() Type { return TypeAddRangedWeapon }
func (EquipRangedWeapon) Type() Type { return TypeEquipRangedWeapon }
func (DropWeapon) Type() Type { return TypeDropWeapon }
func (ToggleWeaponsInventory) Type() Type { return TypeToggleWeaponsInventory }
func (DropItem) Type() Type { return TypeDropItem }
func (RemoveItemFromGameboard) Type() Type { return TypeRemoveItemFromGameboard }
func (UpdateItem) Type() Type { return TypeUpdateItem }
func (UpdateObject) Type() Type { return TypeUpdateObject }
func (TriggerEffect) Type() Type { return TypeTriggerEffect }
func (ClearHide) Type() Type { return TypeClearHide }
func (DecrementCloakingTurns) Type() Type { return TypeDecrementCloakingTurns }
func (ToggleHide) Type() Type { return TypeToggleHide }
func (UpdateHideState) Type() Type { return TypeUpdateHideState }
func (PlayerJauntRequested) Type() Type { return TypePlayerJauntRequested }
func (UpdateDialog) Type() Type { return TypeUpdateDialog }
func (SetAudioStarted) Type() Type { return TypeSetAudioStarted }
func (ToggleRangedMode) Type() Type { return TypeToggleRangedMode }
func (SetTargetMonster) Type() Type { return TypeSetTargetMonster }
func (ClearRangedMode) Type() Type { return TypeClearRangedMode }
func (AddProjectile) Type() Type { return TypeAddProjectile }
func (RemoveProjectile) Type() Type { return TypeRemoveProjectile }
func (AddTeleportFlash) Type() Type { return TypeAddTeleportFlash }
func (RemoveTeleportFlash) Type() Type { return TypeRemoveTeleportFlash }
func (SetSubGameCompleted) Type() Type { return TypeSetSubGameCompleted }
func (HydrateGameState) Type() Type { return TypeHydrateGameState }
func (SetWaypointCreated) Type() Type { return TypeSetWaypointCreated }
func (u Unknown) Type() Type { return u.Kind }

func (SetLevel) isAction() {}
func (MovePlayer) isAction() {}
func (UpdateMoveCount) isAction() {}
func (PassTurn) isAction() {}
func (MoveMonster) isAction() {}
func (SpawnMonster) isAction() {}
func (RemoveMonster) isAction() {}
func (UpdateActiveMonsters) isAction() {}
func (UpdateWaitingMonsters) isAction() {}
func (AwakenGreatPower) isAction() {}
func (SetCombat) isAction() {}
func (StartCombat) isAction() {}
func (UpdateTurn) isAction() {}
func (UpdateMonsterHP) isAction() {}
func (UpdateMonster) isAction() {}
func (GameOver) isAction() {}
func (ResetGame) isAction() {}
func (AddCombatLog) isAction() {}
func (ClearCombatLog) isAction() {}
func (UpdatePlayer) isAction() {}
func (UpdatePlayerHP) isAction() {}
func (ResetHP) isAction() {}
func (UpdateSelfHealCounter) isAction() {}
func (AddToInventory) isAction() {}
func (RemoveFromInventory) isAction() {}
func (ToggleInventory) isAction() {}
func (AddToWeapons) isAction() {}
func (RemoveFromWeapons) isAction() {}
func (EquipWeapon) isAction() {}
func (AddRangedWeapon) isAction() {}
func (EquipRangedWeapon) isAction() {}
func (DropWeapon) isAction() {}
func (ToggleWeaponsInventory) isAction() {}
func (DropItem) isAction() {}
func (RemoveItemFromGameboard) isAction() {}
func (UpdateItem) isAction() {}
func (UpdateObject) isAction() {}
func (TriggerEffect) isAction() {}
func (ClearHide) isAction() {}
func (DecrementCloakingTurns) isAction() {}
func (ToggleHide) isAction() {}
func (UpdateHideState) isAction() {}
func (PlayerJauntRequested) isAction() {}
func (UpdateDialog) isAction() {}
func (SetAudioStarted) isAction() {}
func (ToggleRangedMode) isAction() {}
func (SetTargetMonster) isAction() {}
func (ClearRangedMode) isAction() {}
func (AddProjectile) isAction() {}
func (RemoveProjectile) isAction() {}
func (AddTeleportFlash) isAction() {}
func (RemoveTeleportFlash) isAction() {}
func (SetSubGameCompleted) isAction() {}
func (HydrateGameState) isAction() {}
func (SetWaypointCreated) isAction() {}
func (Unknown) isAction() {}
