// Package action defines the closed set of tagged actions accepted by the
// reducer, and the JSON envelope codec used where actions arrive from less
// trusted callers.
package action

// Type is the wire tag of an action.
type Type string

// Action is a tagged state transition request. Only the types declared in
// this package implement it.
type Action interface {
	Type() Type
	isAction()
}

const (
	TypeSetLevel = Type("SET_LEVEL")

	TypeMovePlayer      = Type("MOVE_PLAYER")
	TypeUpdateMoveCount = Type("UPDATE_MOVE_COUNT")
	TypePassTurn        = Type("PASS_TURN")

	TypeMoveMonster           = Type("MOVE_MONSTER")
	TypeSpawnMonster          = Type("SPAWN_MONSTER")
	TypeRemoveMonster         = Type("REMOVE_MONSTER")
	TypeUpdateActiveMonsters  = Type("UPDATE_ACTIVE_MONSTERS")
	TypeUpdateWaitingMonsters = Type("UPDATE_WAITING_MONSTERS")
	TypeAwakenGreatPower      = Type("AWAKEN_GREAT_POWER")

	TypeSetCombat       = Type("SET_COMBAT")
	TypeStartCombat     = Type("START_COMBAT")
	TypeUpdateTurn      = Type("UPDATE_TURN")
	TypeUpdateMonsterHP = Type("UPDATE_MONSTER_HP")
	TypeUpdateMonster   = Type("UPDATE_MONSTER")
	TypeGameOver        = Type("GAME_OVER")
	TypeResetGame       = Type("RESET_GAME")

	TypeAddCombatLog   = Type("ADD_COMBAT_LOG")
	TypeClearCombatLog = Type("CLEAR_COMBAT_LOG")

	TypeUpdatePlayer          = Type("UPDATE_PLAYER")
	TypeUpdatePlayerHP        = Type("UPDATE_PLAYER_HP")
	TypeResetHP               = Type("RESET_HP")
	TypeUpdateSelfHealCounter = Type("UPDATE_SELF_HEAL_COUNTER")

	TypeAddToInventory      = Type("ADD_TO_INVENTORY")
	TypeRemoveFromInventory = Type("REMOVE_FROM_INVENTORY")
	TypeToggleInventory     = Type("TOGGLE_INVENTORY")

	TypeAddToWeapons           = Type("ADD_TO_WEAPONS")
	TypeRemoveFromWeapons      = Type("REMOVE_FROM_WEAPONS")
	TypeEquipWeapon            = Type("EQUIP_WEAPON")
	TypeAddRangedWeapon        = Type("ADD_RANGED_WEAPON")
	TypeEquipRangedWeapon      = Type("EQUIP_RANGED_WEAPON")
	TypeDropWeapon             = Type("DROP_WEAPON")
	TypeToggleWeaponsInventory = Type("TOGGLE_WEAPONS_INVENTORY")

	TypeDropItem                = Type("DROP_ITEM")
	TypeRemoveItemFromGameboard = Type("REMOVE_ITEM_FROM_GAMEBOARD")
	TypeUpdateItem              = Type("UPDATE_ITEM")
	TypeUpdateObject            = Type("UPDATE_OBJECT")
	TypeTriggerEffect           = Type("TRIGGER_EFFECT")

	TypeClearHide              = Type("CLEAR_HIDE")
	TypeDecrementCloakingTurns = Type("DECREMENT_CLOAKING_TURNS")
	TypeToggleHide             = Type("TOGGLE_HIDE")
	TypeUpdateHideState        = Type("UPDATE_HIDE_STATE")
	TypePlayerJauntRequested   = Type("PLAYER_JAUNT_REQUESTED")

	TypeUpdateDialog        = Type("UPDATE_DIALOG")
	TypeSetAudioStarted     = Type("SET_AUDIO_STARTED")
	TypeToggleRangedMode    = Type("TOGGLE_RANGED_MODE")
	TypeSetTargetMonster    = Type("SET_TARGET_MONSTER")
	TypeClearRangedMode     = Type("CLEAR_RANGED_MODE")
	TypeAddProjectile       = Type("ADD_PROJECTILE")
	TypeRemoveProjectile    = Type("REMOVE_PROJECTILE")
	TypeAddTeleportFlash    = Type("ADD_TELEPORT_FLASH")
	TypeRemoveTeleportFlash = Type("REMOVE_TELEPORT_FLASH")

	TypeSetSubGameCompleted = Type("SET_SUB_GAME_COMPLETED")
	TypeHydrateGameState    = Type("HYDRATE_GAME_STATE")
	TypeSetWaypointCreated  = Type("SET_WAYPOINT_CREATED")
)
