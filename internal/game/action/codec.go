package action

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gregoftheweb/nightland/internal/game/state"
)

// ErrUnknownType is wrapped by Decode when the envelope names an action type
// this build does not recognise.
var ErrUnknownType = errors.New("unknown action type")

// envelope is the wire form {"type": ..., "payload": ...}. SET_LEVEL may
// also carry levelId at the top level.
type envelope struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	LevelID string          `json:"levelId,omitempty"`
}

type hydratePayload struct {
	State state.Snapshot `json:"state"`
}

// registry maps each wire type with a JSON object payload to its decoder.
var registry = map[Type]func(json.RawMessage) (Action, error){
	TypeSetLevel:                decodeAs[SetLevel],
	TypeMovePlayer:              decodeAs[MovePlayer],
	TypeUpdateMoveCount:         decodeAs[UpdateMoveCount],
	TypePassTurn:                decodeAs[PassTurn],
	TypeMoveMonster:             decodeAs[MoveMonster],
	TypeSpawnMonster:            decodeAs[SpawnMonster],
	TypeRemoveMonster:           decodeAs[RemoveMonster],
	TypeUpdateActiveMonsters:    decodeAs[UpdateActiveMonsters],
	TypeUpdateWaitingMonsters:   decodeAs[UpdateWaitingMonsters],
	TypeAwakenGreatPower:        decodeAs[AwakenGreatPower],
	TypeSetCombat:               decodeAs[SetCombat],
	TypeStartCombat:             decodeAs[StartCombat],
	TypeUpdateTurn:              decodeAs[UpdateTurn],
	TypeUpdateMonsterHP:         decodeAs[UpdateMonsterHP],
	TypeUpdateMonster:           decodeAs[UpdateMonster],
	TypeGameOver:                decodeAs[GameOver],
	TypeResetGame:               decodeAs[ResetGame],
	TypeAddCombatLog:            decodeAs[AddCombatLog],
	TypeClearCombatLog:          decodeAs[ClearCombatLog],
	TypeUpdatePlayer:            decodeAs[UpdatePlayer],
	TypeUpdatePlayerHP:          decodeAs[UpdatePlayerHP],
	TypeResetHP:                 decodeAs[ResetHP],
	TypeUpdateSelfHealCounter:   decodeAs[UpdateSelfHealCounter],
	TypeAddToInventory:          decodeAs[AddToInventory],
	TypeRemoveFromInventory:     decodeAs[RemoveFromInventory],
	TypeToggleInventory:         decodeAs[ToggleInventory],
	TypeAddToWeapons:            decodeAs[AddToWeapons],
	TypeRemoveFromWeapons:       decodeAs[RemoveFromWeapons],
	TypeEquipWeapon:             decodeAs[EquipWeapon],
	TypeAddRangedWeapon:         decodeAs[AddRangedWeapon],
	TypeEquipRangedWeapon:       decodeAs[EquipRangedWeapon],
	TypeDropWeapon:              decodeAs[DropWeapon],
	TypeToggleWeaponsInventory:  decodeAs[ToggleWeaponsInventory],
	TypeDropItem:                decodeAs[DropItem],
	TypeRemoveItemFromGameboard: decodeAs[RemoveItemFromGameboard],
	TypeUpdateItem:              decodeAs[UpdateItem],
	TypeUpdateObject:            decodeAs[UpdateObject],
	TypeTriggerEffect:           decodeAs[TriggerEffect],
	TypeClearHide:               decodeAs[ClearHide],
	TypeDecrementCloakingTurns:  decodeAs[DecrementCloakingTurns],
	TypeToggleHide:              decodeAs[ToggleHide],
	TypeUpdateHideState:         decodeAs[UpdateHideState],
	TypePlayerJauntRequested:    decodeAs[PlayerJauntRequested],
	TypeUpdateDialog:            decodeAs[UpdateDialog],
	TypeToggleRangedMode:        decodeAs[ToggleRangedMode],
	TypeSetTargetMonster:        decodeAs[SetTargetMonster],
	TypeClearRangedMode:         decodeAs[ClearRangedMode],
	TypeAddProjectile:           decodeAs[AddProjectile],
	TypeRemoveProjectile:        decodeAs[RemoveProjectile],
	TypeAddTeleportFlash:        decodeAs[AddTeleportFlash],
	TypeRemoveTeleportFlash:     decodeAs[RemoveTeleportFlash],
	TypeSetSubGameCompleted:     decodeAs[SetSubGameCompleted],
	TypeSetWaypointCreated:      decodeAs[SetWaypointCreated],
}

// Decoder turns wire envelopes into actions. HYDRATE_GAME_STATE payloads are
// snapshots and are restored through the factory.
type Decoder struct {
	factory *state.Factory
}

// NewDecoder creates a Decoder.
//
// Precondition: factory must not be nil.
func NewDecoder(factory *state.Factory) *Decoder {
	return &Decoder{factory: factory}
}

// Decode parses one envelope.
//
// An unrecognised type yields an Unknown action together with an error
// wrapping ErrUnknownType, so callers may still dispatch it. A malformed
// envelope or payload returns a nil action.
func (d *Decoder) Decode(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding action envelope: %w", err)
	}
	if env.Type == "" {
		return nil, errors.New("decoding action envelope: missing type")
	}

	switch env.Type {
	case TypeSetAudioStarted:
		var started bool
		if hasPayload(env.Payload) {
			if err := json.Unmarshal(env.Payload, &started); err != nil {
				return nil, fmt.Errorf("decoding %s payload: %w", env.Type, err)
			}
		}
		return SetAudioStarted{Started: started}, nil
	case TypeHydrateGameState:
		var p hydratePayload
		if hasPayload(env.Payload) {
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				return nil, fmt.Errorf("decoding %s payload: %w", env.Type, err)
			}
		}
		return HydrateGameState{State: d.factory.FromSnapshot(p.State)}, nil
	}

	decode, ok := registry[env.Type]
	if !ok {
		return Unknown{Kind: env.Type, Payload: env.Payload}, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
	a, err := decode(env.Payload)
	if err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", env.Type, err)
	}
	if sl, ok := a.(SetLevel); ok && sl.LevelID == "" {
		sl.LevelID = env.LevelID
		a = sl
	}
	return a, nil
}

func decodeAs[T Action](raw json.RawMessage) (Action, error) {
	var v T
	if hasPayload(raw) {
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Encode writes a in its wire envelope.
func Encode(a Action) ([]byte, error) {
	env := envelope{Type: a.Type()}
	var payload any
	switch v := a.(type) {
	case Unknown:
		env.Payload = v.Payload
	case SetAudioStarted:
		payload = v.Started
	case HydrateGameState:
		if v.State != nil {
			snap, err := state.ToSnapshot(v.State)
			if err != nil {
				return nil, err
			}
			payload = hydratePayload{State: snap}
		}
	default:
		payload = a
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s payload: %w", a.Type(), err)
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

func hasPayload(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}
