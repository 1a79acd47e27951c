package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gregoftheweb/nightland/internal/game/action"
	"github.com/gregoftheweb/nightland/internal/game/catalog"
	"github.com/gregoftheweb/nightland/internal/game/dice"
	"github.com/gregoftheweb/nightland/internal/game/state"
)

// AttackResult is the audit record of one attack.
type AttackResult struct {
	AttackerID string  `json:"attackerId"`
	TargetID   string  `json:"targetId"`
	Natural    int     `json:"natural"`
	Total      int     `json:"total"`
	TargetAC   int     `json:"targetAC"`
	Outcome    Outcome `json:"outcome"`
	Damage     int     `json:"damage"`
	TargetHP   int     `json:"targetHP"`
	Killed     bool    `json:"killed"`
}

// Resolver rolls attacks and translates their results into actions.
type Resolver struct {
	roller *dice.Roller
	logger *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: roller and logger must be non-nil.
func NewResolver(roller *dice.Roller, logger *zap.Logger) *Resolver {
	return &Resolver{roller: roller, logger: logger}
}

// PlayerAttack resolves a melee strike by the player on an attack-slot
// holder. Attack: d20 + player attack + weapon hit bonus against the
// monster's AC.
//
// Postcondition: on a kill the actions include REMOVE_MONSTER, and when no
// enemy remains they end with a SET_COMBAT exit.
func (r *Resolver) PlayerAttack(s *state.GameState, targetID string) (AttackResult, []action.Action, error) {
	if !s.InCombat {
		return AttackResult{}, nil, ErrNotInCombat
	}
	if s.CombatTurn == nil || *s.CombatTurn != state.PlayerTurnID {
		return AttackResult{}, nil, ErrOutOfTurn
	}
	i := s.SlotIndex(targetID)
	if i < 0 {
		return AttackResult{}, nil, fmt.Errorf("%w: %q", ErrUnknownTarget, targetID)
	}
	target := s.AttackSlots[i]
	weapon := r.meleeWeapon(s)
	return r.playerStrike(s, target, weapon)
}

// RangedAttack fires the equipped ranged weapon at the targeted monster. It
// works in and out of combat.
func (r *Resolver) RangedAttack(s *state.GameState) (AttackResult, []action.Action, error) {
	if s.Player.EquippedRangedWeaponID == nil {
		return AttackResult{}, nil, ErrNoRangedWeapon
	}
	weapon, ok := s.Weapon(*s.Player.EquippedRangedWeaponID)
	if !ok || !weapon.IsRanged() {
		return AttackResult{}, nil, ErrNoRangedWeapon
	}
	if s.InCombat && (s.CombatTurn == nil || *s.CombatTurn != state.PlayerTurnID) {
		return AttackResult{}, nil, ErrOutOfTurn
	}
	if !s.RangedAttackMode || s.TargetedMonsterID == nil {
		return AttackResult{}, nil, fmt.Errorf("%w: no target selected", ErrUnknownTarget)
	}
	target, ok := s.ActiveMonster(*s.TargetedMonsterID)
	if !ok || !target.IsAlive() {
		return AttackResult{}, nil, fmt.Errorf("%w: %q", ErrUnknownTarget, *s.TargetedMonsterID)
	}
	if d := target.Position.Chebyshev(s.Player.Position); weapon.Range > 0 && d > weapon.Range {
		return AttackResult{}, nil, fmt.Errorf("%w: %d > %d", ErrOutOfRange, d, weapon.Range)
	}
	return r.playerStrike(s, target, weapon)
}

func (r *Resolver) playerStrike(s *state.GameState, target catalog.Monster, weapon catalog.Weapon) (AttackResult, []action.Action, error) {
	p := s.Player
	natural := r.roller.Roll(dice.D20).Total()
	res := AttackResult{
		AttackerID: state.PlayerTurnID,
		TargetID:   target.ID,
		Natural:    natural,
		Total:      natural + p.Attack + weapon.HitBonus,
		TargetAC:   target.AC,
	}
	res.Outcome = OutcomeFor(natural, res.Total, target.AC)
	res.TargetHP = target.CurrentHP

	var out []action.Action
	if res.Outcome == Miss {
		out = append(out, action.AddCombatLog{Message: fmt.Sprintf("%s misses the %s.", p.Name, target.Name)})
		r.logAttack(res)
		return res, out, nil
	}

	res.Damage = r.damage(max(weapon.Damage, p.Attack), res.Outcome)
	res.TargetHP = max(0, target.CurrentHP-res.Damage)
	res.Killed = res.TargetHP == 0
	out = append(out,
		action.UpdateMonsterHP{ID: target.ID, HP: res.TargetHP},
		action.AddCombatLog{Message: fmt.Sprintf("%s strikes the %s for %d damage.", p.Name, target.Name, res.Damage)},
	)
	if res.Killed {
		out = append(out,
			action.RemoveMonster{ID: target.ID},
			action.AddCombatLog{Message: fmt.Sprintf("The %s is slain.", target.Name)},
		)
		if s.InCombat && !othersRemain(s, target.ID) {
			out = append(out, action.SetCombat{
				InCombat:    false,
				AttackSlots: []catalog.Monster{},
				TurnOrder:   []string{},
			})
		}
	}
	r.logAttack(res)
	return res, out, nil
}

// MonsterAttack resolves a slot holder's attack on the player. The player's
// death produces GAME_OVER naming the killer.
func (r *Resolver) MonsterAttack(s *state.GameState, monsterID string) (AttackResult, []action.Action, error) {
	if !s.InCombat {
		return AttackResult{}, nil, ErrNotInCombat
	}
	if s.CombatTurn == nil || *s.CombatTurn != monsterID {
		return AttackResult{}, nil, ErrOutOfTurn
	}
	i := s.SlotIndex(monsterID)
	if i < 0 {
		return AttackResult{}, nil, fmt.Errorf("%w: %q", ErrUnknownTarget, monsterID)
	}
	m := s.AttackSlots[i]
	p := s.Player

	natural := r.roller.Roll(dice.D20).Total()
	res := AttackResult{
		AttackerID: m.ID,
		TargetID:   state.PlayerTurnID,
		Natural:    natural,
		Total:      natural + m.Attack + m.HitBonus,
		TargetAC:   p.AC,
		TargetHP:   p.CurrentHP,
	}
	res.Outcome = OutcomeFor(natural, res.Total, p.AC)
	if res.Outcome == Miss {
		r.logAttack(res)
		return res, []action.Action{
			action.AddCombatLog{Message: fmt.Sprintf("The %s misses you.", m.Name)},
		}, nil
	}

	res.Damage = r.damage(max(m.Damage, m.Attack), res.Outcome)
	res.TargetHP = max(0, p.CurrentHP-res.Damage)
	res.Killed = res.TargetHP == 0
	out := []action.Action{
		action.UpdatePlayerHP{HP: res.TargetHP},
		action.AddCombatLog{Message: fmt.Sprintf("The %s hits you for %d damage.", m.Name, res.Damage)},
	}
	if res.Killed {
		out = append(out, action.GameOver{
			Message:    state.Ptr(fmt.Sprintf("You were slain by the %s.", m.Name)),
			KillerName: state.Ptr(m.Name),
		})
	}
	r.logAttack(res)
	return res, out, nil
}

// meleeWeapon returns the equipped melee weapon, or an unarmed stand-in.
func (r *Resolver) meleeWeapon(s *state.GameState) catalog.Weapon {
	for _, ref := range s.Player.Weapons {
		if ref.Equipped {
			if w, ok := s.Weapon(ref.ID); ok {
				return w
			}
		}
	}
	if w, ok := s.Weapon(s.Player.MeleeWeaponID); ok {
		return w
	}
	return catalog.Weapon{ID: "unarmed", Name: "fists", Damage: 2}
}

// damage rolls 1d(base) and doubles it on a critical hit.
func (r *Resolver) damage(base int, o Outcome) int {
	dmg := r.roller.Roll(dice.Expression{Raw: fmt.Sprintf("1d%d", max(2, base)), Count: 1, Sides: max(2, base)}).Total()
	if o == CriticalHit {
		dmg *= 2
	}
	return dmg
}

func (r *Resolver) logAttack(res AttackResult) {
	r.logger.Debug("attack resolved",
		zap.String("attacker", res.AttackerID),
		zap.String("target", res.TargetID),
		zap.Int("natural", res.Natural),
		zap.Int("total", res.Total),
		zap.Int("target_ac", res.TargetAC),
		zap.Stringer("outcome", res.Outcome),
		zap.Int("damage", res.Damage),
		zap.Int("target_hp", res.TargetHP),
	)
}

// othersRemain reports whether any combatant other than id is still in the
// fight.
func othersRemain(s *state.GameState, id string) bool {
	for _, m := range s.AttackSlots {
		if m.ID != id {
			return true
		}
	}
	for _, m := range s.WaitingMonsters {
		if m.ID != id && m.IsAlive() {
			return true
		}
	}
	for _, m := range s.ActiveMonsters {
		if m.ID != id && m.IsAlive() && m.Position.Chebyshev(s.Player.Position) <= 1 {
			return true
		}
	}
	return false
}
