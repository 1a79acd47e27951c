package action

import "github.com/gregoftheweb/nightland/internal/game/catalog"

// PlayerUpdate is a partial update merged into the player. Nil fields are
// left unchanged.
type PlayerUpdate struct {
	Position                  *catalog.Position `json:"position,omitempty"`
	CurrentHP                 *int              `json:"currentHP,omitempty"`
	MaxHP                     *int              `json:"maxHP,omitempty"`
	LastComment               *string           `json:"lastComment,omitempty"`
	IsHidden                  *bool             `json:"isHidden,omitempty"`
	HideTurns                 *int              `json:"hideTurns,omitempty"`
	MeleeWeaponID             *string           `json:"meleeWeaponId,omitempty"`
	HideUnlocked              *bool             `json:"hideUnlocked,omitempty"`
	HideChargeTurns           *int              `json:"hideChargeTurns,omitempty"`
	HideActive                *bool             `json:"hideActive,omitempty"`
	HideRechargeProgressTurns *int              `json:"hideRechargeProgressTurns,omitempty"`
	CanJaunt                  *bool             `json:"canJaunt,omitempty"`
}

// Apply returns p with u merged in.
func (u PlayerUpdate) Apply(p catalog.Player) catalog.Player {
	set(&p.Position, u.Position)
	set(&p.CurrentHP, u.CurrentHP)
	set(&p.MaxHP, u.MaxHP)
	set(&p.LastComment, u.LastComment)
	set(&p.IsHidden, u.IsHidden)
	set(&p.HideTurns, u.HideTurns)
	set(&p.MeleeWeaponID, u.MeleeWeaponID)
	set(&p.HideUnlocked, u.HideUnlocked)
	set(&p.HideChargeTurns, u.HideChargeTurns)
	set(&p.HideActive, u.HideActive)
	set(&p.HideRechargeProgressTurns, u.HideRechargeProgressTurns)
	set(&p.CanJaunt, u.CanJaunt)
	return p
}

// MonsterUpdate is a partial update merged into a monster.
type MonsterUpdate struct {
	Position     *catalog.Position `json:"position,omitempty"`
	CurrentHP    *int              `json:"currentHP,omitempty"`
	Active       *bool             `json:"active,omitempty"`
	InCombatSlot *bool             `json:"inCombatSlot,omitempty"`
}

// Apply returns m with u merged in.
func (u MonsterUpdate) Apply(m catalog.Monster) catalog.Monster {
	set(&m.Position, u.Position)
	set(&m.CurrentHP, u.CurrentHP)
	set(&m.InCombatSlot, u.InCombatSlot)
	if u.Active != nil {
		active := *u.Active
		m.Active = &active
	}
	return m
}

// ItemUpdate is a partial update merged into a board item.
type ItemUpdate struct {
	Active      *bool             `json:"active,omitempty"`
	Collectible *bool             `json:"collectible,omitempty"`
	Position    *catalog.Position `json:"position,omitempty"`
}

// Apply returns it with u merged in.
func (u ItemUpdate) Apply(it catalog.Item) catalog.Item {
	set(&it.Active, u.Active)
	set(&it.Collectible, u.Collectible)
	if u.Position != nil {
		pos := *u.Position
		it.Position = &pos
	}
	return it
}

// ObjectUpdate is a partial update merged into a board object.
type ObjectUpdate struct {
	Active       *bool  `json:"active,omitempty"`
	Interactable *bool  `json:"interactable,omitempty"`
	LastTrigger  *int64 `json:"lastTrigger,omitempty"`
}

// Apply returns o with u merged in.
func (u ObjectUpdate) Apply(o catalog.Object) catalog.Object {
	set(&o.Active, u.Active)
	set(&o.Interactable, u.Interactable)
	set(&o.LastTrigger, u.LastTrigger)
	return o
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
