package catalog

import "slices"

func cloneEffects(in []Effect) []Effect {
	if in == nil {
		return nil
	}
	return slices.Clone(in)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns a deep copy of i.
func (i Item) Clone() Item {
	i.Position = clonePtr(i.Position)
	i.Size = clonePtr(i.Size)
	i.Effects = cloneEffects(i.Effects)
	return i
}

// Clone returns a deep copy of o.
func (o Object) Clone() Object {
	o.Size = clonePtr(o.Size)
	o.Effects = cloneEffects(o.Effects)
	return o
}

// Clone returns a deep copy of g.
func (g GreatPower) Clone() GreatPower {
	g.Size = clonePtr(g.Size)
	return g
}

// Clone returns a deep copy of m.
func (m Monster) Clone() Monster {
	m.Active = clonePtr(m.Active)
	return m
}

// Clone returns a deep copy of p. Every collection of the result is a fresh
// container with no backing array shared with p.
func (p Player) Clone() Player {
	p.Inventory = CloneItems(p.Inventory)
	p.Weapons = nonNil(slices.Clone(p.Weapons))
	p.RangedWeaponInventoryIDs = nonNil(slices.Clone(p.RangedWeaponInventoryIDs))
	p.EquippedRangedWeaponID = clonePtr(p.EquippedRangedWeaponID)
	return p
}

// Clone returns a deep copy of l.
func (l Level) Clone() Level {
	l.Items = CloneItems(l.Items)
	l.Monsters = CloneMonsters(l.Monsters)
	l.Objects = CloneObjects(l.Objects)
	l.NonCollisionObjects = CloneObjects(l.NonCollisionObjects)
	l.GreatPowers = CloneGreatPowers(l.GreatPowers)
	return l
}

// CloneItems deep-copies in. The result is never nil.
func CloneItems(in []Item) []Item {
	out := make([]Item, len(in))
	for i, v := range in {
		out[i] = v.Clone()
	}
	return out
}

// CloneObjects deep-copies in. The result is never nil.
func CloneObjects(in []Object) []Object {
	out := make([]Object, len(in))
	for i, v := range in {
		out[i] = v.Clone()
	}
	return out
}

// CloneGreatPowers deep-copies in. The result is never nil.
func CloneGreatPowers(in []GreatPower) []GreatPower {
	out := make([]GreatPower, len(in))
	for i, v := range in {
		out[i] = v.Clone()
	}
	return out
}

// CloneMonsters deep-copies in. The result is never nil.
func CloneMonsters(in []Monster) []Monster {
	out := make([]Monster, len(in))
	for i, v := range in {
		out[i] = v.Clone()
	}
	return out
}

// CloneWeapons copies in. The result is never nil.
func CloneWeapons(in []Weapon) []Weapon {
	return nonNil(slices.Clone(in))
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
