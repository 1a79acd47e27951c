// Package combat decides engagements, turn order and attack results. It
// reads GameStates and returns the actions that record its decisions; it
// never mutates state itself.
package combat

import "errors"

var (
	// ErrNotInCombat is returned when a combat-only operation is attempted
	// outside combat.
	ErrNotInCombat = errors.New("not in combat")
	// ErrOutOfTurn is returned when an actor acts on another's turn.
	ErrOutOfTurn = errors.New("not this combatant's turn")
	// ErrUnknownTarget is returned when the target is not engaged.
	ErrUnknownTarget = errors.New("unknown target")
	// ErrNoRangedWeapon is returned when a ranged attack is attempted with
	// no ranged weapon equipped.
	ErrNoRangedWeapon = errors.New("no ranged weapon equipped")
	// ErrOutOfRange is returned when a ranged target is beyond reach.
	ErrOutOfRange = errors.New("target out of range")
)

// Outcome is the result tier of an attack roll.
type Outcome int

const (
	Miss Outcome = iota
	Hit
	CriticalHit
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case Miss:
		return "miss"
	case Hit:
		return "hit"
	case CriticalHit:
		return "critical hit"
	default:
		return "unknown"
	}
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// OutcomeFor grades an attack. A natural 20 always lands as a critical hit.
//
// Precondition: natural is in [1, 20].
func OutcomeFor(natural, total, ac int) Outcome {
	switch {
	case natural == 20:
		return CriticalHit
	case total >= ac:
		return Hit
	default:
		return Miss
	}
}
