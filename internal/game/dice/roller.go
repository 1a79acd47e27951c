package dice

import "go.uber.org/zap"

// D20 is the attack roll.
var D20 = MustParse("d20")

// Roller draws from a Source and logs every roll at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll evaluates expr.
//
// Postcondition: every die is in [1, expr.Sides].
func (r *Roller) Roll(expr Expression) Result {
	dice := make([]int, expr.Count)
	for i := range dice {
		dice[i] = r.src.Intn(expr.Sides) + 1
	}
	res := Result{Expression: expr.Raw, Dice: dice, Modifier: expr.Modifier}
	r.logger.Debug("dice roll",
		zap.String("expression", res.Expression),
		zap.Ints("dice", res.Dice),
		zap.Int("modifier", res.Modifier),
		zap.Int("total", res.Total()),
	)
	return res
}

// RollExpr parses and rolls raw.
func (r *Roller) RollExpr(raw string) (Result, error) {
	e, err := Parse(raw)
	if err != nil {
		return Result{}, err
	}
	return r.Roll(e), nil
}

// Intn returns a value in [0, n) without logging. Used for placement jitter.
func (r *Roller) Intn(n int) int { return r.src.Intn(n) }

// Between returns a value in [lo, hi].
//
// Precondition: lo <= hi.
func (r *Roller) Between(lo, hi int) int {
	return lo + r.src.Intn(hi-lo+1)
}
