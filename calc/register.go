package calc

import "strings"

type SlotKind int

const (
	SlotOperand SlotKind = iota
	SlotOperator
	SlotPercent
)

// Slot is one register cell: a number, an operator or the percent marker.
type Slot struct {
	Kind  SlotKind
	Value float64
	Op    Operator
}

func OperandSlot(v float64) Slot {
	return Slot{Kind: SlotOperand, Value: v}
}

func OperatorSlot(op Operator) Slot {
	return Slot{Kind: SlotOperator, Op: op}
}

func PercentSlot() Slot {
	return Slot{Kind: SlotPercent}
}

func (s Slot) String() string {
	switch s.Kind {
	case SlotOperand:
		return formatOperand(s.Value)
	case SlotOperator:
		return s.Op.String()
	default:
		return "%"
	}
}

// Register is the in-progress expression:
//
//	[left, operator?, right?, percent?]
//
// Slot 0 is always an operand. A percent marker is only ever the last slot.
type Register []Slot

func (r Register) Left() float64 {
	if len(r) == 0 {
		return 0
	}
	return r[0].Value
}

// Operator returns the arithmetic operator in slot 1, if any.
func (r Register) Operator() (Operator, bool) {
	if len(r) < 2 || r[1].Kind != SlotOperator {
		return 0, false
	}
	return r[1].Op, true
}

// Right returns the operand in slot 2, if any.
func (r Register) Right() (float64, bool) {
	if len(r) < 3 || r[2].Kind != SlotOperand {
		return 0, false
	}
	return r[2].Value, true
}

func (r Register) HasPercent() bool {
	for _, s := range r {
		if s.Kind == SlotPercent {
			return true
		}
	}
	return false
}

// Evaluate computes the value of the register. It never mutates r.
func (r Register) Evaluate() float64 {
	left := r.Left()
	op, hasOp := r.Operator()
	right, hasRight := r.Right()

	if r.HasPercent() {
		if !hasOp {
			return left / 100
		}
		// No right operand: keep left instead of yielding NaN.
		if !hasRight {
			return left
		}
		switch op {
		case Add:
			return left + left*right/100
		case Subtract:
			return left - left*right/100
		case Multiply:
			return left * right / 100
		case Divide:
			return left / right
		}
		return left
	}

	if !hasOp || !hasRight {
		return left
	}

	if right == 0 {
		if op == Multiply || op == Divide {
			return 0
		}
		return left
	}

	switch op {
	case Add:
		return left + right
	case Subtract:
		return left - right
	case Multiply:
		return left * right
	case Divide:
		return left / right
	}
	return left
}

func (r Register) String() string {
	parts := make([]string, len(r))
	for i, s := range r {
		parts[i] = s.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
