package calc

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Frame is what a collaborator renders after each token.
type Frame struct {
	// Display is the formatted value of the register.
	Display string `json:"display"`
	// Operand is the raw text of the operand being typed.
	Operand string `json:"operand"`
	// Expression echoes the input typed so far, e.g. "12+3".
	Expression string `json:"expression"`
	// Settled is true right after equals.
	Settled bool `json:"settled"`

	Value float64 `json:"-"`
}

// Result is the display line as shown on the calculator screen.
func (f Frame) Result() string {
	if f.Settled {
		return "= " + f.Display
	}
	return f.Display
}

// Calculator owns a register and the pending input buffer of one
// calculation session. The zero value is ready to use.
type Calculator struct {
	reg     Register
	pending string
	settled bool
}

func New() *Calculator {
	c := &Calculator{}
	c.Clear()
	return c
}

func (c *Calculator) init() {
	if len(c.reg) == 0 {
		c.reg = Register{OperandSlot(0)}
	}
}

// Register returns a copy of the current register.
func (c *Calculator) Register() Register {
	c.init()
	return append(Register(nil), c.reg...)
}

// Operand returns the pending input buffer.
func (c *Calculator) Operand() string {
	return c.pending
}

// Process applies one token and returns the resulting frame.
func (c *Calculator) Process(t Token) Frame {
	switch t.Kind {
	case TokenDigit:
		c.Input(t.Char)
	case TokenOperator:
		c.Operator(t.Op)
	case TokenEquals:
		c.Equals()
	case TokenBackspace:
		c.Backspace()
	case TokenClear:
		c.Clear()
	case TokenToggleSign:
		c.ToggleSign()
	}
	return c.Frame()
}

// Input appends a digit or '.' to the pending buffer and stores the parsed
// value in the active operand slot.
func (c *Calculator) Input(r rune) {
	c.init()
	c.settled = false
	c.pending += string(r)
	c.setActive(parseOperand(c.pending))
}

// activeIndex is the register slot the pending buffer belongs to.
func (c *Calculator) activeIndex() int {
	if len(c.reg) == 1 {
		return 0
	}
	return 2
}

func (c *Calculator) setActive(v float64) {
	i := c.activeIndex()
	if i < len(c.reg) {
		c.reg[i] = OperandSlot(v)
		return
	}
	c.reg = append(c.reg, OperandSlot(v))
}

// Operator records an operator key. A complete expression is collapsed to
// its result first so that operations chain left to right.
func (c *Calculator) Operator(op Operator) {
	if !op.Valid() {
		return
	}
	c.init()
	c.settled = false

	if len(c.reg) == 4 || (len(c.reg) == 3 && op != Percent) {
		c.reg = Register{OperandSlot(c.reg.Evaluate())}
		c.pending = ""
	}

	left := c.reg[0].Value
	if math.IsNaN(left) || (c.pending == "" && left == 0) {
		c.reg[0] = OperandSlot(0)
	}

	switch {
	case op == Percent:
		c.reg = append(c.reg, PercentSlot())
	case len(c.reg) >= 2:
		c.reg[1] = OperatorSlot(op)
	default:
		c.reg = append(c.reg, OperatorSlot(op))
	}
	c.pending = ""
}

// Evaluate returns the value of the current register without changing it.
func (c *Calculator) Evaluate() float64 {
	c.init()
	return c.reg.Evaluate()
}

// Equals replaces the register with its value, which then seeds the next
// calculation.
func (c *Calculator) Equals() float64 {
	v := c.Evaluate()
	c.reg = Register{OperandSlot(v)}
	c.pending = ""
	c.settled = true
	return v
}

// Clear resets the register to [0] and empties the pending buffer.
func (c *Calculator) Clear() {
	c.reg = Register{OperandSlot(0)}
	c.pending = ""
	c.settled = false
}

// Backspace removes the last typed character. Removing an operator makes
// the operand before it editable again.
func (c *Calculator) Backspace() {
	c.init()
	c.settled = false

	// A sign typed before any digit of the right operand has no slot yet.
	if c.pending != "" && c.activeIndex() >= len(c.reg) {
		c.pending = trimLast(c.pending)
		return
	}

	last := c.reg[len(c.reg)-1]
	c.reg = c.reg[:len(c.reg)-1]

	switch last.Kind {
	case SlotOperator, SlotPercent:
		n := len(c.reg)
		if c.pending != "" && n > 0 && n-1 == c.activeIndex() {
			break
		}
		c.pending = ""
		if n > 0 && c.reg[n-1].Kind == SlotOperand {
			c.pending = formatOperand(c.reg[n-1].Value)
		}
	case SlotOperand:
		text := c.pending
		if text == "" {
			text = formatOperand(last.Value)
		}
		text = trimLast(text)
		c.pending = ""
		if text != "" && text != "-" {
			c.reg = append(c.reg, OperandSlot(parseOperand(text)))
			c.pending = text
		}
	}

	if len(c.reg) == 0 {
		c.Clear()
	}
}

func trimLast(s string) string {
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

// ToggleSign negates the operand being typed. Operands that are no longer
// being edited are left alone.
func (c *Calculator) ToggleSign() {
	c.init()
	if strings.HasPrefix(c.pending, "-") {
		c.pending = c.pending[1:]
	} else {
		c.pending = "-" + c.pending
	}
	if v := parseOperand(c.pending); !math.IsNaN(v) {
		c.settled = false
		c.setActive(v)
	}
}

// Expression echoes the input as typed: committed slots in their canonical
// form and the operand under construction as its raw text. A sign without
// digits does not replace a committed operand.
func (c *Calculator) Expression() string {
	c.init()
	if len(c.reg) == 1 && c.pending == "" && !c.settled && c.reg[0].Value == 0 {
		return ""
	}

	active := c.activeIndex()
	var b strings.Builder
	for i, s := range c.reg {
		if i == active && c.pending != "" && c.pending != "-" && s.Kind == SlotOperand {
			b.WriteString(c.pending)
			continue
		}
		b.WriteString(s.String())
	}
	if c.pending != "" && active >= len(c.reg) {
		b.WriteString(c.pending)
	}
	return b.String()
}

// Display returns the formatted value of the register.
func (c *Calculator) Display() string {
	return FormatDisplay(c.Evaluate())
}

func (c *Calculator) Frame() Frame {
	v := c.Evaluate()
	return Frame{
		Display:    FormatDisplay(v),
		Operand:    c.pending,
		Expression: c.Expression(),
		Settled:    c.settled,
		Value:      v,
	}
}
