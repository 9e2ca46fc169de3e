package calc

import (
	"math"
	"testing"
)

// press feeds canonical token spellings, one rune each.
func press(t *testing.T, c *Calculator, keys string) Frame {
	t.Helper()
	f := c.Frame()
	for _, r := range keys {
		tok, err := ParseToken(string(r))
		if err != nil {
			t.Fatalf("ParseToken(%q): %v", r, err)
		}
		f = c.Process(tok)
	}
	return f
}

func TestCalculatorSequences(t *testing.T) {
	tests := []struct {
		keys       string
		display    string
		operand    string
		expression string
	}{
		{"", "0", "", ""},
		{"12", "12", "12", "12"},
		{"1.25", "1.25", "1.25", "1.25"},
		{"1.2.3", "1.2", "1.2.3", "1.2.3"},
		{"5+3", "8", "3", "5+3"},
		{"5+3+", "8", "", "8+"},
		{"5+3+2=", "10", "", "10"},
		{"10-4*2=", "12", "", "12"},
		{"7/2=", "3.5", "", "3.5"},
		{"5/0=", "0", "", "0"},
		{"5*0=", "0", "", "0"},
		{"5+0=", "5", "", "5"},
		{"5-0=", "5", "", "5"},
		{"200-10%", "180", "", "200-10%"},
		{"200+10%=", "220", "", "220"},
		{"200*10%=", "20", "", "20"},
		{"200/10%=", "20", "", "20"},
		{"50%", "0.5", "", "50%"},
		{"50%=", "0.5", "", "0.5"},
		{"200-10%+5=", "185", "", "185"},
		{"+", "0", "", "0+"},
		{"+5=", "5", "", "5"},
		{"5+-", "5", "", "5-"},
		{"5±", "-5", "-5", "-5"},
		{"5±±", "5", "5", "5"},
		{"5+±3", "2", "-3", "5+-3"},
		{"12<", "1", "1", "1"},
		{"12<<", "0", "", ""},
		{"12+<", "12", "12", "12"},
		{"12+<3", "123", "123", "123"},
		{"5+3<", "5", "", "5+"},
		{"5+3%<", "8", "3", "5+3"},
		{"5±<", "0", "", ""},
		{"1.5<", "1", "1.", "1."},
		{"5+3C", "0", "", ""},
		{"999999999", "999999999", "999999999", "999999999"},
		{"12000000000", "1.2e+10", "12000000000", "12000000000"},
		{"100000*10000=", "1e+9", "", "1000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			c := New()
			f := press(t, c, tt.keys)
			if f.Display != tt.display {
				t.Errorf("Display = %q, want %q (register %v)", f.Display, tt.display, c.Register())
			}
			if f.Operand != tt.operand {
				t.Errorf("Operand = %q, want %q", f.Operand, tt.operand)
			}
			if f.Expression != tt.expression {
				t.Errorf("Expression = %q, want %q", f.Expression, tt.expression)
			}
		})
	}
}

func TestEqualsSeedsNextCalculation(t *testing.T) {
	c := New()
	press(t, c, "5+3=")
	f := press(t, c, "*2=")
	if f.Display != "16" {
		t.Errorf("Display = %q, want %q", f.Display, "16")
	}
	if !f.Settled {
		t.Error("Settled = false after equals")
	}
	if got := f.Result(); got != "= 16" {
		t.Errorf("Result() = %q, want %q", got, "= 16")
	}
	f = press(t, c, "+")
	if f.Settled {
		t.Error("Settled = true after operator")
	}
}

func TestEqualsCollapsesRegister(t *testing.T) {
	c := New()
	press(t, c, "200-10%")
	if got := c.Equals(); got != 180 {
		t.Fatalf("Equals() = %v, want 180", got)
	}
	if reg := c.Register(); len(reg) != 1 || reg[0].Value != 180 {
		t.Errorf("Register() = %v, want [180]", reg)
	}
	if c.Operand() != "" {
		t.Errorf("Operand() = %q, want empty", c.Operand())
	}
}

func TestEvaluateIsPure(t *testing.T) {
	c := New()
	press(t, c, "7+5%")
	before := c.Register()
	a, b := c.Evaluate(), c.Evaluate()
	if a != b {
		t.Errorf("Evaluate() = %v then %v", a, b)
	}
	if after := c.Register(); after.String() != before.String() {
		t.Errorf("register changed from %v to %v", before, after)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	once := New()
	press(t, once, "12+7")
	once.Clear()

	twice := New()
	press(t, twice, "12+7")
	twice.Clear()
	twice.Clear()

	if once.Frame() != twice.Frame() {
		t.Errorf("Frame() after two clears = %+v, want %+v", twice.Frame(), once.Frame())
	}
	if once.Register().String() != "[0]" {
		t.Errorf("Register() = %v, want [0]", once.Register())
	}
}

func TestChainingCollapsesOnOperator(t *testing.T) {
	c := New()
	press(t, c, "5+3")
	if reg := c.Register(); len(reg) != 3 {
		t.Fatalf("Register() = %v, want three slots", reg)
	}
	press(t, c, "+")
	reg := c.Register()
	if len(reg) != 2 || reg[0].Value != 8 {
		t.Fatalf("Register() = %v, want [8 +]", reg)
	}
	if op, ok := reg.Operator(); !ok || op != Add {
		t.Errorf("Operator() = %v, %v, want +", op, ok)
	}
}

func TestPercentMarkerDoesNotReplaceOperator(t *testing.T) {
	c := New()
	press(t, c, "135-10%")
	reg := c.Register()
	if len(reg) != 4 {
		t.Fatalf("Register() = %v, want four slots", reg)
	}
	if op, _ := reg.Operator(); op != Subtract {
		t.Errorf("Operator() = %v, want -", op)
	}
	if !reg.HasPercent() {
		t.Error("HasPercent() = false")
	}

	// any operator on a four slot register collapses, % included
	press(t, c, "%")
	reg = c.Register()
	if len(reg) != 2 || reg[0].Value != 121.5 || reg[1].Kind != SlotPercent {
		t.Errorf("Register() = %v, want [121.5 %%]", reg)
	}
}

func TestInputAfterPercentReplacesRightOperand(t *testing.T) {
	c := New()
	f := press(t, c, "200-10%5")
	if f.Display != "190" {
		t.Errorf("Display = %q, want %q", f.Display, "190")
	}
}

// A NaN left operand is replaced by 0 once an operator is pressed, so
// the calculation continues instead of staying NaN.
func TestDotOnlyOperandResetsToZero(t *testing.T) {
	c := New()
	f := press(t, c, ".")
	if f.Display != "NaN" {
		t.Errorf("Display = %q, want NaN", f.Display)
	}
	f = press(t, c, "+2=")
	if f.Display != "2" {
		t.Errorf("Display = %q, want %q", f.Display, "2")
	}
}

func TestToggleSignAfterEquals(t *testing.T) {
	c := New()
	f := press(t, c, "5+3=±")
	if f.Expression != "8" {
		t.Errorf("Expression = %q, want %q", f.Expression, "8")
	}
	if got := f.Result(); got != "= 8" {
		t.Errorf("Result() = %q, want %q", got, "= 8")
	}
	f = press(t, c, "2")
	if f.Display != "-2" || f.Expression != "-2" {
		t.Errorf("Display, Expression = %q, %q, want %q, %q", f.Display, f.Expression, "-2", "-2")
	}
	if f.Settled {
		t.Error("Settled = true after typing a digit")
	}
}

func TestZeroValueCalculator(t *testing.T) {
	var c Calculator
	if got := c.Display(); got != "0" {
		t.Errorf("Display() = %q, want %q", got, "0")
	}
	c.Input('4')
	c.Operator(Multiply)
	c.Input('2')
	if got := c.Equals(); got != 8 {
		t.Errorf("Equals() = %v, want 8", got)
	}
}

func TestInvalidOperatorIgnored(t *testing.T) {
	c := New()
	press(t, c, "5")
	c.Operator(Operator('^'))
	if got := c.Register().String(); got != "[5]" {
		t.Errorf("Register() = %v, want [5]", got)
	}
}

func TestPercentDivideByZero(t *testing.T) {
	c := New()
	press(t, c, "5/0%")
	if got := c.Evaluate(); !math.IsInf(got, 1) {
		t.Errorf("Evaluate() = %v, want +Inf", got)
	}
	if got := c.Display(); got != "Infinity" {
		t.Errorf("Display() = %q, want Infinity", got)
	}
}
