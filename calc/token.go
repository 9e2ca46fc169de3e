package calc

import "fmt"

// Operator is an arithmetic key. Percent is accepted as an operator key
// but is stored in the register as a marker.
type Operator byte

const (
	Add      Operator = '+'
	Subtract Operator = '-'
	Multiply Operator = '*'
	Divide   Operator = '/'
	Percent  Operator = '%'
)

func (op Operator) String() string {
	return string(rune(op))
}

// Valid reports whether op is one of the five operator keys.
func (op Operator) Valid() bool {
	switch op {
	case Add, Subtract, Multiply, Divide, Percent:
		return true
	}
	return false
}

type TokenKind int

const (
	TokenDigit TokenKind = iota
	TokenOperator
	TokenEquals
	TokenBackspace
	TokenClear
	TokenToggleSign
)

func (k TokenKind) String() string {
	switch k {
	case TokenDigit:
		return "Digit"
	case TokenOperator:
		return "Operator"
	case TokenEquals:
		return "Equals"
	case TokenBackspace:
		return "Backspace"
	case TokenClear:
		return "Clear"
	case TokenToggleSign:
		return "ToggleSign"
	default:
		return "Unknown"
	}
}

// Token is one normalized unit of input. Char is set for TokenDigit
// ('0'-'9' or '.'), Op for TokenOperator.
type Token struct {
	Kind TokenKind
	Char rune
	Op   Operator
}

var (
	EqualsToken     = Token{Kind: TokenEquals}
	BackspaceToken  = Token{Kind: TokenBackspace}
	ClearToken      = Token{Kind: TokenClear}
	ToggleSignToken = Token{Kind: TokenToggleSign}
)

func DigitToken(r rune) Token {
	return Token{Kind: TokenDigit, Char: r}
}

func OperatorToken(op Operator) Token {
	return Token{Kind: TokenOperator, Op: op}
}

// String returns the canonical spelling accepted by ParseToken.
func (t Token) String() string {
	switch t.Kind {
	case TokenDigit:
		return string(t.Char)
	case TokenOperator:
		return t.Op.String()
	case TokenEquals:
		return "="
	case TokenBackspace:
		return "<"
	case TokenClear:
		return "C"
	case TokenToggleSign:
		return "±"
	default:
		return "?"
	}
}

// ParseToken parses the canonical spelling of a token: a digit, ".",
// an operator, "=", "<", "C" or "±".
func ParseToken(s string) (Token, error) {
	switch s {
	case "=":
		return EqualsToken, nil
	case "<":
		return BackspaceToken, nil
	case "C":
		return ClearToken, nil
	case "±":
		return ToggleSignToken, nil
	}

	r := []rune(s)
	if len(r) != 1 {
		return Token{}, fmt.Errorf("invalid token %q", s)
	}
	if isDigitOrDot(r[0]) {
		return DigitToken(r[0]), nil
	}
	if op := Operator(r[0]); r[0] < 0x80 && op.Valid() {
		return OperatorToken(op), nil
	}
	return Token{}, fmt.Errorf("invalid token %q", s)
}

func isDigitOrDot(r rune) bool {
	return r == '.' || (r >= '0' && r <= '9')
}
