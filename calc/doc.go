// Package calc implements the token-driven state machine behind a
// four-function calculator keypad.
//
// # Overview
//
// A Calculator consumes one Token at a time and keeps two pieces of state:
//
//	┌──────────────┐     ┌──────────────────────────────────────┐
//	│   pending    │────▶│ register                             │
//	│  "12."       │     │ [left] [operator] [right] [percent]  │
//	└──────────────┘     └──────────────────────────────────────┘
//	                                       │
//	                                       ▼
//	                               Evaluate / Frame
//
// The pending buffer holds the raw text of the operand being typed. Every
// digit re-parses it into the active register slot: slot 0 while only a
// left operand exists, slot 2 afterwards.
//
// # Chaining
//
// There is no operator precedence. Pressing a second operator once the
// register holds a complete expression collapses it to its result first,
// so 5 + 3 + 2 = is evaluated as (5 + 3) + 2.
//
// # Percent
//
// The % key appends a marker instead of replacing the operator. With a
// marker present the right operand is read as a percentage of the left:
//
//	200 - 10 %   →  180
//	200 + 10 %   →  220
//	200 * 10 %   →  20
//	200 / 10 %   →  20    (plain division)
//	 50 %        →  0.5
//
// # Zero operands
//
// A right operand of zero yields 0 for * and / and leaves the left operand
// unchanged for + and -.
//
// A Calculator is not safe for concurrent use. Callers that receive keys
// from several goroutines must serialize delivery.
package calc
