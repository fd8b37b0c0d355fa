package debugger

import (
	"strconv"
	"strings"

	"github.com/Manu343726/rvdb/pkg/utils"
)

// RegisterSource resolves register names (without the '$' sigil) to values
type RegisterSource interface {
	Lookup(name string) (uint32, error)
}

// RegisterPlaceholder is the value register references evaluate to when no
// register source is attached
const RegisterPlaceholder int32 = 1

// Operator precedence, lowest binds loosest
var precedence = map[TokenType]int{
	TokenOr:    0,
	TokenAnd:   1,
	TokenEq:    2,
	TokenNeq:   2,
	TokenPlus:  3,
	TokenMinus: 3,
	TokenMul:   4,
	TokenDiv:   4,
}

func isOperator(t TokenType) bool {
	_, ok := precedence[t]
	return ok || t == TokenNot
}

// Evaluator evaluates token ranges to signed machine words
type Evaluator struct {
	// Registers is consulted for $name references. May be nil.
	Registers RegisterSource
}

// NewEvaluator creates an evaluator reading registers from the given source
func NewEvaluator(registers RegisterSource) *Evaluator {
	return &Evaluator{Registers: registers}
}

// EvalString tokenizes and evaluates a whole expression
func (e *Evaluator) EvalString(expr string) (int32, error) {
	tokens, err := Tokenize(expr)
	if err != nil {
		return 0, err
	}
	return e.Eval(tokens, 0, len(tokens)-1)
}

// Eval evaluates the inclusive token range [p, q]. The range is rejected as a
// whole if its parentheses are unbalanced.
func (e *Evaluator) Eval(tokens []Token, p, q int) (int32, error) {
	if tokens == nil {
		return 0, ErrNotTokenized
	}
	if p < 0 || q >= len(tokens) || p > q {
		return 0, utils.MakeError(ErrSyntax, "empty expression")
	}
	if err := checkParentheses(tokens, p, q); err != nil {
		return 0, err
	}

	return e.eval(tokens, p, q)
}

func checkParentheses(tokens []Token, p, q int) error {
	depth := 0
	for i := p; i <= q; i++ {
		switch tokens[i].Type {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth < 0 {
				return utils.MakeError(ErrSyntax, "unmatched ')' at position %d", tokens[i].Offset)
			}
		}
	}
	if depth != 0 {
		return utils.MakeError(ErrSyntax, "unbalanced parentheses")
	}
	return nil
}

// closing returns the index of the parenthesis closing the one at p
func closing(tokens []Token, p, q int) int {
	depth := 0
	for i := p; i <= q; i++ {
		switch tokens[i].Type {
		case TokenLParen:
			depth++
		case TokenRParen:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// split finds the operator the range [p, q] is divided at: the loosest
// binding one outside parentheses, the rightmost one among equals. Operators
// in unary position are never candidates.
func split(tokens []Token, p, q int) int {
	best, bestPrecedence := -1, len(precedence)
	depth := 0
	unaryPosition := true

	for i := p; i <= q; i++ {
		t := tokens[i].Type

		switch {
		case t == TokenSpace:
			continue
		case t == TokenLParen:
			depth++
		case t == TokenRParen:
			depth--
		case depth == 0 && !unaryPosition:
			if prec, ok := precedence[t]; ok && prec <= bestPrecedence {
				best, bestPrecedence = i, prec
			}
		}

		unaryPosition = t == TokenLParen || isOperator(t)
	}

	return best
}

func (e *Evaluator) eval(tokens []Token, p, q int) (int32, error) {
	for p <= q && tokens[p].Type == TokenSpace {
		p++
	}
	for q >= p && tokens[q].Type == TokenSpace {
		q--
	}

	if p > q {
		return 0, utils.MakeError(ErrSyntax, "missing operand")
	}

	if p == q {
		return e.operand(tokens[p])
	}

	if tokens[p].Type == TokenLParen && closing(tokens, p, q) == q {
		return e.eval(tokens, p+1, q-1)
	}

	if op := split(tokens, p, q); op >= 0 {
		lhs, err := e.eval(tokens, p, op-1)
		if err != nil {
			return 0, err
		}
		rhs, err := e.eval(tokens, op+1, q)
		if err != nil {
			return 0, err
		}
		return applyOperator(tokens[op], lhs, rhs)
	}

	switch tokens[p].Type {
	case TokenMinus:
		value, err := e.eval(tokens, p+1, q)
		return -value, err
	case TokenNot:
		value, err := e.eval(tokens, p+1, q)
		return boolValue(value == 0), err
	}

	return 0, utils.MakeError(ErrSyntax, "expected an operator at position %d", tokens[p].Offset)
}

func (e *Evaluator) operand(token Token) (int32, error) {
	switch token.Type {
	case TokenDecimal, TokenDigits:
		value, err := strconv.ParseUint(token.Value, 10, 32)
		if err != nil {
			return 0, utils.MakeError(ErrEvaluation, "'%v' does not fit in a machine word", token.Value)
		}
		return int32(uint32(value)), nil
	case TokenHex:
		value, err := strconv.ParseUint(token.Value[2:], 16, 32)
		if err != nil {
			return 0, utils.MakeError(ErrEvaluation, "'%v' does not fit in a machine word", token.Value)
		}
		return int32(uint32(value)), nil
	case TokenRegister:
		if e.Registers == nil {
			return RegisterPlaceholder, nil
		}
		value, err := e.Registers.Lookup(strings.TrimPrefix(token.Value, "$"))
		if err != nil {
			return 0, utils.MakeError(ErrEvaluation, "%v", err)
		}
		return int32(value), nil
	case TokenIdentifier:
		return 0, utils.MakeError(ErrEvaluation, "unknown symbol '%v'", token.Value)
	default:
		return 0, utils.MakeError(ErrSyntax, "unexpected '%v' at position %d", token.Value, token.Offset)
	}
}

func applyOperator(op Token, lhs, rhs int32) (int32, error) {
	switch op.Type {
	case TokenPlus:
		return lhs + rhs, nil
	case TokenMinus:
		return lhs - rhs, nil
	case TokenMul:
		return lhs * rhs, nil
	case TokenDiv:
		if rhs == 0 {
			return 0, utils.MakeError(ErrEvaluation, "division by zero at position %d", op.Offset)
		}
		return lhs / rhs, nil
	case TokenEq:
		return boolValue(lhs == rhs), nil
	case TokenNeq:
		return boolValue(lhs != rhs), nil
	case TokenAnd:
		return boolValue(lhs != 0 && rhs != 0), nil
	case TokenOr:
		return boolValue(lhs != 0 || rhs != 0), nil
	default:
		return 0, utils.MakeError(ErrSyntax, "'%v' is not a binary operator", op.Value)
	}
}

func boolValue(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
