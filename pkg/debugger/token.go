// Package debugger implements the interactive debugger of the emulator: the
// expression language, watchpoints and the command loop.
package debugger

import (
	"fmt"
	"regexp"
	"strings"
)

// TokenType classifies a lexical token
type TokenType int

const (
	TokenSpace TokenType = iota
	TokenPlus
	TokenMinus
	TokenMul
	TokenDiv
	TokenLParen
	TokenRParen
	TokenEq
	TokenNeq
	TokenAnd
	TokenOr
	TokenNot
	TokenHex
	TokenRegister
	TokenDecimal
	TokenDigits
	TokenIdentifier
)

func (t TokenType) String() string {
	switch t {
	case TokenSpace:
		return "space"
	case TokenPlus:
		return "+"
	case TokenMinus:
		return "-"
	case TokenMul:
		return "*"
	case TokenDiv:
		return "/"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenEq:
		return "=="
	case TokenNeq:
		return "!="
	case TokenAnd:
		return "&&"
	case TokenOr:
		return "||"
	case TokenNot:
		return "!"
	case TokenHex:
		return "hex"
	case TokenRegister:
		return "register"
	case TokenDecimal:
		return "decimal"
	case TokenDigits:
		return "digits"
	case TokenIdentifier:
		return "identifier"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// MaxTokenLength is the longest literal text a token can carry
const MaxTokenLength = 31

// Token represents a lexical token in an expression
type Token struct {
	Type  TokenType
	Value string
	// Offset of the token in the source expression
	Offset int
}

// LexicalError reports the position where no lexical rule matched
type LexicalError struct {
	Expr   string
	Offset int
	Reason string
}

func (e *LexicalError) Error() string {
	return fmt.Sprintf("%v: %v at position %d\n%s\n%s^", ErrLexical, e.Reason, e.Offset, e.Expr, strings.Repeat(" ", e.Offset))
}

func (e *LexicalError) Unwrap() error {
	return ErrLexical
}

// Rule is a lexical rule: a pattern anchored at the current position and the
// token type it produces
type Rule struct {
	Pattern *regexp.Regexp
	Type    TokenType
}

func rule(pattern string, tokenType TokenType) Rule {
	return Rule{
		Pattern: regexp.MustCompile(`^(?:` + pattern + `)`),
		Type:    tokenType,
	}
}

// DefaultRules is the lexical rule table. At every position the rules are
// tried in this order and the first one matching wins, regardless of the
// length of other matches.
var DefaultRules = []Rule{
	rule(`\s+`, TokenSpace),
	rule(`\+`, TokenPlus),
	rule(`-`, TokenMinus),
	rule(`\*`, TokenMul),
	rule(`/`, TokenDiv),
	rule(`\(`, TokenLParen),
	rule(`\)`, TokenRParen),
	rule(`==`, TokenEq),
	rule(`!=`, TokenNeq),
	rule(`&&`, TokenAnd),
	rule(`\|\|`, TokenOr),
	rule(`!`, TokenNot),
	rule(`0[xX][0-9a-fA-F]+`, TokenHex),
	rule(`\$[a-zA-Z0-9]+`, TokenRegister),
	rule(`[0-9]+`, TokenDecimal),
	rule(`[0-9]{1,10}`, TokenDigits),
	rule(`[a-zA-Z_][a-zA-Z0-9_]*`, TokenIdentifier),
}

// Lexer splits expressions into tokens using an immutable rule table
type Lexer struct {
	rules []Rule
}

// NewLexer creates a lexer over a copy of the given rules
func NewLexer(rules []Rule) *Lexer {
	return &Lexer{rules: append([]Rule(nil), rules...)}
}

var defaultLexer = NewLexer(DefaultRules)

// Tokenize splits an expression with the default rules
func Tokenize(expr string) ([]Token, error) {
	return defaultLexer.Tokenize(expr)
}

// Tokenize splits an expression into tokens in source order. Whitespace
// tokens are kept.
func (l *Lexer) Tokenize(expr string) ([]Token, error) {
	tokens := []Token{}
	position := 0

	for position < len(expr) {
		matched := false

		for _, r := range l.rules {
			loc := r.Pattern.FindStringIndex(expr[position:])
			if loc == nil || loc[1] == 0 {
				continue
			}

			text := expr[position : position+loc[1]]
			if len(text) > MaxTokenLength && r.Type != TokenSpace {
				return nil, &LexicalError{Expr: expr, Offset: position, Reason: fmt.Sprintf("token longer than %d characters", MaxTokenLength)}
			}

			tokens = append(tokens, Token{Type: r.Type, Value: text, Offset: position})
			position += loc[1]
			matched = true
			break
		}

		if !matched {
			return nil, &LexicalError{Expr: expr, Offset: position, Reason: "no match"}
		}
	}

	return tokens, nil
}
