package debugger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		expected []Token
	}{
		{
			name: "arithmetic in source order",
			expr: "1 + 2 * 3",
			expected: []Token{
				{Type: TokenDecimal, Value: "1", Offset: 0},
				{Type: TokenSpace, Value: " ", Offset: 1},
				{Type: TokenPlus, Value: "+", Offset: 2},
				{Type: TokenSpace, Value: " ", Offset: 3},
				{Type: TokenDecimal, Value: "2", Offset: 4},
				{Type: TokenSpace, Value: " ", Offset: 5},
				{Type: TokenMul, Value: "*", Offset: 6},
				{Type: TokenSpace, Value: " ", Offset: 7},
				{Type: TokenDecimal, Value: "3", Offset: 8},
			},
		},
		{
			name: "hex wins over decimal",
			expr: "0x1f",
			expected: []Token{
				{Type: TokenHex, Value: "0x1f", Offset: 0},
			},
		},
		{
			name: "first rule wins, not the longest",
			expr: "0x",
			expected: []Token{
				{Type: TokenDecimal, Value: "0", Offset: 0},
				{Type: TokenIdentifier, Value: "x", Offset: 1},
			},
		},
		{
			name: "decimal followed by identifier",
			expr: "12abc",
			expected: []Token{
				{Type: TokenDecimal, Value: "12", Offset: 0},
				{Type: TokenIdentifier, Value: "abc", Offset: 2},
			},
		},
		{
			name: "two character operators",
			expr: "!=! ==&&||",
			expected: []Token{
				{Type: TokenNeq, Value: "!=", Offset: 0},
				{Type: TokenNot, Value: "!", Offset: 2},
				{Type: TokenSpace, Value: " ", Offset: 3},
				{Type: TokenEq, Value: "==", Offset: 4},
				{Type: TokenAnd, Value: "&&", Offset: 6},
				{Type: TokenOr, Value: "||", Offset: 8},
			},
		},
		{
			name: "registers and parentheses",
			expr: "($a0-$pc)/2",
			expected: []Token{
				{Type: TokenLParen, Value: "(", Offset: 0},
				{Type: TokenRegister, Value: "$a0", Offset: 1},
				{Type: TokenMinus, Value: "-", Offset: 4},
				{Type: TokenRegister, Value: "$pc", Offset: 5},
				{Type: TokenRParen, Value: ")", Offset: 8},
				{Type: TokenDiv, Value: "/", Offset: 9},
				{Type: TokenDecimal, Value: "2", Offset: 10},
			},
		},
		{
			name:     "empty",
			expr:     "",
			expected: []Token{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tokens)
		})
	}
}

func TestTokenize_Errors(t *testing.T) {
	t.Run("no rule matches", func(t *testing.T) {
		_, err := Tokenize("1 @ 2")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrLexical)

		var lexErr *LexicalError
		require.ErrorAs(t, err, &lexErr)
		assert.Equal(t, 2, lexErr.Offset)
	})

	t.Run("single ampersand", func(t *testing.T) {
		_, err := Tokenize("1 & 2")
		assert.ErrorIs(t, err, ErrLexical)
	})

	t.Run("token too long", func(t *testing.T) {
		_, err := Tokenize("1 + " + strings.Repeat("9", MaxTokenLength+1))
		require.Error(t, err)

		var lexErr *LexicalError
		require.ErrorAs(t, err, &lexErr)
		assert.Equal(t, 4, lexErr.Offset)
	})

	t.Run("long whitespace is fine", func(t *testing.T) {
		tokens, err := Tokenize(strings.Repeat(" ", 64) + "1")
		require.NoError(t, err)
		assert.Len(t, tokens, 2)
	})
}

func TestNewLexer_CustomRules(t *testing.T) {
	rules := []Rule{
		rule(`[0-9]{1,2}`, TokenDigits),
		rule(`\+`, TokenPlus),
	}
	lexer := NewLexer(rules)
	rules[0] = rule(`x`, TokenIdentifier)

	tokens, err := lexer.Tokenize("123+4")
	require.NoError(t, err)
	assert.Equal(t, []Token{
		{Type: TokenDigits, Value: "12", Offset: 0},
		{Type: TokenDigits, Value: "3", Offset: 2},
		{Type: TokenPlus, Value: "+", Offset: 3},
		{Type: TokenDigits, Value: "4", Offset: 4},
	}, tokens)
}
