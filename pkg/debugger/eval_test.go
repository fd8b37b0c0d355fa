package debugger

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Manu343726/rvdb/pkg/hw/riscv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapRegisters map[string]uint32

func (m mapRegisters) Lookup(name string) (uint32, error) {
	value, ok := m[name]
	if !ok {
		return 0, fmt.Errorf("unknown register '%v'", name)
	}
	return value, nil
}

func TestEval(t *testing.T) {
	eval := &Evaluator{}

	tests := []struct {
		expr     string
		expected int32
	}{
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"1 == 1 && 2 != 3", 1},
		{"0 || 0", 0},
		{"10 - 4 - 3", 3},
		{"100 / 10 / 5", 2},
		{"7 / 2", 3},
		{"7 / -2", -3},
		{"-5", -5},
		{"- -3", 3},
		{"!0", 1},
		{"!7", 0},
		{"2 * -3", -6},
		{"-(1 + 2) * 3", -9},
		{"0x10 + 1", 17},
		{"0XfF", 255},
		{"0xffffffff", -1},
		{"4294967295 + 2", 1},
		{"$a0", RegisterPlaceholder},
		{"  42  ", 42},
		{"((4))", 4},
		{"(1 + 2) * (3 + 4)", 21},
		{"1 + 2 == 3", 1},
		{"1 || 0 && 0", 1},
		{"(1 || 0) && 0", 0},
		{"3 != 3 || 2 == 2", 1},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			result, err := eval.EvalString(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEval_Errors(t *testing.T) {
	eval := &Evaluator{}

	tests := []struct {
		expr string
		err  error
	}{
		{"(1 + 2", ErrSyntax},
		{"1 + 2)", ErrSyntax},
		{")1(", ErrSyntax},
		{"1 +", ErrSyntax},
		{"* 2", ErrSyntax},
		{"1 2", ErrSyntax},
		{"()", ErrSyntax},
		{"", ErrSyntax},
		{"   ", ErrSyntax},
		{"1 / 0", ErrEvaluation},
		{"1 / (2 - 2)", ErrEvaluation},
		{"foo", ErrEvaluation},
		{"4294967296", ErrEvaluation},
		{"1 @ 2", ErrLexical},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := eval.EvalString(tt.expr)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestEval_Range(t *testing.T) {
	eval := &Evaluator{}
	tokens, err := Tokenize("1 + 2 * 3")
	require.NoError(t, err)

	t.Run("sub range", func(t *testing.T) {
		result, err := eval.Eval(tokens, 4, 8)
		require.NoError(t, err)
		assert.Equal(t, int32(6), result)
	})

	t.Run("single token", func(t *testing.T) {
		result, err := eval.Eval(tokens, 8, 8)
		require.NoError(t, err)
		assert.Equal(t, int32(3), result)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := eval.Eval(tokens, 0, len(tokens))
		assert.ErrorIs(t, err, ErrSyntax)

		_, err = eval.Eval(tokens, 5, 4)
		assert.ErrorIs(t, err, ErrSyntax)
	})

	t.Run("without tokens", func(t *testing.T) {
		_, err := eval.Eval(nil, 0, 0)
		assert.ErrorIs(t, err, ErrNotTokenized)
	})

	t.Run("operator token alone", func(t *testing.T) {
		_, err := eval.Eval(tokens, 2, 2)
		assert.ErrorIs(t, err, ErrSyntax)
	})
}

func TestEval_Registers(t *testing.T) {
	eval := NewEvaluator(mapRegisters{"a0": 42, "sp": 0xfffffff0})

	result, err := eval.EvalString("$a0 + 1")
	require.NoError(t, err)
	assert.Equal(t, int32(43), result)

	result, err = eval.EvalString("$sp")
	require.NoError(t, err)
	assert.Equal(t, int32(-16), result)

	_, err = eval.EvalString("$bogus")
	assert.ErrorIs(t, err, ErrEvaluation)
}

func TestEval_MachineState(t *testing.T) {
	state := riscv.NewState(riscv.DefaultMemoryBase)
	state.GPR[riscv.RegA0] = 5
	state.CSR.Mepc = 0x80000010

	eval := NewEvaluator(state)

	tests := []struct {
		expr     string
		expected int32
	}{
		{"$a0 * 2", 10},
		{"$x10 == 5", 1},
		{"$mepc - $pc", 0x10},
		{"$zero", 0},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			result, err := eval.EvalString(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEval_ErrorsMentionPosition(t *testing.T) {
	_, err := (&Evaluator{}).EvalString("1 + 2 / 0")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "position 6"), err.Error())
}

func TestApplyOperator(t *testing.T) {
	tests := []struct {
		op       TokenType
		lhs, rhs int32
		expected int32
	}{
		{TokenPlus, 2, 3, 5},
		{TokenMinus, 2, 3, -1},
		{TokenMul, -4, 3, -12},
		{TokenDiv, 7, 2, 3},
		{TokenEq, 3, 3, 1},
		{TokenNeq, 3, 3, 0},
		{TokenAnd, 1, 0, 0},
		{TokenOr, 1, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			value, err := applyOperator(Token{Type: tt.op}, tt.lhs, tt.rhs)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)
		})
	}

	_, err := applyOperator(Token{Type: TokenDiv, Offset: 4}, 1, 0)
	assert.ErrorIs(t, err, ErrEvaluation)

	_, err = applyOperator(Token{Type: TokenLParen, Value: "("}, 1, 2)
	assert.ErrorIs(t, err, ErrSyntax)
}
