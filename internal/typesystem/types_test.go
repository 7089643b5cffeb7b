package typesystem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArmindoFlores/MineScript2/internal/typesystem"
)

func TestWrap32(t *testing.T) {
	assert.Equal(t, int64(5), typesystem.Wrap32(5))
	assert.Equal(t, int64(-2147483648), typesystem.Wrap32(2147483648))
	assert.Equal(t, int64(2147483647), typesystem.Wrap32(2147483647))
}

func TestOperateArithmetic(t *testing.T) {
	a := typesystem.NewIntLiteral(7)
	b := typesystem.NewIntLiteral(2)

	sum, err := typesystem.Operate("+", a, b)
	require.NoError(t, err)
	assert.Equal(t, int64(9), sum.Int())

	quot, err := typesystem.Operate("/", a, b)
	require.NoError(t, err)
	assert.Equal(t, int64(3), quot.Int())
}

func TestOperateFloorDivisionNegative(t *testing.T) {
	a := typesystem.NewIntLiteral(-7)
	b := typesystem.NewIntLiteral(2)

	quot, err := typesystem.Operate("/", a, b)
	require.NoError(t, err)
	assert.Equal(t, int64(-4), quot.Int())

	rem, err := typesystem.Operate("%", a, b)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rem.Int())
}

func TestOperateDivisionByZero(t *testing.T) {
	a := typesystem.NewIntLiteral(1)
	b := typesystem.NewIntLiteral(0)
	_, err := typesystem.Operate("/", a, b)
	assert.Error(t, err)
}

func TestOperateCharPlusIntYieldsChar(t *testing.T) {
	c := typesystem.NewCharLiteral('a')
	one := typesystem.NewIntLiteral(1)
	result, err := typesystem.Operate("+", c, one)
	require.NoError(t, err)
	assert.Equal(t, typesystem.Char, result.Type())
	assert.Equal(t, int64('b'), result.CodePoint())
}

func TestOperateRejectsRegisterOperand(t *testing.T) {
	lit := typesystem.NewIntLiteral(1)
	reg := typesystem.NewRegister(typesystem.Int, "x")
	_, err := typesystem.Operate("+", lit, reg)
	assert.Error(t, err)
	var notConst *typesystem.NotCompileTimeError
	assert.ErrorAs(t, err, &notConst)
}

func TestOperateRejectsArrays(t *testing.T) {
	arr := typesystem.NewArrayLiteral(typesystem.Int, []typesystem.Value{typesystem.NewIntLiteral(1)})
	one := typesystem.NewIntLiteral(1)
	_, err := typesystem.Operate("+", arr, one)
	var mismatch *typesystem.TypeMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestCompare(t *testing.T) {
	a := typesystem.NewIntLiteral(3)
	b := typesystem.NewIntLiteral(5)

	lt, err := typesystem.Compare("<", a, b)
	require.NoError(t, err)
	assert.True(t, lt)

	eq, err := typesystem.Compare("==", a, a)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestCompareMismatchedArraysErrors(t *testing.T) {
	arr := typesystem.NewArrayLiteral(typesystem.Int, nil)
	one := typesystem.NewIntLiteral(1)
	_, err := typesystem.Compare("==", arr, one)
	assert.Error(t, err)
}

func TestTruthy(t *testing.T) {
	zero := typesystem.NewIntLiteral(0)
	nonzero := typesystem.NewIntLiteral(42)

	z, err := typesystem.Truthy(zero)
	require.NoError(t, err)
	assert.False(t, z)

	nz, err := typesystem.Truthy(nonzero)
	require.NoError(t, err)
	assert.True(t, nz)
}

func TestCastIntToChar(t *testing.T) {
	n := typesystem.NewIntLiteral(97)
	c, err := typesystem.Cast(n, typesystem.Char)
	require.NoError(t, err)
	assert.Equal(t, typesystem.Char, c.Type())
	assert.Equal(t, int64(97), c.CodePoint())
}

func TestCastIntToCharMasksModulo256(t *testing.T) {
	c, err := typesystem.Cast(typesystem.NewIntLiteral(256), typesystem.Char)
	require.NoError(t, err)
	assert.Equal(t, int64(0), c.CodePoint())

	c, err = typesystem.Cast(typesystem.NewIntLiteral(257), typesystem.Char)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.CodePoint())
}

func TestCastCharToInt(t *testing.T) {
	c := typesystem.NewCharLiteral('z')
	n, err := typesystem.Cast(c, typesystem.Int)
	require.NoError(t, err)
	assert.Equal(t, typesystem.Int, n.Type())
	assert.Equal(t, int64('z'), n.Int())
}

func TestCastArrayRejected(t *testing.T) {
	arr := typesystem.NewArrayLiteral(typesystem.Int, nil)
	_, err := typesystem.Cast(arr, typesystem.Char)
	assert.Error(t, err)
}

func TestTypeArrayElem(t *testing.T) {
	assert.True(t, typesystem.IntArray.IsArray())
	assert.Equal(t, typesystem.Int, typesystem.IntArray.Elem())
	assert.Equal(t, typesystem.CharArray, typesystem.Char.Array())
	assert.False(t, typesystem.Int.IsArray())
}
