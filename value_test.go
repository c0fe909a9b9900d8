package maclane

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueArithmetic(t *testing.T) {
	half := NewValue(1, 2)
	third := NewValue(1, 3)

	assert.Equal(t, 0, half.Add(third).Cmp(NewValue(5, 6)))
	assert.Equal(t, 0, half.Sub(third).Cmp(NewValue(1, 6)))
	assert.Equal(t, 0, half.Neg().Cmp(NewValue(-1, 2)))
	assert.Equal(t, 0, half.MulInt(3).Cmp(NewValue(3, 2)))
	assert.Equal(t, 0, half.DivInt(2).Cmp(NewValue(1, 4)))
}

func TestValueInfinityAbsorbs(t *testing.T) {
	inf := Infinity()
	one := IntValue(1)

	assert.True(t, inf.Add(one).IsInf())
	assert.True(t, one.Add(inf).IsInf())
	assert.True(t, inf.Sub(one).IsInf())
	assert.True(t, inf.MulInt(3).IsInf())

	assert.Equal(t, 1, inf.Cmp(one))
	assert.Equal(t, -1, one.Cmp(inf))
	assert.Equal(t, 0, inf.Cmp(Infinity()))

	assert.Panics(t, func() { one.Sub(inf) })
	assert.Panics(t, func() { inf.Neg() })
	assert.Panics(t, func() { inf.MulInt(0) })
}

func TestValueUnsetSentinel(t *testing.T) {
	assert.False(t, NoValue.IsSet())
	assert.True(t, IntValue(0).IsSet())
	assert.True(t, Infinity().IsSet())

	assert.True(t, NoValue.Equal(NoValue))
	assert.False(t, NoValue.Equal(IntValue(0)))

	assert.Panics(t, func() { NoValue.Add(IntValue(1)) })
	assert.Panics(t, func() { IntValue(1).Cmp(NoValue) })
}

func TestValueFloor(t *testing.T) {
	for _, tc := range []struct {
		num, den, want int64
	}{
		{7, 2, 3},
		{-7, 2, -4},
		{4, 2, 2},
		{0, 1, 0},
		{-1, 3, -1},
	} {
		got := NewValue(tc.num, tc.den).Floor()
		assert.Equal(t, tc.want, got.Int64(), "floor(%d/%d)", tc.num, tc.den)
	}
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "5/3", NewValue(5, 3).String())
	assert.Equal(t, "+Infinity", Infinity().String())
	assert.Equal(t, "unset", NoValue.String())
}

func TestMinValue(t *testing.T) {
	vals := []Value{IntValue(3), Infinity(), NewValue(1, 2), IntValue(1)}
	require.Equal(t, 0, minValue(vals).Cmp(NewValue(1, 2)))

	assert.True(t, minValue([]Value{Infinity(), Infinity()}).IsInf())
}

func TestRatValueCopies(t *testing.T) {
	r := big.NewRat(1, 2)
	v := RatValue(r)
	r.SetInt64(5)
	assert.Equal(t, 0, v.Cmp(NewValue(1, 2)))
}
