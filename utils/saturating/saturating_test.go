// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package saturating

import (
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArithmetic(t *testing.T) {
	tests := map[string]struct {
		op   func(a, b uint64) uint64
		a, b uint64
		want uint64
	}{
		"add":            {op: Add64, a: 2, b: 3, want: 5},
		"add overflow":   {op: Add64, a: stdmath.MaxUint64, b: 1, want: stdmath.MaxUint64},
		"sub":            {op: Sub64, a: 5, b: 3, want: 2},
		"sub underflow":  {op: Sub64, a: 1, b: 2, want: 0},
		"sub to zero":    {op: Sub64, a: 1, b: 1, want: 0},
		"mul":            {op: Mul64, a: 6, b: 7, want: 42},
		"mul by zero":    {op: Mul64, a: stdmath.MaxUint64, b: 0, want: 0},
		"mul overflow":   {op: Mul64, a: stdmath.MaxUint64 / 2, b: 3, want: stdmath.MaxUint64},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.op(tt.a, tt.b))
		})
	}
}

func TestSum64(t *testing.T) {
	require := require.New(t)
	require.Zero(Sum64())
	require.Equal(uint64(6), Sum64(1, 2, 3))
	require.Equal(uint64(stdmath.MaxUint64), Sum64(stdmath.MaxUint64-1, 1, 1))
}
