// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

// Package saturating provides uint64 arithmetic that clamps at the type
// bounds instead of reporting overflow. Block processing must never halt on
// an arithmetic edge case, so reward math goes through these helpers.
package saturating

import (
	stdmath "math"

	"github.com/ava-labs/avalanchego/utils/math"
)

// Add64 returns a+b, or MaxUint64 on overflow.
func Add64(a, b uint64) uint64 {
	sum, err := math.Add64(a, b)
	if err != nil {
		return stdmath.MaxUint64
	}
	return sum
}

// Sub64 returns a-b, or 0 on underflow.
func Sub64(a, b uint64) uint64 {
	diff, err := math.Sub(a, b)
	if err != nil {
		return 0
	}
	return diff
}

// Mul64 returns a*b, or MaxUint64 on overflow.
func Mul64(a, b uint64) uint64 {
	product, err := math.Mul64(a, b)
	if err != nil {
		return stdmath.MaxUint64
	}
	return product
}

// Sum64 folds Add64 over values.
func Sum64(values ...uint64) uint64 {
	var total uint64
	for _, v := range values {
		total = Add64(total, v)
	}
	return total
}
