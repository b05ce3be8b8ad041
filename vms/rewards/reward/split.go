// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package reward

import "math/big"

// Split divides [total] into the miner's share and the donation share.
//
// donation = floor(total * rate / PercentDenominator)
// miner = total - donation
//
// Rates above PercentDenominator are treated as PercentDenominator.
func Split(total, rate uint64) (miner, donation uint64) {
	if rate > PercentDenominator {
		rate = PercentDenominator
	}

	bigDonation := new(big.Int).SetUint64(total)
	bigDonation.Mul(bigDonation, new(big.Int).SetUint64(rate))
	bigDonation.Div(bigDonation, bigPercentDenominator)

	// rate <= PercentDenominator, so donation <= total
	donation = bigDonation.Uint64()
	return total - donation, donation
}
