package blockchain

import (
	"math/big"
)

// ToDecimal scales a raw token amount down by 10^decimals.
func ToDecimal(amount *big.Int, decimals int) *big.Float {
	if amount == nil {
		return big.NewFloat(0)
	}
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	result := new(big.Float).SetInt(amount)
	return result.Quo(result, new(big.Float).SetInt(divisor))
}

// ToFloat is ToDecimal converted to float64, the unit scores are reported in.
func ToFloat(amount *big.Int, decimals int) float64 {
	f, _ := ToDecimal(amount, decimals).Float64()
	return f
}
